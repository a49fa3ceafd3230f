package payment

import (
	"context"
	"time"
)

// MetadataKeyOrderNumber tags every authorization with the human-facing
// order number so later steps can verify the pairing.
const MetadataKeyOrderNumber = "order_number"

// MetadataKeyValidatedAmount records the authoritative amount (in minor
// units) the authorization was created for.
const MetadataKeyValidatedAmount = "validated_amount"

// CreateIntentRequest captures the payload for one payment authorization.
// AmountCents is always derived from the validated snapshot, never from
// client-submitted totals.
type CreateIntentRequest struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the normalised view of one payment authorization.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Metadata     map[string]string
	CreatedAt    time.Time
}

// Gateway is the contract for the payment provider adapter.
type Gateway interface {
	// CreateIntent creates a payment authorization. The idempotency key
	// guarantees repeated submissions under network retry do not create
	// duplicate authorizations.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// GetIntent retrieves an authorization by its payment identifier.
	GetIntent(ctx context.Context, id string) (*Intent, error)
}
