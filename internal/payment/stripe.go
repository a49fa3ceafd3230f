package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway implements Gateway using the Stripe Payment Intents API.
type StripeGateway struct {
	intents stripeIntentAPI
	logger  zerolog.Logger
}

// StripeGatewayConfig configures a StripeGateway. Intents overrides the
// API client in tests.
type StripeGatewayConfig struct {
	APIKey  string
	Intents stripeIntentAPI
}

// NewStripeGateway constructs a Stripe-backed payment gateway.
func NewStripeGateway(cfg StripeGatewayConfig, logger zerolog.Logger) (*StripeGateway, error) {
	intents := cfg.Intents
	if intents == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sc := client.New(apiKey, nil)
		intents = sc.PaymentIntents
	}

	return &StripeGateway{
		intents: intents,
		logger:  logger.With().Str("component", "stripe-gateway").Logger(),
	}, nil
}

// CreateIntent creates a Stripe Payment Intent for the validated amount.
func (g *StripeGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}

	intent, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	g.logger.Info().
		Str("payment_intent_id", intent.ID).
		Int64("amount_cents", intent.Amount).
		Msg("payment intent created")

	return toIntent(intent), nil
}

// GetIntent retrieves a Stripe Payment Intent by id.
func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.intents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve payment intent: %w", err)
	}

	return toIntent(intent), nil
}

func toIntent(intent *stripe.PaymentIntent) *Intent {
	if intent == nil {
		return nil
	}
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountCents:  intent.Amount,
		Metadata:     intent.Metadata,
		CreatedAt:    time.Unix(intent.Created, 0).UTC(),
	}
}
