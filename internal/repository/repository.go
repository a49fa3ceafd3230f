package repository

import (
	"context"
	"time"

	"farmstand/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines the interface for order data access operations.
// Creation is idempotent on payment intent id via the unique constraint;
// concurrent attempts to create the same order serialise at the database
// level.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateCustomer inserts the checkout customer within the transaction.
	CreateCustomer(ctx context.Context, tx pgx.Tx, customer *model.Customer) error

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByPaymentIntentID retrieves the order owning a payment identifier.
	// Returns (nil, nil) when no such order exists.
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)

	// GetByNumberAndIntent retrieves the order matching both the order
	// number and the payment identifier. Returns (nil, nil) when absent.
	GetByNumberAndIntent(ctx context.Context, orderNumber, paymentIntentID string) (*model.Order, error)

	// GetItems retrieves the line items of an order.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetCustomer retrieves a customer by id.
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// MarkTerminal moves a pending order to a terminal (status,
	// paymentStatus) pair, optionally recording the mirrored order id and
	// appending a note. Returns false when the order was not pending, so
	// a lost race with another reconciliation is observable.
	MarkTerminal(ctx context.Context, orderID uuid.UUID, status, paymentStatus string, wooOrderID *int64, note string) (bool, error)

	// RecordMirrorResult stores the upstream mirror outcome on an already
	// terminal order: the remote order id on success, an appended note on
	// failure.
	RecordMirrorResult(ctx context.Context, orderID uuid.UUID, wooOrderID *int64, note string) error
}

// IntentRepository persists validated snapshots keyed by payment
// identifier for the gap between intent creation and order creation.
type IntentRepository interface {
	// Save stores a validated payment intent. At most one row exists per
	// payment identifier.
	Save(ctx context.Context, intent *model.ValidatedPaymentIntent) error

	// GetByID loads the validated snapshot for a payment identifier.
	// Returns (nil, nil) when absent.
	GetByID(ctx context.Context, paymentIntentID string) (*model.ValidatedPaymentIntent, error)

	// DeleteExpired removes rows past their expiry and reports how many
	// were swept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PickupLocationRepository mirrors CMS pickup points locally.
type PickupLocationRepository interface {
	// Upsert inserts or refreshes pickup locations by external id.
	Upsert(ctx context.Context, locations []model.PickupLocation) error

	// GetByExternalID retrieves one location. Returns (nil, nil) when absent.
	GetByExternalID(ctx context.Context, externalID string) (*model.PickupLocation, error)
}
