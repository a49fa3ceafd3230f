package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmstand/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// intentRepository implements IntentRepository using PostgreSQL. The
// snapshot is stored as JSONB so its shape can evolve without schema
// churn.
type intentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewIntentRepository creates a new PostgreSQL-backed intent repository.
func NewIntentRepository(pool *pgxpool.Pool, logger zerolog.Logger) IntentRepository {
	return &intentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "intent").Logger(),
	}
}

// Save stores a validated payment intent keyed by payment identifier.
func (r *intentRepository) Save(ctx context.Context, intent *model.ValidatedPaymentIntent) error {
	snapshot, err := json.Marshal(intent.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal validated snapshot: %w", err)
	}

	// A network-retried checkout replays the same idempotency key and
	// gets the same intent id back from the provider; the first row wins.
	query := `
		INSERT INTO payment_intents (payment_intent_id, order_number, snapshot, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_intent_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		intent.PaymentIntentID,
		intent.OrderNumber,
		snapshot,
		intent.CreatedAt,
		intent.ExpiresAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_intent_id", intent.PaymentIntentID).
			Msg("failed to save validated payment intent")
		return fmt.Errorf("failed to save validated payment intent: %w", err)
	}

	r.logger.Debug().
		Str("payment_intent_id", intent.PaymentIntentID).
		Str("order_number", intent.OrderNumber).
		Time("expires_at", intent.ExpiresAt).
		Msg("validated payment intent saved")

	return nil
}

// GetByID loads the validated snapshot for a payment identifier.
func (r *intentRepository) GetByID(ctx context.Context, paymentIntentID string) (*model.ValidatedPaymentIntent, error) {
	query := `
		SELECT payment_intent_id, order_number, snapshot, created_at, expires_at
		FROM payment_intents
		WHERE payment_intent_id = $1
	`

	var intent model.ValidatedPaymentIntent
	var snapshot []byte
	err := r.pool.QueryRow(ctx, query, paymentIntentID).Scan(
		&intent.PaymentIntentID,
		&intent.OrderNumber,
		&snapshot,
		&intent.CreatedAt,
		&intent.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("failed to query validated payment intent")
		return nil, fmt.Errorf("failed to query validated payment intent: %w", err)
	}

	if err := json.Unmarshal(snapshot, &intent.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validated snapshot: %w", err)
	}

	return &intent, nil
}

// DeleteExpired removes intents past their expiry.
func (r *intentRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payment_intents WHERE expires_at < $1`, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete expired payment intents")
		return 0, fmt.Errorf("failed to delete expired payment intents: %w", err)
	}

	deleted := tag.RowsAffected()
	if deleted > 0 {
		r.logger.Info().Int64("count", deleted).Msg("expired payment intents swept")
	}

	return deleted, nil
}
