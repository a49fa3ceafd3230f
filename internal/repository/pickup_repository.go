package repository

import (
	"context"
	"errors"
	"fmt"

	"farmstand/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// pickupLocationRepository implements PickupLocationRepository using PostgreSQL.
type pickupLocationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPickupLocationRepository creates a new PostgreSQL-backed pickup location repository.
func NewPickupLocationRepository(pool *pgxpool.Pool, logger zerolog.Logger) PickupLocationRepository {
	return &pickupLocationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "pickup_location").Logger(),
	}
}

// Upsert inserts or refreshes pickup locations by external id.
func (r *pickupLocationRepository) Upsert(ctx context.Context, locations []model.PickupLocation) error {
	if len(locations) == 0 {
		return nil
	}

	query := `
		INSERT INTO pickup_locations (id, external_id, name, address_1, city, province, postal_code, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (external_id) DO UPDATE
		SET name = EXCLUDED.name,
		    address_1 = EXCLUDED.address_1,
		    city = EXCLUDED.city,
		    province = EXCLUDED.province,
		    postal_code = EXCLUDED.postal_code,
		    active = EXCLUDED.active,
		    updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, loc := range locations {
		id := loc.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(query, id, loc.ExternalID, loc.Name, loc.Address1, loc.City, loc.Province, loc.PostalCode, loc.Active)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range locations {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Msg("failed to upsert pickup location")
			return fmt.Errorf("failed to upsert pickup location: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(locations)).Msg("pickup locations upserted")

	return nil
}

// GetByExternalID retrieves one pickup location by its CMS id.
func (r *pickupLocationRepository) GetByExternalID(ctx context.Context, externalID string) (*model.PickupLocation, error) {
	query := `
		SELECT id, external_id, name, address_1, city, province, postal_code, active, updated_at
		FROM pickup_locations
		WHERE external_id = $1
	`

	var loc model.PickupLocation
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&loc.ID,
		&loc.ExternalID,
		&loc.Name,
		&loc.Address1,
		&loc.City,
		&loc.Province,
		&loc.PostalCode,
		&loc.Active,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("external_id", externalID).Msg("failed to query pickup location")
		return nil, fmt.Errorf("failed to query pickup location: %w", err)
	}

	return &loc, nil
}
