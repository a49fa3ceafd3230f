package shipping

import (
	"context"
	"sync"
	"time"

	"farmstand/internal/model"

	"github.com/rs/zerolog"
)

// RateTable maps shipping-class slugs to their flat per-order rate.
type RateTable map[string]float64

// DefaultClass keys the rate applied to items without a shipping class.
const DefaultClass = "standard"

// DefaultRefreshInterval bounds how often the zone configuration is
// refetched from the commerce backend.
const DefaultRefreshInterval = 30 * time.Minute

// ZoneFetcher retrieves per-province rate tables from the commerce
// backend's shipping-zone configuration.
type ZoneFetcher interface {
	FetchRateTables(ctx context.Context) (map[string]RateTable, error)
}

// exemptClasses lists shipping classes that never contribute to a
// shipping quote: pickup-only goods, on-site services and tour bookings.
var exemptClasses = map[string]bool{
	"pickup-only":  true,
	"local-pickup": true,
	"service":      true,
	"booking":      true,
}

// DefaultRates returns the hard-coded fallback table used when the zone
// configuration cannot be fetched or a province has no cached table.
func DefaultRates() RateTable {
	return RateTable{
		DefaultClass: 15.00,
		"cold-pack":  22.00,
		"oversize":   25.00,
	}
}

// Resolver derives a per-order shipping cost from cached zone data.
// The cache is shared across requests; refreshes are time-gated rather
// than mutex-gated, so concurrent requests may both refresh during the
// staleness window. The refresh is idempotent and convergent.
type Resolver struct {
	fetcher  ZoneFetcher
	defaults RateTable
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	mu        sync.RWMutex
	tables    map[string]RateTable
	fetchedAt time.Time
}

// Option configures optional Resolver behaviour.
type Option func(*Resolver)

// WithClock injects a time source for deterministic staleness in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithRefreshInterval overrides the minimum time between zone refreshes.
func WithRefreshInterval(d time.Duration) Option {
	return func(r *Resolver) {
		r.interval = d
	}
}

// NewResolver creates a shipping rate resolver backed by the given zone
// fetcher.
func NewResolver(fetcher ZoneFetcher, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:  fetcher,
		defaults: DefaultRates(),
		interval: DefaultRefreshInterval,
		now:      time.Now,
		logger:   logger.With().Str("component", "shipping-resolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cost returns the shipping cost for the cart. Pickup is always free and
// never touches the cache. For shipped carts the cost is the maximum
// per-class rate among non-exempt items for the province ("per order"
// flat-rate shipping, not summed per item).
func (r *Resolver) Cost(ctx context.Context, items []model.ValidatedItem, deliveryMethod, province string) float64 {
	if deliveryMethod == model.DeliveryMethodPickup {
		return 0
	}

	table := r.rateTable(ctx, province)

	cost := 0.0
	for _, item := range items {
		if item.Type == model.ProductTypeBooking || exemptClasses[item.ShippingClass] {
			continue
		}

		class := item.ShippingClass
		if class == "" {
			class = DefaultClass
		}

		rate, ok := table[class]
		if !ok {
			rate, ok = r.defaults[class]
			if !ok {
				rate = r.defaults[DefaultClass]
			}
		}

		if rate > cost {
			cost = rate
		}
	}

	return cost
}

// rateTable returns the cached table for the province, refreshing the
// cache when stale. A refresh failure keeps the previous tables; if none
// exist the default table is used. The caller never sees a fetch error.
func (r *Resolver) rateTable(ctx context.Context, province string) RateTable {
	r.mu.RLock()
	stale := r.tables == nil || r.now().Sub(r.fetchedAt) >= r.interval
	table, ok := r.tables[province]
	r.mu.RUnlock()

	if !stale {
		if ok {
			return table
		}
		return r.defaults
	}

	tables, err := r.fetcher.FetchRateTables(ctx)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Msg("failed to refresh shipping zones, keeping previous rates")

		r.mu.Lock()
		// Push the next attempt out a full interval so a broken backend
		// is not hammered on every request.
		r.fetchedAt = r.now()
		r.mu.Unlock()
	} else {
		r.mu.Lock()
		r.tables = tables
		r.fetchedAt = r.now()
		r.mu.Unlock()

		r.logger.Info().
			Int("provinces", len(tables)).
			Msg("shipping zone rates refreshed")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if table, ok := r.tables[province]; ok {
		return table
	}
	return r.defaults
}
