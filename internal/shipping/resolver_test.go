package shipping

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmstand/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockZoneFetcher is a mock implementation of ZoneFetcher.
type MockZoneFetcher struct {
	mock.Mock
}

func (m *MockZoneFetcher) FetchRateTables(ctx context.Context) (map[string]RateTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]RateTable), args.Error(1)
}

func onRates() map[string]RateTable {
	return map[string]RateTable{
		"ON": {DefaultClass: 12.00, "cold-pack": 20.00, "oversize": 28.00},
	}
}

func TestResolver_Cost_PickupIsFree(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	resolver := NewResolver(fetcher, zerolog.Nop())

	items := []model.ValidatedItem{
		{ProductID: 1, ShippingClass: "cold-pack"},
	}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodPickup, "ON")

	assert.Zero(t, cost)
	// Pickup never touches the zone cache.
	fetcher.AssertNotCalled(t, "FetchRateTables")
}

func TestResolver_Cost_MaxClassRatePerOrder(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Once()

	resolver := NewResolver(fetcher, zerolog.Nop())

	// standard 12, exempt booking 0, cold-pack 20: per-order max is 20.
	items := []model.ValidatedItem{
		{ProductID: 1, ShippingClass: ""},
		{ProductID: 2, ShippingClass: "booking"},
		{ProductID: 3, ShippingClass: "cold-pack"},
	}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")

	assert.InDelta(t, 20.00, cost, 1e-9)
	fetcher.AssertExpectations(t)
}

func TestResolver_Cost_AllExemptItems(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Once()

	resolver := NewResolver(fetcher, zerolog.Nop())

	items := []model.ValidatedItem{
		{ProductID: 1, ShippingClass: "pickup-only"},
		{ProductID: 2, ShippingClass: "service"},
		{ProductID: 3, Type: model.ProductTypeBooking, ShippingClass: "standard"},
	}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")

	assert.Zero(t, cost)
}

func TestResolver_Cost_UnknownClassFallsBackToDefaults(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Once()

	resolver := NewResolver(fetcher, zerolog.Nop())

	items := []model.ValidatedItem{
		{ProductID: 1, ShippingClass: "mystery-class"},
	}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")

	// Not in the zone table nor in the defaults: default class rate.
	assert.InDelta(t, 15.00, cost, 1e-9)
}

func TestResolver_Cost_UnknownProvinceUsesDefaults(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Once()

	resolver := NewResolver(fetcher, zerolog.Nop())

	items := []model.ValidatedItem{
		{ProductID: 1, ShippingClass: "oversize"},
	}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "SK")

	assert.InDelta(t, 25.00, cost, 1e-9)
}

func TestResolver_Cost_RefreshesWhenStale(t *testing.T) {
	current := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Twice()

	resolver := NewResolver(fetcher, zerolog.Nop(), WithClock(func() time.Time { return current }))

	items := []model.ValidatedItem{{ProductID: 1}}

	resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")
	// Within the interval the cache is reused.
	current = current.Add(29 * time.Minute)
	resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")
	// Past the interval a refresh happens.
	current = current.Add(2 * time.Minute)
	resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")

	fetcher.AssertExpectations(t)
}

func TestResolver_Cost_FetchFailureKeepsPreviousRates(t *testing.T) {
	current := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(onRates(), nil).Once()
	fetcher.On("FetchRateTables", mock.Anything).Return(nil, errors.New("backend down")).Once()

	resolver := NewResolver(fetcher, zerolog.Nop(), WithClock(func() time.Time { return current }))

	items := []model.ValidatedItem{{ProductID: 1, ShippingClass: "cold-pack"}}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")
	assert.InDelta(t, 20.00, cost, 1e-9)

	// The refresh fails; the previously fetched table keeps serving.
	current = current.Add(31 * time.Minute)
	cost = resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")
	assert.InDelta(t, 20.00, cost, 1e-9)

	// The failed attempt pushed the next refresh out a full interval.
	current = current.Add(1 * time.Minute)
	resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")
	fetcher.AssertExpectations(t)
}

func TestResolver_Cost_FetchFailureWithoutCacheUsesDefaults(t *testing.T) {
	fetcher := new(MockZoneFetcher)
	fetcher.On("FetchRateTables", mock.Anything).Return(nil, errors.New("backend down")).Once()

	resolver := NewResolver(fetcher, zerolog.Nop())

	items := []model.ValidatedItem{{ProductID: 1, ShippingClass: "cold-pack"}}

	cost := resolver.Cost(context.Background(), items, model.DeliveryMethodShipping, "ON")

	assert.InDelta(t, 22.00, cost, 1e-9)
}
