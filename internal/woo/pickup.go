package woo

import (
	"context"
	"fmt"
	"strconv"

	"farmstand/internal/model"
)

type wooPickupLocation struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Enabled  bool   `json:"enabled"`
}

// FetchPickupLocations lists the store's configured pickup points. The
// result is upserted into the local mirror; it is never authoritative
// for pricing.
func (c *Client) FetchPickupLocations(ctx context.Context) ([]model.PickupLocation, error) {
	var raw []wooPickupLocation
	if err := c.get(ctx, "pickup_locations", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch pickup locations: %w", err)
	}

	locations := make([]model.PickupLocation, len(raw))
	for i, loc := range raw {
		locations[i] = model.PickupLocation{
			ExternalID: strconv.FormatInt(loc.ID, 10),
			Name:       loc.Name,
			Address1:   loc.Address1,
			City:       loc.City,
			Province:   loc.State,
			PostalCode: loc.Postcode,
			Active:     loc.Enabled,
		}
	}

	return locations, nil
}
