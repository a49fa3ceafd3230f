package woo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"farmstand/internal/shipping"
)

type wooZone struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wooZoneLocation struct {
	Code string `json:"code"` // e.g. "CA:QC"
	Type string `json:"type"` // "state", "country", "postcode"
}

type wooSetting struct {
	Value string `json:"value"`
}

type wooZoneMethod struct {
	InstanceID int64                 `json:"instance_id"`
	MethodID   string                `json:"method_id"` // "flat_rate", "free_shipping", "local_pickup"
	Enabled    bool                  `json:"enabled"`
	Settings   map[string]wooSetting `json:"settings"`
}

type wooShippingClass struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// FetchRateTables assembles per-province shipping-class rate tables from
// the store's zone, method and class configuration. Flat-rate methods
// carry per-class costs keyed by class id ("class_cost_<id>"); the class
// list maps those ids back to slugs. Only state-scoped zone locations in
// Canada are considered.
func (c *Client) FetchRateTables(ctx context.Context) (map[string]shipping.RateTable, error) {
	var zones []wooZone
	if err := c.get(ctx, "shipping/zones", nil, &zones); err != nil {
		return nil, fmt.Errorf("failed to fetch shipping zones: %w", err)
	}

	var classes []wooShippingClass
	if err := c.get(ctx, "products/shipping_classes", nil, &classes); err != nil {
		return nil, fmt.Errorf("failed to fetch shipping classes: %w", err)
	}

	classSlugs := make(map[int64]string, len(classes))
	for _, class := range classes {
		classSlugs[class.ID] = class.Slug
	}

	tables := make(map[string]shipping.RateTable)

	for _, zone := range zones {
		var locations []wooZoneLocation
		if err := c.get(ctx, fmt.Sprintf("shipping/zones/%d/locations", zone.ID), nil, &locations); err != nil {
			return nil, fmt.Errorf("failed to fetch locations for zone %d: %w", zone.ID, err)
		}

		provinces := make([]string, 0, len(locations))
		for _, loc := range locations {
			if loc.Type != "state" {
				continue
			}
			parts := strings.SplitN(loc.Code, ":", 2)
			if len(parts) != 2 || parts[0] != "CA" {
				continue
			}
			provinces = append(provinces, parts[1])
		}

		if len(provinces) == 0 {
			continue
		}

		var methods []wooZoneMethod
		if err := c.get(ctx, fmt.Sprintf("shipping/zones/%d/methods", zone.ID), nil, &methods); err != nil {
			return nil, fmt.Errorf("failed to fetch methods for zone %d: %w", zone.ID, err)
		}

		table := shipping.RateTable{}
		for _, method := range methods {
			if !method.Enabled || method.MethodID != "flat_rate" {
				continue
			}

			if base, ok := parseCost(method.Settings["cost"].Value); ok {
				table[shipping.DefaultClass] = base
			}
			if noClass, ok := parseCost(method.Settings["no_class_cost"].Value); ok {
				table[shipping.DefaultClass] = noClass
			}

			for key, setting := range method.Settings {
				if !strings.HasPrefix(key, "class_cost_") {
					continue
				}
				classID, err := strconv.ParseInt(strings.TrimPrefix(key, "class_cost_"), 10, 64)
				if err != nil {
					continue
				}
				slug, ok := classSlugs[classID]
				if !ok {
					continue
				}
				if cost, ok := parseCost(setting.Value); ok {
					table[slug] = cost
				}
			}
		}

		if len(table) == 0 {
			continue
		}

		for _, province := range provinces {
			tables[province] = table
		}

		c.logger.Debug().
			Str("zone", zone.Name).
			Strs("provinces", provinces).
			Int("classes", len(table)).
			Msg("shipping zone rates loaded")
	}

	return tables, nil
}

// parseCost parses a WooCommerce cost setting. Values may carry currency
// formatting or be empty when unset.
func parseCost(value string) (float64, bool) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return 0, false
	}
	cost, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return cost, true
}
