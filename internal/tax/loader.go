package tax

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Loader defines the interface for loading the jurisdiction rate table.
type Loader interface {
	// Load reads a rates JSON document and returns a RateTable.
	Load(ctx context.Context, path string) (RateTable, error)
}

// fileLoader implements Loader for local rates files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based rates loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "tax-rates-loader").Logger(),
	}
}

// Load reads a rates JSON file exported by the CMS. The document is a map
// of province code to jurisdiction rates.
func (l *fileLoader) Load(ctx context.Context, path string) (RateTable, error) {
	l.logger.Info().Str("file", path).Msg("loading tax rates file")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read tax rates file")
		return nil, fmt.Errorf("failed to read tax rates file %s: %w", path, err)
	}

	table, err := parseRates(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("invalid tax rates file")
		return nil, fmt.Errorf("invalid tax rates file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("jurisdictions", len(table)).
		Msg("tax rates file loaded successfully")

	return table, nil
}

// parseRates decodes and sanity-checks a rates document.
func parseRates(data []byte) (RateTable, error) {
	var table RateTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rates JSON: %w", err)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("rates document contains no jurisdictions")
	}

	for code, rates := range table {
		if rates.FederalRate < 0 || rates.FederalRate > 1 || rates.ProvincialRate < 0 || rates.ProvincialRate > 1 {
			return nil, fmt.Errorf("jurisdiction %s has rates outside [0,1]", code)
		}
		if rates.FederalLabel == "" {
			return nil, fmt.Errorf("jurisdiction %s is missing a federal label", code)
		}
	}

	return table, nil
}
