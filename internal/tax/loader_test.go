package tax

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoader_Load_Success(t *testing.T) {
	path := writeRatesFile(t, `{
		"ON": {"federalRate": 0.05, "federalLabel": "HST", "provincialRate": 0.08, "combined": true},
		"QC": {"federalRate": 0.05, "federalLabel": "GST", "provincialRate": 0.09975, "provincialLabel": "QST"}
	}`)

	loader := NewFileLoader(zerolog.Nop())
	table, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.True(t, table["ON"].Combined)
	assert.InDelta(t, 0.09975, table["QC"].ProvincialRate, 1e-9)
}

func TestFileLoader_Load_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFileLoader_Load_InvalidJSON(t *testing.T) {
	path := writeRatesFile(t, `{not json`)

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestFileLoader_Load_EmptyDocument(t *testing.T) {
	path := writeRatesFile(t, `{}`)

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jurisdictions")
}

func TestFileLoader_Load_RateOutOfRange(t *testing.T) {
	path := writeRatesFile(t, `{
		"ON": {"federalRate": 1.5, "federalLabel": "HST", "combined": true}
	}`)

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0,1]")
}

func TestFileLoader_Load_MissingFederalLabel(t *testing.T) {
	path := writeRatesFile(t, `{
		"AB": {"federalRate": 0.05}
	}`)

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "federal label")
}
