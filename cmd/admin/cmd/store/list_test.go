package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesync/internal/domain/sync"
)

func TestPrintStoresTable(t *testing.T) {
	synced := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stores := []sync.Store{
		{ID: "shop-1", Domain: "demo.example.com", LastSyncMarker: synced},
		{ID: "shop-2", Domain: "other.example.com"},
	}

	var out strings.Builder
	require.NoError(t, printStoresTable(&out, stores))

	text := out.String()
	assert.Contains(t, text, "shop-1")
	assert.Contains(t, text, synced.Local().Format(time.RFC3339))
	// Магазин без единой синхронизации помечается словом, а не нулевой датой
	assert.Contains(t, text, "никогда")
	assert.NotContains(t, text, "0001-01-01")
}

func TestPrintStoresTable_Empty(t *testing.T) {
	var out strings.Builder
	require.NoError(t, printStoresTable(&out, nil))
	assert.Contains(t, out.String(), "Магазины не зарегистрированы")
}

func TestPrintStoresJSON(t *testing.T) {
	stores := []sync.Store{{ID: "shop-1", Domain: "demo.example.com"}}

	var out strings.Builder
	require.NoError(t, printStoresJSON(&out, stores))

	assert.Contains(t, out.String(), `"id": "shop-1"`)
	assert.Contains(t, out.String(), `"domain": "demo.example.com"`)
}
