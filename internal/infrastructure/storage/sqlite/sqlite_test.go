package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storesync/internal/crypto"
	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	cipher, err := crypto.NewTokenCipher("test-secret")
	require.NoError(t, err)
	s, err := New(filepath.Join(t.TempDir(), "test.db"), cipher, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_RecordLifecycle(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	_, err := s.GetByExternalID(ctx, "store-1", entity.TypeCatalogItem, "p-1")
	assert.ErrorIs(t, err, sync.ErrRecordNotFound)

	rec := &entity.Record{
		ExternalID: "p-1",
		Type:       entity.TypeCatalogItem,
		Fields:     map[string]any{"title": "Чайник", "price": "25.00"},
		UpdatedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Create(ctx, "store-1", rec))

	got, err := s.GetByExternalID(ctx, "store-1", entity.TypeCatalogItem, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Чайник", got.Fields["title"])
	assert.True(t, got.UpdatedAt.Equal(rec.UpdatedAt))

	rec.Fields["title"] = "Чайник заварочный"
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Hour)
	require.NoError(t, s.Update(ctx, "store-1", rec))

	got, err = s.GetByExternalID(ctx, "store-1", entity.TypeCatalogItem, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Чайник заварочный", got.Fields["title"])

	count, err := s.CountByType(ctx, "store-1", entity.TypeCatalogItem)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// записи других магазинов не видны
	_, err = s.GetByExternalID(ctx, "store-2", entity.TypeCatalogItem, "p-1")
	assert.ErrorIs(t, err, sync.ErrRecordNotFound)
}

func TestStorage_UpdateMissingRecord(t *testing.T) {
	s := testStorage(t)
	err := s.Update(context.Background(), "store-1", &entity.Record{
		ExternalID: "ghost",
		Type:       entity.TypeCustomer,
		Fields:     map[string]any{},
	})
	assert.ErrorIs(t, err, sync.ErrRecordNotFound)
}

func TestStorage_StoreLifecycle(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	store := &sync.Store{
		ID:          "store-1",
		Domain:      "demo.example.com",
		AccessToken: "shpat_secret",
	}
	require.NoError(t, s.CreateStore(ctx, store))

	// повторная регистрация
	assert.ErrorIs(t, s.CreateStore(ctx, store), sync.ErrStoreExists)

	got, err := s.GetStore(ctx, "store-1")
	require.NoError(t, err)
	// токен вернулся расшифрованным
	assert.Equal(t, "shpat_secret", got.AccessToken)
	assert.Equal(t, "demo.example.com", got.Domain)

	// токен в базе не лежит открытым текстом
	var raw string
	require.NoError(t, s.db.QueryRow(
		`SELECT access_token FROM stores WHERE id = ?`, "store-1").Scan(&raw))
	assert.NotEqual(t, "shpat_secret", raw)

	_, err = s.GetStore(ctx, "missing")
	assert.ErrorIs(t, err, sync.ErrStoreNotFound)

	stores, err := s.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
}

func TestStorage_SyncMarker(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreateStore(ctx, &sync.Store{
		ID: "store-1", Domain: "d", AccessToken: "t",
	}))

	marker, err := s.LastSyncMarker(ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, marker.IsZero())

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetLastSyncMarker(ctx, "store-1", ts))

	marker, err = s.LastSyncMarker(ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, marker.Equal(ts))

	assert.ErrorIs(t, s.SetLastSyncMarker(ctx, "missing", ts), sync.ErrStoreNotFound)
	_, err = s.LastSyncMarker(ctx, "missing")
	assert.ErrorIs(t, err, sync.ErrStoreNotFound)
}

func TestStorage_History(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &sync.HistoryEntry{
			StoreID:        "store-1",
			Strategy:       sync.StrategyIncremental,
			Success:        true,
			StartedAt:      base.Add(time.Duration(i) * time.Hour),
			FinishedAt:     base.Add(time.Duration(i)*time.Hour + time.Minute),
			ItemsProcessed: 10 * (i + 1),
			APICalls:       i + 1,
		}
		require.NoError(t, s.SaveEntry(ctx, entry))
		assert.NotZero(t, entry.ID)
	}

	entries, err := s.ListEntries(ctx, "store-1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// свежие записи первыми
	assert.Equal(t, 30, entries[0].ItemsProcessed)
	assert.Equal(t, 20, entries[1].ItemsProcessed)
}
