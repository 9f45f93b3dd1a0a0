package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/sync"
)

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(new(strings.Builder), nil))
	return New(strings.TrimPrefix(srv.URL, "http://"), false, log)
}

func TestApp_CheckConnection(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	})

	err := app.CheckConnection(context.Background())
	assert.NoError(t, err)
}

func TestApp_RegisterStore(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/stores", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"shop-1","status":"created"}`))
	})

	err := app.RegisterStore(context.Background(), RegisterStoreRequest{
		ID:          "shop-1",
		Domain:      "demo.example.com",
		AccessToken: "secret",
	})
	assert.NoError(t, err)
}

func TestApp_RegisterStore_Conflict(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"title":"Conflict","detail":"store already registered"}`))
	})

	err := app.RegisterStore(context.Background(), RegisterStoreRequest{ID: "shop-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store already registered")
}

func TestApp_ListStores(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stores", r.URL.Path)
		w.Write([]byte(`{"stores":[{"id":"shop-1","domain":"demo.example.com"}]}`))
	})

	stores, err := app.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "shop-1", stores[0].ID)
	assert.Equal(t, "demo.example.com", stores[0].Domain)
}

func TestApp_TriggerSync(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/stores/shop-1/sync", r.URL.Path)
		w.Write([]byte(`{"success":true,"store_id":"shop-1","strategy_used":"full","total_items_processed":7}`))
	})

	outcome, err := app.TriggerSync(context.Background(), "shop-1", TriggerSyncRequest{ForceFullSync: true})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, sync.StrategyFull, outcome.StrategyUsed)
	assert.Equal(t, 7, outcome.TotalItemsProcessed)
}

func TestApp_SyncHistory_LimitPassed(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stores/shop-1/sync/history", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"entries":[{"id":1,"store_id":"shop-1","strategy":"delta","success":true}]}`))
	})

	entries, err := app.SyncHistory(context.Background(), "shop-1", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sync.StrategyDelta, entries[0].Strategy)
}

func TestApp_Stats(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sync/stats", r.URL.Path)
		w.Write([]byte(`{"operations":2,"total_calls":10,"total_successes":9,"total_failures":1}`))
	})

	stats, err := app.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Operations)
	assert.Equal(t, 10, stats.TotalCalls)
}

func TestApp_ResetBreaker(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync/breakers/demo.example.com:order/reset", r.URL.Path)
		w.Write([]byte(`{"status":"reset"}`))
	})

	err := app.ResetBreaker(context.Background(), "demo.example.com:order")
	assert.NoError(t, err)
}

func TestApp_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	log := slog.New(slog.NewTextHandler(new(strings.Builder), nil))
	app := New(strings.TrimPrefix(srv.URL, "http://"), false, log)
	app.client.Timeout = time.Second

	err := app.CheckConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "сервер недоступен")
}
