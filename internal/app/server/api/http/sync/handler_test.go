package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
	domainsync "storesync/internal/domain/sync"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
)

type fakeSyncer struct {
	gotReq  domainsync.Request
	outcome *domainsync.Outcome
	err     error
}

func (f *fakeSyncer) PerformSync(_ context.Context, req domainsync.Request) (*domainsync.Outcome, error) {
	f.gotReq = req
	return f.outcome, f.err
}

type fakeStores struct {
	store *domainsync.Store
}

func (f *fakeStores) GetStore(_ context.Context, id string) (*domainsync.Store, error) {
	if f.store == nil || f.store.ID != id {
		return nil, domainsync.ErrStoreNotFound
	}
	return f.store, nil
}

func (f *fakeStores) CreateStore(_ context.Context, _ *domainsync.Store) error { return nil }

func (f *fakeStores) ListStores(_ context.Context) ([]domainsync.Store, error) { return nil, nil }

func (f *fakeStores) LastSyncMarker(_ context.Context, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeStores) SetLastSyncMarker(_ context.Context, _ string, _ time.Time) error { return nil }

type fakeHistory struct {
	entries []domainsync.HistoryEntry
	err     error
}

func (f *fakeHistory) SaveEntry(_ context.Context, _ *domainsync.HistoryEntry) error { return nil }

func (f *fakeHistory) ListEntries(_ context.Context, _ string, _ int) ([]domainsync.HistoryEntry, error) {
	return f.entries, f.err
}

func newTestHandler(syncer *fakeSyncer, stores *fakeStores, history *fakeHistory) (*Handler, *retry.Executor) {
	exec := retry.New(retry.DefaultConfig(), slog.Default())
	limiter := ratelimit.New(40, 2.0)
	return NewHandler(syncer, stores, history, exec, limiter, slog.Default(), huma.Middlewares{}), exec
}

func TestHandler_trigger(t *testing.T) {
	syncer := &fakeSyncer{outcome: &domainsync.Outcome{Success: true, StoreID: "shop-1"}}
	stores := &fakeStores{store: &domainsync.Store{
		ID:          "shop-1",
		Domain:      "demo.example.com",
		AccessToken: "secret",
	}}
	h, _ := newTestHandler(syncer, stores, &fakeHistory{})

	output, err := h.trigger(context.Background(), &triggerInput{
		StoreID: "shop-1",
		Body: triggerRequest{
			EntityTypes:      []entity.Type{entity.TypeCatalogItem},
			ForceFullSync:    true,
			MaxItemsPerBatch: map[string]int{"catalog_item": 50},
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Body.Success)

	// Учетные данные берутся из хранилища, а не из запроса
	assert.Equal(t, "demo.example.com", syncer.gotReq.Credentials.StoreDomain)
	assert.Equal(t, "secret", syncer.gotReq.Credentials.AccessToken)
	assert.True(t, syncer.gotReq.ForceFullSync)
	assert.True(t, syncer.gotReq.RespectRateLimit)
	assert.Equal(t, 50, syncer.gotReq.MaxItemsPerBatch[entity.TypeCatalogItem])
}

func TestHandler_trigger_UnknownStore(t *testing.T) {
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	_, err := h.trigger(context.Background(), &triggerInput{StoreID: "ghost"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.GetStatus())
}

func TestHandler_trigger_IgnoreRateLimit(t *testing.T) {
	syncer := &fakeSyncer{outcome: &domainsync.Outcome{Success: true}}
	stores := &fakeStores{store: &domainsync.Store{ID: "shop-1", Domain: "d", AccessToken: "t"}}
	h, _ := newTestHandler(syncer, stores, &fakeHistory{})

	_, err := h.trigger(context.Background(), &triggerInput{
		StoreID: "shop-1",
		Body:    triggerRequest{IgnoreRateLimit: true},
	})

	require.NoError(t, err)
	assert.False(t, syncer.gotReq.RespectRateLimit)
}

func TestHandler_listHistory(t *testing.T) {
	history := &fakeHistory{entries: []domainsync.HistoryEntry{
		{ID: 1, StoreID: "shop-1", Strategy: domainsync.StrategyFull, Success: true},
	}}
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, history)

	output, err := h.listHistory(context.Background(), &historyInput{StoreID: "shop-1"})

	require.NoError(t, err)
	require.Len(t, output.Body.Entries, 1)
	assert.Equal(t, domainsync.StrategyFull, output.Body.Entries[0].Strategy)
}

func TestHandler_listHistory_Error(t *testing.T) {
	history := &fakeHistory{err: errors.New("connection lost")}
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, history)

	_, err := h.listHistory(context.Background(), &historyInput{StoreID: "shop-1"})
	assert.Error(t, err)
}

func TestHandler_stats(t *testing.T) {
	h, exec := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	_, err := retry.Execute(context.Background(), exec, "demo:catalog_item", func(_ context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	output, err := h.stats(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, output.Body.Operations)
	assert.Equal(t, 1, output.Body.TotalCalls)
	assert.Equal(t, 1, output.Body.TotalSuccesses)
}

func TestHandler_operationStats_Unknown(t *testing.T) {
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	_, err := h.operationStats(context.Background(), &operationInput{OperationID: "ghost:order"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.GetStatus())
}

func TestHandler_breakerLifecycle(t *testing.T) {
	h, exec := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	_, err := retry.Execute(context.Background(), exec, "demo:order", func(_ context.Context) (int, error) {
		return 0, nil
	})
	require.NoError(t, err)

	status, err := h.breakerStatus(context.Background(), &operationInput{OperationID: "demo:order"})
	require.NoError(t, err)
	assert.Equal(t, retry.StateClosed, status.Body.State)

	reset, err := h.resetBreaker(context.Background(), &operationInput{OperationID: "demo:order"})
	require.NoError(t, err)
	assert.Equal(t, "Ok", reset.Body.Status)
}

func TestHandler_resetBreaker_Unknown(t *testing.T) {
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	_, err := h.resetBreaker(context.Background(), &operationInput{OperationID: "ghost:order"})
	require.Error(t, err)
}

func TestHandler_rateLimit(t *testing.T) {
	h, _ := newTestHandler(&fakeSyncer{}, &fakeStores{}, &fakeHistory{})

	output, err := h.rateLimit(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 40, output.Body.CallsPerMinute)
	assert.Zero(t, output.Body.CallsInWindow)
}
