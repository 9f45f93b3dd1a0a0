package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	domainsync "storesync/internal/domain/sync"
)

type fakeStores struct {
	stores  []domainsync.Store
	listErr error
}

func (f *fakeStores) GetStore(_ context.Context, id string) (*domainsync.Store, error) {
	return nil, domainsync.ErrStoreNotFound
}

func (f *fakeStores) CreateStore(_ context.Context, _ *domainsync.Store) error { return nil }

func (f *fakeStores) ListStores(_ context.Context) ([]domainsync.Store, error) {
	return f.stores, f.listErr
}

func (f *fakeStores) LastSyncMarker(_ context.Context, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeStores) SetLastSyncMarker(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func TestScheduler_RunOnce(t *testing.T) {
	stores := &fakeStores{stores: []domainsync.Store{
		{ID: "store-1"}, {ID: "store-2"}, {ID: "store-3"},
	}}

	var triggered []string
	trigger := func(_ context.Context, store domainsync.Store) error {
		triggered = append(triggered, store.ID)
		if store.ID == "store-2" {
			return errors.New("platform down")
		}
		return nil
	}

	s := New(stores, trigger, time.Minute, true, slog.Default())
	s.runOnce(context.Background())

	// сбой store-2 не прервал обход
	assert.Equal(t, []string{"store-1", "store-2", "store-3"}, triggered)
}

func TestScheduler_ListFailure(t *testing.T) {
	stores := &fakeStores{listErr: errors.New("db down")}
	var triggered int
	s := New(stores, func(_ context.Context, _ domainsync.Store) error {
		triggered++
		return nil
	}, time.Minute, true, slog.Default())

	s.runOnce(context.Background())
	assert.Zero(t, triggered)
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	s := New(&fakeStores{}, nil, time.Minute, false, slog.Default())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("выключенный планировщик не должен блокировать")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	stores := &fakeStores{stores: []domainsync.Store{{ID: "store-1"}}}
	s := New(stores, func(_ context.Context, _ domainsync.Store) error {
		return nil
	}, 10*time.Millisecond, true, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("планировщик не остановился по отмене контекста")
	}
}
