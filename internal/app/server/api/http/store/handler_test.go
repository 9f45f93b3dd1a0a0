package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/sync"
	"storesync/internal/infrastructure/index"
)

type fakeStores struct {
	stores  map[string]*sync.Store
	listErr error
}

func newFakeStores() *fakeStores {
	return &fakeStores{stores: make(map[string]*sync.Store)}
}

func (f *fakeStores) GetStore(_ context.Context, id string) (*sync.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, sync.ErrStoreNotFound
	}
	return s, nil
}

func (f *fakeStores) CreateStore(_ context.Context, store *sync.Store) error {
	if _, ok := f.stores[store.ID]; ok {
		return sync.ErrStoreExists
	}
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStores) ListStores(_ context.Context) ([]sync.Store, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]sync.Store, 0, len(f.stores))
	for _, s := range f.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStores) LastSyncMarker(_ context.Context, _ string) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeStores) SetLastSyncMarker(_ context.Context, _ string, _ time.Time) error {
	return nil
}

type fakeSearcher struct {
	matches []index.Match
	err     error

	gotStoreID string
	gotQuery   string
	gotLimit   int
}

func (f *fakeSearcher) Search(_ context.Context, storeID, query string, limit int) ([]index.Match, error) {
	f.gotStoreID = storeID
	f.gotQuery = query
	f.gotLimit = limit
	return f.matches, f.err
}

func newTestHandler(stores *fakeStores, searcher *fakeSearcher) *Handler {
	return NewHandler(stores, searcher, slog.Default(), huma.Middlewares{})
}

func TestHandler_create(t *testing.T) {
	stores := newFakeStores()
	h := newTestHandler(stores, &fakeSearcher{})

	output, err := h.create(context.Background(), &createInput{
		Body: createRequest{
			ID:          "shop-1",
			Domain:      "demo.example.com",
			AccessToken: "secret-token",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "shop-1", output.Body.ID)
	assert.Equal(t, "Ok", output.Body.Status)

	created := stores.stores["shop-1"]
	require.NotNil(t, created)
	assert.Equal(t, "demo.example.com", created.Domain)
	assert.Equal(t, "secret-token", created.AccessToken)
}

func TestHandler_create_Duplicate(t *testing.T) {
	stores := newFakeStores()
	h := newTestHandler(stores, &fakeSearcher{})

	input := &createInput{Body: createRequest{ID: "shop-1", Domain: "demo.example.com", AccessToken: "t"}}

	_, err := h.create(context.Background(), input)
	require.NoError(t, err)

	_, err = h.create(context.Background(), input)
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 409, statusErr.GetStatus())
}

func TestHandler_list(t *testing.T) {
	stores := newFakeStores()
	stores.stores["shop-1"] = &sync.Store{ID: "shop-1", Domain: "demo.example.com"}
	h := newTestHandler(stores, &fakeSearcher{})

	output, err := h.list(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, output.Body.Stores, 1)
	assert.Equal(t, "shop-1", output.Body.Stores[0].ID)
}

func TestHandler_list_Error(t *testing.T) {
	stores := newFakeStores()
	stores.listErr = errors.New("connection lost")
	h := newTestHandler(stores, &fakeSearcher{})

	_, err := h.list(context.Background(), nil)
	assert.Error(t, err)
}

func TestHandler_search(t *testing.T) {
	stores := newFakeStores()
	stores.stores["shop-1"] = &sync.Store{ID: "shop-1"}
	searcher := &fakeSearcher{matches: []index.Match{
		{StoreID: "shop-1", EntityType: "catalog_item", ExternalID: "p-1", Text: "blue kettle"},
	}}
	h := newTestHandler(stores, searcher)

	output, err := h.search(context.Background(), &searchInput{
		StoreID: "shop-1",
		Query:   "kettle",
		Limit:   10,
	})

	require.NoError(t, err)
	require.Len(t, output.Body.Matches, 1)
	assert.Equal(t, "p-1", output.Body.Matches[0].ExternalID)
	assert.Equal(t, "shop-1", searcher.gotStoreID)
	assert.Equal(t, "kettle", searcher.gotQuery)
	assert.Equal(t, 10, searcher.gotLimit)
}

func TestHandler_search_UnknownStore(t *testing.T) {
	h := newTestHandler(newFakeStores(), &fakeSearcher{})

	_, err := h.search(context.Background(), &searchInput{StoreID: "ghost", Query: "x"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.GetStatus())
}
