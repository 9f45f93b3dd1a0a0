package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, slog.Default())
}

func TestClient_List(t *testing.T) {
	var gotPath, gotAuth, gotSince string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSince = r.URL.Query().Get("updated_since")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"p-1","updated_at":"2024-06-01T10:00:00Z","title":"Чайник","price":"25.00"},
			{"id":42,"updated_at":"2024-06-01T11:00:00Z","title":"Кружка"}
		]}`))
	})

	since := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	records, err := c.List(context.Background(),
		sync.Credentials{StoreDomain: "demo.example.com", AccessToken: "secret"},
		entity.TypeCatalogItem,
		sync.ListParams{Page: 1, PerPage: 100, UpdatedSince: &since})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/catalog_items", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "2024-05-31T00:00:00Z", gotSince)

	require.Len(t, records, 2)
	assert.Equal(t, "p-1", records[0].ExternalID)
	assert.Equal(t, entity.TypeCatalogItem, records[0].Type)
	assert.Equal(t, "Чайник", records[0].Fields["title"])
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), records[0].UpdatedAt)
	// числовой идентификатор приводится к строке
	assert.Equal(t, "42", records[1].ExternalID)
	// служебные поля не дублируются в Fields
	assert.NotContains(t, records[0].Fields, "id")
	assert.NotContains(t, records[0].Fields, "updated_at")
}

func TestClient_List_NoUpdatedSince(t *testing.T) {
	var rawQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	records, err := c.List(context.Background(), sync.Credentials{AccessToken: "t"},
		entity.TypeOrder, sync.ListParams{Page: 2, PerPage: 250})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotContains(t, rawQuery, "updated_since")
	assert.Contains(t, rawQuery, "page=2")
	assert.Contains(t, rawQuery, "per_page=250")
}

func TestClient_List_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"401 — аутентификация", http.StatusUnauthorized, `{"error":"bad token"}`, "authentication failed"},
		{"404 — не найдено", http.StatusNotFound, `{}`, "not found"},
		{"422 — невалидные данные", http.StatusUnprocessableEntity, `{}`, "invalid data"},
		{"429 — лимит запросов", http.StatusTooManyRequests, `{}`, "rate limit exceeded"},
		{"503 — недоступен", http.StatusServiceUnavailable, `{}`, "service unavailable"},
		{"500 — внутренняя ошибка", http.StatusInternalServerError, `{}`, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.List(context.Background(), sync.Credentials{AccessToken: "t"},
				entity.TypeCustomer, sync.ListParams{Page: 1, PerPage: 10})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_List_ErrorDetailPropagated(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	})
	_, err := c.List(context.Background(), sync.Credentials{AccessToken: "t"},
		entity.TypeCustomer, sync.ListParams{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestClient_List_ItemWithoutID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"title":"без идентификатора"}]}`))
	})
	_, err := c.List(context.Background(), sync.Credentials{AccessToken: "t"},
		entity.TypeCatalogItem, sync.ListParams{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data")
}

func TestClient_List_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, slog.Default())

	_, err := c.List(context.Background(), sync.Credentials{AccessToken: "t"},
		entity.TypeCatalogItem, sync.ListParams{Page: 1, PerPage: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network error")
}
