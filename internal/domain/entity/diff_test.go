package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func catalogRecord(fields map[string]any) *Record {
	return &Record{
		ExternalID: "p-1",
		Type:       TypeCatalogItem,
		Fields:     fields,
		UpdatedAt:  time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name    string
		prev    map[string]any
		next    map[string]any
		changed bool
	}{
		{
			name:    "одинаковые поля",
			prev:    map[string]any{"title": "Чайник", "price": 19.99},
			next:    map[string]any{"title": "Чайник", "price": 19.99},
			changed: false,
		},
		{
			name:    "изменилась цена",
			prev:    map[string]any{"title": "Чайник", "price": 19.99},
			next:    map[string]any{"title": "Чайник", "price": 24.99},
			changed: true,
		},
		{
			name:    "появилось новое значимое поле",
			prev:    map[string]any{"title": "Чайник"},
			next:    map[string]any{"title": "Чайник", "sku": "T-100"},
			changed: true,
		},
		{
			name:    "изменилось только незначимое поле",
			prev:    map[string]any{"title": "Чайник", "view_count": float64(10)},
			next:    map[string]any{"title": "Чайник", "view_count": float64(999)},
			changed: false,
		},
		{
			name:    "изменился список тегов",
			prev:    map[string]any{"title": "Чайник", "tags": []any{"kitchen"}},
			next:    map[string]any{"title": "Чайник", "tags": []any{"kitchen", "sale"}},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := catalogRecord(tt.prev)
			next := catalogRecord(tt.next)
			assert.Equal(t, tt.changed, Changed(prev, next))
		})
	}
}

func TestChangedOrdersNeverChange(t *testing.T) {
	prev := &Record{ExternalID: "o-1", Type: TypeOrder, Fields: map[string]any{"total": 10.0}}
	next := &Record{ExternalID: "o-1", Type: TypeOrder, Fields: map[string]any{"total": 99.0}}

	assert.False(t, Changed(prev, next))
}

func TestMergePreservesLocalOnlyFields(t *testing.T) {
	prev := catalogRecord(map[string]any{"title": "Чайник", "internal_note": "проверен"})
	next := catalogRecord(map[string]any{"title": "Чайник электрический", "price": 29.99})

	merged := Merge(prev, next)

	assert.Equal(t, "Чайник электрический", merged.Fields["title"])
	assert.Equal(t, 29.99, merged.Fields["price"])
	assert.Equal(t, "проверен", merged.Fields["internal_note"])
}

func TestSearchText(t *testing.T) {
	rec := catalogRecord(map[string]any{
		"title":       "Чайник",
		"description": "Электрический чайник 1.7л",
		"price":       19.99,
	})

	text := SearchText(rec)

	assert.Contains(t, text, "Чайник")
	assert.Contains(t, text, "Электрический чайник 1.7л")
	assert.NotContains(t, text, "19.99")
}

func TestTypeDefaults(t *testing.T) {
	assert.Equal(t, 250, TypeOrder.DefaultBatchSize())
	assert.Equal(t, 1, TypeStoreMetadata.DefaultBatchSize())
	assert.True(t, TypeOrder.AppendOnly())
	assert.False(t, TypeCatalogItem.AppendOnly())
	assert.Error(t, Type("unknown").Validate())
	assert.NoError(t, TypeCustomer.Validate())
}
