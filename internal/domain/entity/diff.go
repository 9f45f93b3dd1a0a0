package entity

import (
	"reflect"
	"sort"
	"strings"
)

// significantFields — бизнес-значимые поля каждого типа. Изменение
// записи определяется по этим полям, а не по факту присутствия в выдаче:
// это избавляет от лишних обновлений индекса и повторного построения
// эмбеддингов для фактически не изменившихся записей.
var significantFields = map[Type][]string{
	TypeCatalogItem: {
		"title", "description", "price", "currency", "sku",
		"available", "tags", "image_url",
	},
	TypeCustomer: {
		"email", "first_name", "last_name", "phone",
		"orders_count", "total_spent", "accepts_marketing",
	},
	TypeStoreMetadata: {
		"name", "domain", "currency", "timezone", "plan",
	},
	// Заказы неизменяемы, для них сравнение не выполняется.
	TypeOrder: nil,
}

// Changed сообщает, отличается ли новая версия записи от сохраненной
// по бизнес-значимым полям.
func Changed(prev, next *Record) bool {
	if prev == nil || next == nil {
		return prev != next
	}
	fields, ok := significantFields[next.Type]
	if !ok || fields == nil {
		return false
	}
	for _, f := range fields {
		pv, pok := prev.Fields[f]
		nv, nok := next.Fields[f]
		if pok != nok {
			return true
		}
		if !pok {
			continue
		}
		if !reflect.DeepEqual(pv, nv) {
			return true
		}
	}
	return false
}

// Merge накладывает значимые поля новой версии на сохраненную,
// не затирая поля, которых нет в выдаче платформы. Используется
// политикой разрешения конфликтов "merge".
func Merge(prev, next *Record) *Record {
	merged := &Record{
		ExternalID: next.ExternalID,
		Type:       next.Type,
		Fields:     make(map[string]any, len(prev.Fields)+len(next.Fields)),
		UpdatedAt:  next.UpdatedAt,
	}
	for k, v := range prev.Fields {
		merged.Fields[k] = v
	}
	for k, v := range next.Fields {
		merged.Fields[k] = v
	}
	return merged
}

// SearchText собирает текстовое представление значимых полей записи
// для полнотекстового индекса.
func SearchText(rec *Record) string {
	fields, ok := significantFields[rec.Type]
	if !ok || fields == nil {
		fields = sortedKeys(rec.Fields)
	}
	var parts []string
	for _, f := range fields {
		v, ok := rec.Fields[f]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
