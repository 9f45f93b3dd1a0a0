package entity

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// Type — категория синхронизируемых данных внешней платформы
type Type string

const (
	TypeCatalogItem   Type = "catalog_item"
	TypeOrder         Type = "order"
	TypeCustomer      Type = "customer"
	TypeStoreMetadata Type = "store_metadata"
)

// AllTypes возвращает все поддерживаемые типы в порядке обработки по умолчанию
func AllTypes() []Type {
	return []Type{TypeCatalogItem, TypeOrder, TypeCustomer, TypeStoreMetadata}
}

func (Type) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(TypeCatalogItem),
			string(TypeOrder),
			string(TypeCustomer),
			string(TypeStoreMetadata),
		},
		Description: "Тип синхронизируемой сущности",
		Examples:    []any{TypeCatalogItem},
	}
}

// Validate реализует интерфейс huma.Validatable.
func (t Type) Validate() error {
	switch t {
	case TypeCatalogItem, TypeOrder, TypeCustomer, TypeStoreMetadata:
		return nil
	}
	return fmt.Errorf("неверный тип сущности: %s", t)
}

// String возвращает строковое представление типа.
func (t Type) String() string {
	return string(t)
}

// DefaultBatchSize возвращает размер страницы по умолчанию для типа.
// Заказы выгружаются крупными страницами, метаданные магазина — синглтон.
func (t Type) DefaultBatchSize() int {
	switch t {
	case TypeOrder:
		return 250
	case TypeCatalogItem:
		return 100
	case TypeCustomer:
		return 100
	case TypeStoreMetadata:
		return 1
	default:
		return 50
	}
}

// AppendOnly сообщает, является ли тип неизменяемым после создания.
// Размещенные заказы не редактируются, поэтому для них проверяется
// только путь создания.
func (t Type) AppendOnly() bool {
	return t == TypeOrder
}

// Collection возвращает имя коллекции в API внешней платформы.
func (t Type) Collection() string {
	switch t {
	case TypeCatalogItem:
		return "catalog_items"
	case TypeOrder:
		return "orders"
	case TypeCustomer:
		return "customers"
	case TypeStoreMetadata:
		return "store_metadata"
	default:
		return string(t)
	}
}
