package store

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "stores-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/stores",
		Summary:       "Зарегистрировать магазин",
		Description:   "Регистрирует магазин для синхронизации. Токен доступа шифруется перед сохранением.",
		Tags:          []string{"stores"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "stores-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores",
		Summary:     "Список зарегистрированных магазинов",
		Tags:        []string{"stores"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) searchOp() huma.Operation {
	return huma.Operation{
		OperationID: "stores-search",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{store_id}/search",
		Summary:     "Поиск по локальной копии магазина",
		Description: "Полнотекстовый поиск по синхронизированным записям.",
		Tags:        []string{"stores", "search"},
		Middlewares: h.middleware,
	}
}
