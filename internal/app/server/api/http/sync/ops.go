package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) triggerOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-trigger",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{store_id}/sync",
		Summary:     "Запустить синхронизацию магазина",
		Description: "Выполняет синхронизацию и возвращает итог. Если синхронизация магазина уже идет, запрос дожидается ее результата.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) historyOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{store_id}/sync/history",
		Summary:     "История синхронизаций магазина",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) statsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/stats",
		Summary:     "Сводная статистика повторов по всем операциям",
		Tags:        []string{"sync", "observability"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) operationStatsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-operation-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/stats/{operation_id}",
		Summary:     "Статистика повторов одной операции",
		Tags:        []string{"sync", "observability"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) breakerOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-breaker-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/breakers/{operation_id}",
		Summary:     "Состояние circuit breaker операции",
		Tags:        []string{"sync", "observability"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) resetBreakerOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-breaker-reset",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/breakers/{operation_id}/reset",
		Summary:     "Принудительно закрыть circuit breaker",
		Tags:        []string{"sync", "observability"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) rateLimitOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-ratelimit",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/ratelimit",
		Summary:     "Текущее состояние ограничителя частоты вызовов",
		Tags:        []string{"sync", "observability"},
		Middlewares: h.middleware,
	}
}
