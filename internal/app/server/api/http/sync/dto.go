package sync

import (
	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
)

type triggerInput struct {
	StoreID string `path:"store_id" doc:"Идентификатор магазина"`
	Body    triggerRequest
}

type triggerRequest struct {
	EntityTypes      []entity.Type       `json:"entity_types,omitempty" doc:"Типы сущностей; пусто — все"`
	ForceFullSync    bool                `json:"force_full_sync,omitempty" doc:"Принудительная полная синхронизация"`
	ConflictPolicy   sync.ConflictPolicy `json:"conflict_policy,omitempty"`
	MaxItemsPerBatch map[string]int      `json:"max_items_per_batch,omitempty" doc:"Размер страницы по типам сущностей"`
	IgnoreRateLimit  bool                `json:"ignore_rate_limit,omitempty" doc:"Не ждать слотов ограничителя частоты"`
}

type triggerOutput struct {
	Body sync.Outcome
}

type historyInput struct {
	StoreID string `path:"store_id" doc:"Идентификатор магазина"`
	Limit   int    `query:"limit" doc:"Максимум записей" minimum:"0"`
}

type historyOutput struct {
	Body historyResponse
}

type historyResponse struct {
	Entries []sync.HistoryEntry `json:"entries"`
}

type statsOutput struct {
	Body retry.OverallStats
}

type operationInput struct {
	OperationID string `path:"operation_id" doc:"Идентификатор операции, например demo.example.com:order"`
}

type operationStatsOutput struct {
	Body retry.OperationStats
}

type breakerOutput struct {
	Body retry.BreakerStatus
}

type resetOutput struct {
	Body resetResponse
}

type resetResponse struct {
	Status string `json:"status"`
}

type rateLimitOutput struct {
	Body ratelimit.Snapshot
}
