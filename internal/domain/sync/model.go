package sync

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"storesync/internal/domain/entity"
	"storesync/internal/ratelimit"
)

// Strategy — стратегия синхронизации
type Strategy string

const (
	// StrategyFull — полная выгрузка без фильтра по времени
	StrategyFull Strategy = "full"
	// StrategyIncremental — выгрузка с фильтром "изменено после маркера",
	// фильтрации платформы доверяем
	StrategyIncremental Strategy = "incremental"
	// StrategyDelta — тот же фильтр по времени, но каждая запись
	// дополнительно сверяется с локальным состоянием: на длинных окнах
	// надежность фильтрации платформы деградирует
	StrategyDelta Strategy = "delta"
)

// ConflictPolicy — политика разрешения расхождений между локальной
// копией и версией платформы
type ConflictPolicy string

const (
	// ConflictStoreWins — версия магазина на платформе авторитетна
	ConflictStoreWins ConflictPolicy = "store_wins"
	// ConflictLatestWins — побеждает версия с более поздним updated_at
	ConflictLatestWins ConflictPolicy = "latest_timestamp_wins"
	// ConflictMerge — поля платформы накладываются на локальные,
	// локальные поля без аналога на платформе сохраняются
	ConflictMerge ConflictPolicy = "merge"
)

func (ConflictPolicy) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(ConflictStoreWins),
			string(ConflictLatestWins),
			string(ConflictMerge),
		},
		Description: "Политика разрешения конфликтов",
		Examples:    []any{ConflictStoreWins},
	}
}

// Validate реализует интерфейс huma.Validatable.
func (p ConflictPolicy) Validate() error {
	switch p {
	case ConflictStoreWins, ConflictLatestWins, ConflictMerge, "":
		return nil
	}
	return fmt.Errorf("неизвестная политика разрешения конфликтов: %s", p)
}

// Credentials — учетные данные доступа к API внешней платформы
type Credentials struct {
	StoreDomain string `json:"store_domain"`
	AccessToken string `json:"-"`
}

// Empty сообщает, заполнены ли учетные данные
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// Request — запрос на синхронизацию одного магазина.
// Конструируется внешним триггером (планировщик, вебхук, админка)
// и живет только на время выполнения.
type Request struct {
	StoreID          string
	Credentials      Credentials
	LastSyncMarker   *time.Time
	EntityTypes      []entity.Type
	ForceFullSync    bool
	MaxItemsPerBatch map[entity.Type]int
	RespectRateLimit bool
	ConflictPolicy   ConflictPolicy
}

// EntityOutcome — результат обработки одного типа сущностей
type EntityOutcome struct {
	EntityType     entity.Type   `json:"entity_type"`
	Strategy       Strategy      `json:"strategy"`
	ItemsProcessed int           `json:"items_processed"`
	ItemsCreated   int           `json:"items_created"`
	ItemsUpdated   int           `json:"items_updated"`
	// ItemsDeleted всегда ноль: платформа не сообщает об удалениях,
	// локальная копия только накапливается
	ItemsDeleted   int           `json:"items_deleted"`
	ItemsFailed    int           `json:"items_failed"`
	APICalls       int           `json:"api_calls"`
	Duration       time.Duration `json:"duration"`
	IndexUpdates   int           `json:"index_updates"`
	Error          string        `json:"error,omitempty"`
}

// Outcome — итог синхронизации магазина. Формируется один раз на
// запрос; в метаданные магазина записывается только новый маркер,
// сводка уходит в историю.
type Outcome struct {
	Success             bool               `json:"success"`
	StoreID             string             `json:"store_id"`
	StrategyUsed        Strategy           `json:"strategy_used"`
	StartedAt           time.Time          `json:"started_at"`
	FinishedAt          time.Time          `json:"finished_at"`
	NewSyncMarker       time.Time          `json:"new_sync_marker"`
	PerEntityResults    []EntityOutcome    `json:"per_entity_results"`
	TotalItemsProcessed int                `json:"total_items_processed"`
	TotalAPICalls       int                `json:"total_api_calls"`
	RateLimitSnapshot   ratelimit.Snapshot `json:"rate_limit_snapshot"`
	Error               string             `json:"error,omitempty"`
}

// Store — зарегистрированный магазин с учетными данными платформы
type Store struct {
	ID             string    `json:"id"`
	Domain         string    `json:"domain"`
	AccessToken    string    `json:"-"`
	LastSyncMarker time.Time `json:"last_sync_marker,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HistoryEntry — сохраненная сводка одной синхронизации
type HistoryEntry struct {
	ID             int64     `json:"id"`
	StoreID        string    `json:"store_id"`
	Strategy       Strategy  `json:"strategy"`
	Success        bool      `json:"success"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	ItemsProcessed int       `json:"items_processed"`
	ItemsCreated   int       `json:"items_created"`
	ItemsUpdated   int       `json:"items_updated"`
	APICalls       int       `json:"api_calls"`
	Error          string    `json:"error,omitempty"`
}

// ListParams — параметры постраничной выгрузки из API платформы
type ListParams struct {
	Page         int
	PerPage      int
	UpdatedSince *time.Time
}
