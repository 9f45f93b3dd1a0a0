package sync

import (
	"context"
	"time"

	"storesync/internal/domain/entity"
	"storesync/internal/ratelimit"
)

// RecordRepository — хранилище локальной копии записей платформы
type RecordRepository interface {
	// GetByExternalID возвращает запись по внешнему идентификатору
	// или ErrRecordNotFound
	GetByExternalID(ctx context.Context, storeID string, t entity.Type, externalID string) (*entity.Record, error)
	Create(ctx context.Context, storeID string, rec *entity.Record) error
	Update(ctx context.Context, storeID string, rec *entity.Record) error
	CountByType(ctx context.Context, storeID string, t entity.Type) (int64, error)
}

// StoreRepository — метаданные зарегистрированных магазинов
type StoreRepository interface {
	GetStore(ctx context.Context, id string) (*Store, error)
	CreateStore(ctx context.Context, store *Store) error
	ListStores(ctx context.Context) ([]Store, error)
	// LastSyncMarker возвращает нулевое время, если магазин еще
	// ни разу не синхронизировался
	LastSyncMarker(ctx context.Context, storeID string) (time.Time, error)
	SetLastSyncMarker(ctx context.Context, storeID string, marker time.Time) error
}

// HistoryRepository — журнал выполненных синхронизаций
type HistoryRepository interface {
	SaveEntry(ctx context.Context, entry *HistoryEntry) error
	ListEntries(ctx context.Context, storeID string, limit int) ([]HistoryEntry, error)
}

// Indexer — поисковый индекс локальной копии. Upsert возвращает
// число затронутых документов индекса.
type Indexer interface {
	Upsert(ctx context.Context, storeID string, rec *entity.Record, kind entity.ChangeKind) (int, error)
}

// PlatformClient — клиент API внешней платформы
type PlatformClient interface {
	List(ctx context.Context, creds Credentials, t entity.Type, p ListParams) ([]entity.Record, error)
}

// RateLimiter — ограничитель частоты вызовов API платформы
type RateLimiter interface {
	WaitForSlot(ctx context.Context) error
	RecommendedDelay() time.Duration
	Snapshot() ratelimit.Snapshot
}
