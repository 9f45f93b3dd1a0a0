package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/sync"
)

const defaultHistoryLimit = 50

// HistoryRepository хранит журнал выполненных синхронизаций
type HistoryRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewHistoryRepository(pool *pgxpool.Pool, log *slog.Logger) *HistoryRepository {
	return &HistoryRepository{
		pool: pool,
		log:  log.With("component", "history_repository"),
	}
}

func (r *HistoryRepository) SaveEntry(ctx context.Context, entry *sync.HistoryEntry) error {
	const query = `
		INSERT INTO sync_history
			(store_id, strategy, success, started_at, finished_at,
			 items_processed, items_created, items_updated, api_calls, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		entry.StoreID, string(entry.Strategy), entry.Success,
		entry.StartedAt, entry.FinishedAt,
		entry.ItemsProcessed, entry.ItemsCreated, entry.ItemsUpdated,
		entry.APICalls, entry.Error,
	).Scan(&entry.ID)
	if err != nil {
		r.log.Error("failed to save history entry", "store_id", entry.StoreID, "error", err)
		return fmt.Errorf("save history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListEntries(ctx context.Context, storeID string, limit int) ([]sync.HistoryEntry, error) {
	const query = `
		SELECT id, store_id, strategy, success, started_at, finished_at,
		       items_processed, items_created, items_updated, api_calls, error
		FROM sync_history
		WHERE store_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := r.pool.Query(ctx, query, storeID, limit)
	if err != nil {
		r.log.Error("failed to list history", "store_id", storeID, "error", err)
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []sync.HistoryEntry
	for rows.Next() {
		var e sync.HistoryEntry
		if err := rows.Scan(&e.ID, &e.StoreID, &e.Strategy, &e.Success,
			&e.StartedAt, &e.FinishedAt,
			&e.ItemsProcessed, &e.ItemsCreated, &e.ItemsUpdated,
			&e.APICalls, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
