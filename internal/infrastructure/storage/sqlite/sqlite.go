package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"storesync/internal/crypto"
	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
)

// Storage — встраиваемое хранилище на SQLite для локального запуска
// и разработки. Реализует те же репозитории, что и Postgres.
type Storage struct {
	db     *sql.DB
	cipher *crypto.TokenCipher
	log    *slog.Logger
}

func New(path string, cipher *crypto.TokenCipher, log *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &Storage{
		db:     db,
		cipher: cipher,
		log:    log.With("component", "sqlite_storage"),
	}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *Storage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS stores (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			access_token TEXT NOT NULL,
			last_sync_marker DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			store_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			external_id TEXT NOT NULL,
			fields TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			synced_at DATETIME NOT NULL,
			PRIMARY KEY (store_id, entity_type, external_id)
		);

		CREATE INDEX IF NOT EXISTS idx_records_updated
			ON records(store_id, entity_type, updated_at);

		CREATE TABLE IF NOT EXISTS sync_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			store_id TEXT NOT NULL,
			strategy TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			items_processed INTEGER NOT NULL DEFAULT 0,
			items_created INTEGER NOT NULL DEFAULT 0,
			items_updated INTEGER NOT NULL DEFAULT 0,
			api_calls INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_history_store
			ON sync_history(store_id, started_at DESC);
	`)
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// DB возвращает соединение для поискового индекса
func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) GetByExternalID(ctx context.Context, storeID string, t entity.Type, externalID string) (*entity.Record, error) {
	rec := entity.Record{}
	var fields string
	err := s.db.QueryRowContext(ctx, `
		SELECT external_id, entity_type, fields, updated_at
		FROM records
		WHERE store_id = ? AND entity_type = ? AND external_id = ?`,
		storeID, string(t), externalID,
	).Scan(&rec.ExternalID, &rec.Type, &fields, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sync.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	if err := rec.UnmarshalFields([]byte(fields)); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return &rec, nil
}

func (s *Storage) Create(ctx context.Context, storeID string, rec *entity.Record) error {
	fields, err := rec.MarshalFields()
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (store_id, entity_type, external_id, fields, updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		storeID, string(rec.Type), rec.ExternalID, string(fields), rec.UpdatedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, storeID string, rec *entity.Record) error {
	fields, err := rec.MarshalFields()
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET fields = ?, updated_at = ?, synced_at = ?
		WHERE store_id = ? AND entity_type = ? AND external_id = ?`,
		string(fields), rec.UpdatedAt, time.Now().UTC(),
		storeID, string(rec.Type), rec.ExternalID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		return sync.ErrRecordNotFound
	}
	return nil
}

func (s *Storage) CountByType(ctx context.Context, storeID string, t entity.Type) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE store_id = ? AND entity_type = ?`,
		storeID, string(t),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (s *Storage) GetStore(ctx context.Context, id string) (*sync.Store, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, domain, access_token, last_sync_marker, created_at, updated_at
		FROM stores WHERE id = ?`, id)

	store, err := s.scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sync.ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return store, nil
}

func (s *Storage) CreateStore(ctx context.Context, store *sync.Store) error {
	token, err := s.cipher.Encrypt(store.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stores (id, domain, access_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		store.ID, store.Domain, token, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return sync.ErrStoreExists
		}
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

func (s *Storage) ListStores(ctx context.Context) ([]sync.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, access_token, last_sync_marker, created_at, updated_at
		FROM stores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []sync.Store
	for rows.Next() {
		store, err := s.scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *store)
	}
	return stores, rows.Err()
}

func (s *Storage) LastSyncMarker(ctx context.Context, storeID string) (time.Time, error) {
	var marker sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT last_sync_marker FROM stores WHERE id = ?`, storeID,
	).Scan(&marker)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, sync.ErrStoreNotFound
		}
		return time.Time{}, fmt.Errorf("get sync marker: %w", err)
	}
	if !marker.Valid {
		return time.Time{}, nil
	}
	return marker.Time, nil
}

func (s *Storage) SetLastSyncMarker(ctx context.Context, storeID string, marker time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE stores SET last_sync_marker = ?, updated_at = ? WHERE id = ?`,
		marker, time.Now().UTC(), storeID)
	if err != nil {
		return fmt.Errorf("set sync marker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set sync marker: %w", err)
	}
	if affected == 0 {
		return sync.ErrStoreNotFound
	}
	return nil
}

func (s *Storage) SaveEntry(ctx context.Context, entry *sync.HistoryEntry) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_history
			(store_id, strategy, success, started_at, finished_at,
			 items_processed, items_created, items_updated, api_calls, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.StoreID, string(entry.Strategy), entry.Success,
		entry.StartedAt, entry.FinishedAt,
		entry.ItemsProcessed, entry.ItemsCreated, entry.ItemsUpdated,
		entry.APICalls, entry.Error)
	if err != nil {
		return fmt.Errorf("save history entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	return nil
}

func (s *Storage) ListEntries(ctx context.Context, storeID string, limit int) ([]sync.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, strategy, success, started_at, finished_at,
		       items_processed, items_created, items_updated, api_calls, error
		FROM sync_history
		WHERE store_id = ?
		ORDER BY started_at DESC
		LIMIT ?`, storeID, limit)
	if err != nil {
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

func (s *Storage) scanStore(row interface {
	Scan(dest ...interface{}) error
}) (*sync.Store, error) {
	var store sync.Store
	var token string
	var marker sql.NullTime

	if err := row.Scan(&store.ID, &store.Domain, &token, &marker,
		&store.CreatedAt, &store.UpdatedAt); err != nil {
		return nil, err
	}

	decrypted, err := s.cipher.Decrypt(token)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	store.AccessToken = decrypted
	if marker.Valid {
		store.LastSyncMarker = marker.Time
	}
	return &store, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
