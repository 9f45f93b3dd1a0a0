package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"storesync/internal/crypto"
	"storesync/internal/domain/sync"
)

// StoreRepository хранит метаданные магазинов. Токены доступа
// шифруются перед записью и расшифровываются при чтении.
type StoreRepository struct {
	pool   *pgxpool.Pool
	cipher *crypto.TokenCipher
	log    *slog.Logger
}

func NewStoreRepository(pool *pgxpool.Pool, cipher *crypto.TokenCipher, log *slog.Logger) *StoreRepository {
	return &StoreRepository{
		pool:   pool,
		cipher: cipher,
		log:    log.With("component", "store_repository"),
	}
}

func (r *StoreRepository) GetStore(ctx context.Context, id string) (*sync.Store, error) {
	const query = `
		SELECT id, domain, access_token, last_sync_marker, created_at, updated_at
		FROM stores
		WHERE id = $1`

	store, err := r.scanStore(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sync.ErrStoreNotFound
		}
		r.log.Error("failed to get store", "store_id", id, "error", err)
		return nil, fmt.Errorf("get store: %w", err)
	}
	return store, nil
}

func (r *StoreRepository) CreateStore(ctx context.Context, store *sync.Store) error {
	const query = `
		INSERT INTO stores (id, domain, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING`

	token, err := r.cipher.Encrypt(store.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, store.ID, store.Domain, token)
	if err != nil {
		r.log.Error("failed to create store", "store_id", store.ID, "error", err)
		return fmt.Errorf("create store: %w", err)
	}
	if result.RowsAffected() == 0 {
		return sync.ErrStoreExists
	}
	return nil
}

func (r *StoreRepository) ListStores(ctx context.Context) ([]sync.Store, error) {
	const query = `
		SELECT id, domain, access_token, last_sync_marker, created_at, updated_at
		FROM stores
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list stores", "error", err)
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []sync.Store
	for rows.Next() {
		store, err := r.scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *store)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) LastSyncMarker(ctx context.Context, storeID string) (time.Time, error) {
	const query = `SELECT last_sync_marker FROM stores WHERE id = $1`

	var marker *time.Time
	err := r.pool.QueryRow(ctx, query, storeID).Scan(&marker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, sync.ErrStoreNotFound
		}
		return time.Time{}, fmt.Errorf("get sync marker: %w", err)
	}
	if marker == nil {
		return time.Time{}, nil
	}
	return *marker, nil
}

func (r *StoreRepository) SetLastSyncMarker(ctx context.Context, storeID string, marker time.Time) error {
	const query = `
		UPDATE stores
		SET last_sync_marker = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, marker, storeID)
	if err != nil {
		r.log.Error("failed to set sync marker", "store_id", storeID, "error", err)
		return fmt.Errorf("set sync marker: %w", err)
	}
	if result.RowsAffected() == 0 {
		return sync.ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) scanStore(row pgx.Row) (*sync.Store, error) {
	var store sync.Store
	var token string
	var marker *time.Time

	if err := row.Scan(&store.ID, &store.Domain, &token, &marker,
		&store.CreatedAt, &store.UpdatedAt); err != nil {
		return nil, err
	}

	decrypted, err := r.cipher.Decrypt(token)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	store.AccessToken = decrypted
	if marker != nil {
		store.LastSyncMarker = *marker
	}
	return &store, nil
}
