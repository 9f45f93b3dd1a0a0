package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
)

// RecordRepository хранит локальную копию записей платформы в Postgres
type RecordRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRecordRepository(pool *pgxpool.Pool, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		pool: pool,
		log:  log.With("component", "record_repository"),
	}
}

func (r *RecordRepository) GetByExternalID(ctx context.Context, storeID string, t entity.Type, externalID string) (*entity.Record, error) {
	const query = `
		SELECT external_id, entity_type, fields, updated_at
		FROM records
		WHERE store_id = $1 AND entity_type = $2 AND external_id = $3`

	rec := entity.Record{}
	var fields []byte
	err := r.pool.QueryRow(ctx, query, storeID, string(t), externalID).
		Scan(&rec.ExternalID, &rec.Type, &fields, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sync.ErrRecordNotFound
		}
		r.log.Error("failed to get record",
			"store_id", storeID, "entity_type", t, "external_id", externalID, "error", err)
		return nil, fmt.Errorf("get record: %w", err)
	}

	if err := rec.UnmarshalFields(fields); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return &rec, nil
}

func (r *RecordRepository) Create(ctx context.Context, storeID string, rec *entity.Record) error {
	const query = `
		INSERT INTO records (store_id, entity_type, external_id, fields, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	fields, err := rec.MarshalFields()
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query,
		storeID, string(rec.Type), rec.ExternalID, fields, rec.UpdatedAt); err != nil {
		r.log.Error("failed to create record",
			"store_id", storeID, "entity_type", rec.Type, "external_id", rec.ExternalID, "error", err)
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Update(ctx context.Context, storeID string, rec *entity.Record) error {
	const query = `
		UPDATE records
		SET fields = $1, updated_at = $2, synced_at = NOW()
		WHERE store_id = $3 AND entity_type = $4 AND external_id = $5`

	fields, err := rec.MarshalFields()
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}

	result, err := r.pool.Exec(ctx, query,
		fields, rec.UpdatedAt, storeID, string(rec.Type), rec.ExternalID)
	if err != nil {
		r.log.Error("failed to update record",
			"store_id", storeID, "entity_type", rec.Type, "external_id", rec.ExternalID, "error", err)
		return fmt.Errorf("update record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return sync.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) CountByType(ctx context.Context, storeID string, t entity.Type) (int64, error) {
	const query = `SELECT COUNT(*) FROM records WHERE store_id = $1 AND entity_type = $2`

	var count int64
	if err := r.pool.QueryRow(ctx, query, storeID, string(t)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
