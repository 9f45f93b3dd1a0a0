package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Blank import required for sqlite3 driver registration.
	// Для FTS5 драйвер должен собираться с тегом sqlite_fts5 (см. Makefile).
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
)

// ErrFTS5Unavailable возвращается, когда драйвер SQLite собран без
// поддержки FTS5: индексу нужна сборка с тегом sqlite_fts5.
var ErrFTS5Unavailable = errors.New("драйвер sqlite собран без FTS5, соберите с тегом sqlite_fts5")

// FTS — полнотекстовый индекс локальной копии на SQLite FTS5.
// Хранится отдельно от основной базы, чтобы полная пересборка не
// блокировала хранилище записей.
type FTS struct {
	db  *sql.DB
	log *slog.Logger
}

// Match — результат поиска по индексу
type Match struct {
	StoreID    string  `json:"store_id"`
	EntityType string  `json:"entity_type"`
	ExternalID string  `json:"external_id"`
	Text       string  `json:"text"`
	Rank       float64 `json:"rank"`
}

// New открывает индекс по указанному пути. ":memory:" дает
// эфемерный индекс для тестов.
func New(path string, log *slog.Logger) (*FTS, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия индекса: %w", err)
	}

	fts := &FTS{
		db:  db,
		log: log.With("component", "search_index"),
	}
	if err := fts.initTables(); err != nil {
		db.Close()
		return nil, initError(err)
	}
	return fts, nil
}

// initError различает отсутствие модуля FTS5 в драйвере и прочие
// ошибки инициализации
func initError(err error) error {
	if strings.Contains(err.Error(), "no such module: fts5") {
		return fmt.Errorf("%w: %v", ErrFTS5Unavailable, err)
	}
	return fmt.Errorf("ошибка инициализации индекса: %w", err)
}

func (f *FTS) initTables() error {
	_, err := f.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS search_index USING fts5(
			store_id UNINDEXED,
			entity_type UNINDEXED,
			external_id UNINDEXED,
			text
		);
	`)
	return err
}

func (f *FTS) Close() error {
	return f.db.Close()
}

// Upsert обновляет документ индекса для записи. Возвращает число
// затронутых документов: 0, если у записи нет текстового содержимого.
func (f *FTS) Upsert(ctx context.Context, storeID string, rec *entity.Record, kind entity.ChangeKind) (int, error) {
	text := entity.SearchText(rec)

	if kind == entity.ChangeUpdate {
		if _, err := f.db.ExecContext(ctx, `
			DELETE FROM search_index
			WHERE store_id = ? AND entity_type = ? AND external_id = ?`,
			storeID, string(rec.Type), rec.ExternalID); err != nil {
			return 0, fmt.Errorf("ошибка удаления документа: %w", err)
		}
	}

	if text == "" {
		return 0, nil
	}

	if _, err := f.db.ExecContext(ctx, `
		INSERT INTO search_index (store_id, entity_type, external_id, text)
		VALUES (?, ?, ?, ?)`,
		storeID, string(rec.Type), rec.ExternalID, text); err != nil {
		return 0, fmt.Errorf("ошибка вставки документа: %w", err)
	}
	return 1, nil
}

// Search ищет записи магазина по текстовому запросу
func (f *FTS) Search(ctx context.Context, storeID, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := f.db.QueryContext(ctx, `
		SELECT store_id, entity_type, external_id, text, rank
		FROM search_index
		WHERE store_id = ? AND search_index MATCH ?
		ORDER BY rank
		LIMIT ?`, storeID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.StoreID, &m.EntityType, &m.ExternalID, &m.Text, &m.Rank); err != nil {
			return nil, fmt.Errorf("ошибка чтения результата: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
