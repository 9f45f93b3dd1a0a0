package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
)

// Service — оркестратор синхронизации. Для каждого магазина выбирает
// стратегию по возрасту маркера, постранично выгружает сущности из
// платформы и приводит локальную копию в соответствие. Повторный
// запрос по магазину во время выполнения не порождает вторую
// синхронизацию, а дожидается идущей.
type Service struct {
	records RecordRepository
	stores  StoreRepository
	history HistoryRepository
	index   Indexer
	client  PlatformClient
	limiter RateLimiter
	th      Thresholds
	log     *slog.Logger

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	done    chan struct{}
	outcome *Outcome
}

// Option настраивает сервис при создании
type Option func(*Service)

// WithClock подменяет источник времени
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithSleep подменяет функцию ожидания
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

// New создает сервис синхронизации. history может быть nil, тогда
// сводки не журналируются.
func New(
	records RecordRepository,
	stores StoreRepository,
	history HistoryRepository,
	index Indexer,
	client PlatformClient,
	limiter RateLimiter,
	th Thresholds,
	log *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		records:  records,
		stores:   stores,
		history:  history,
		index:    index,
		client:   client,
		limiter:  limiter,
		th:       th,
		log:      log.With(slog.String("component", "sync_service")),
		clock:    time.Now,
		sleep:    sleepTimer,
		inflight: make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PerformSync выполняет синхронизацию магазина. Если по этому магазину
// синхронизация уже идет, вызов блокируется до ее завершения и
// возвращает ее итог. Ошибка возвращается только при невалидном
// запросе или отмене контекста во время ожидания; ошибки самой
// синхронизации попадают в Outcome.
func (s *Service) PerformSync(ctx context.Context, req Request) (*Outcome, error) {
	if req.StoreID == "" {
		return nil, ErrEmptyStoreID
	}

	s.mu.Lock()
	if f, ok := s.inflight[req.StoreID]; ok {
		s.mu.Unlock()
		s.log.Debug("sync already in flight, awaiting", slog.String("store_id", req.StoreID))
		select {
		case <-f.done:
			return f.outcome, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	s.inflight[req.StoreID] = f
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, req.StoreID)
		s.mu.Unlock()
		close(f.done)
	}()

	f.outcome = s.run(ctx, req)
	return f.outcome, nil
}

func (s *Service) run(ctx context.Context, req Request) *Outcome {
	startedAt := s.clock()
	outcome := &Outcome{
		StoreID:   req.StoreID,
		StartedAt: startedAt,
	}

	fail := func(err error) *Outcome {
		outcome.Error = err.Error()
		outcome.FinishedAt = s.clock()
		if s.limiter != nil {
			outcome.RateLimitSnapshot = s.limiter.Snapshot()
		}
		s.log.Error("sync failed",
			slog.String("store_id", req.StoreID),
			slog.String("error", err.Error()))
		return outcome
	}

	if req.Credentials.Empty() {
		return fail(ErrMissingCredentials)
	}

	marker, err := s.resolveMarker(ctx, req)
	if err != nil {
		return fail(fmt.Errorf("resolve sync marker: %w", err))
	}

	strategy := SelectStrategy(marker, req.ForceFullSync, startedAt, s.th)
	outcome.StrategyUsed = strategy

	types := req.EntityTypes
	if len(types) == 0 {
		types = entity.AllTypes()
	}

	s.log.Info("sync started",
		slog.String("store_id", req.StoreID),
		slog.String("strategy", string(strategy)),
		slog.Int("entity_types", len(types)))

	allOK := true
	for _, t := range types {
		eo := s.syncEntityType(ctx, req, t, strategy, marker)
		outcome.PerEntityResults = append(outcome.PerEntityResults, eo)
		outcome.TotalItemsProcessed += eo.ItemsProcessed
		outcome.TotalAPICalls += eo.APICalls
		if eo.Error != "" {
			allOK = false
		}
	}

	// Маркер ставится на момент старта: изменения, пришедшие на
	// платформу во время выгрузки, попадут в следующий цикл.
	// Назад маркер не откатывается.
	newMarker := startedAt
	if newMarker.Before(marker) {
		newMarker = marker
	}
	outcome.NewSyncMarker = newMarker
	if s.stores != nil {
		if err := s.stores.SetLastSyncMarker(ctx, req.StoreID, newMarker); err != nil {
			allOK = false
			outcome.Error = fmt.Sprintf("save sync marker: %v", err)
		}
	}

	outcome.Success = allOK
	outcome.FinishedAt = s.clock()
	if s.limiter != nil {
		outcome.RateLimitSnapshot = s.limiter.Snapshot()
	}

	s.saveHistory(ctx, outcome)

	s.log.Info("sync finished",
		slog.String("store_id", req.StoreID),
		slog.String("strategy", string(strategy)),
		slog.Bool("success", outcome.Success),
		slog.Int("items_processed", outcome.TotalItemsProcessed),
		slog.Int("api_calls", outcome.TotalAPICalls),
		slog.Duration("duration", outcome.FinishedAt.Sub(outcome.StartedAt)))

	return outcome
}

// resolveMarker берет маркер из запроса, а при его отсутствии — из
// метаданных магазина
func (s *Service) resolveMarker(ctx context.Context, req Request) (time.Time, error) {
	if req.LastSyncMarker != nil {
		return *req.LastSyncMarker, nil
	}
	if s.stores == nil {
		return time.Time{}, nil
	}
	marker, err := s.stores.LastSyncMarker(ctx, req.StoreID)
	if err != nil && !errors.Is(err, ErrStoreNotFound) {
		return time.Time{}, err
	}
	return marker, nil
}

// syncEntityType постранично выгружает один тип сущностей и применяет
// каждую запись к локальной копии. Ошибка страницы прерывает обработку
// типа, уже примененные записи остаются.
func (s *Service) syncEntityType(ctx context.Context, req Request, t entity.Type, strategy Strategy, marker time.Time) EntityOutcome {
	began := s.clock()
	eo := EntityOutcome{EntityType: t, Strategy: strategy}

	batch := t.DefaultBatchSize()
	if override, ok := req.MaxItemsPerBatch[t]; ok && override > 0 {
		batch = override
	}

	var updatedSince *time.Time
	if strategy != StrategyFull && !marker.IsZero() {
		updatedSince = &marker
	}

	log := s.log.With(
		slog.String("store_id", req.StoreID),
		slog.String("entity_type", string(t)))

	for page := 1; ; page++ {
		if err := s.waitForAPISlot(ctx, req); err != nil {
			eo.Error = fmt.Sprintf("rate limiter: %v", err)
			break
		}

		items, err := s.client.List(ctx, req.Credentials, t, ListParams{
			Page:         page,
			PerPage:      batch,
			UpdatedSince: updatedSince,
		})
		eo.APICalls++
		if err != nil {
			eo.Error = fmt.Sprintf("list page %d: %v", page, err)
			break
		}

		for i := range items {
			created, updated, indexed, err := s.applyItem(ctx, req, strategy, &items[i])
			if err != nil {
				eo.ItemsFailed++
				log.Warn("item apply failed",
					slog.String("external_id", items[i].ExternalID),
					slog.String("error", err.Error()))
				continue
			}
			if created {
				eo.ItemsCreated++
			}
			if updated {
				eo.ItemsUpdated++
			}
			eo.IndexUpdates += indexed
		}
		eo.ItemsProcessed += len(items)

		if len(items) < batch {
			break
		}
	}

	eo.Duration = s.clock().Sub(began)
	log.Debug("entity type synced",
		slog.Int("processed", eo.ItemsProcessed),
		slog.Int("created", eo.ItemsCreated),
		slog.Int("updated", eo.ItemsUpdated),
		slog.Int("api_calls", eo.APICalls))
	return eo
}

func (s *Service) waitForAPISlot(ctx context.Context, req Request) error {
	if !req.RespectRateLimit || s.limiter == nil {
		return nil
	}
	if d := s.limiter.RecommendedDelay(); d > 0 {
		if err := s.sleep(ctx, d); err != nil {
			return err
		}
	}
	return s.limiter.WaitForSlot(ctx)
}

// applyItem приводит одну запись локальной копии в соответствие с
// версией платформы
func (s *Service) applyItem(ctx context.Context, req Request, strategy Strategy, item *entity.Record) (created, updated bool, indexed int, err error) {
	prev, err := s.records.GetByExternalID(ctx, req.StoreID, item.Type, item.ExternalID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		if err := s.records.Create(ctx, req.StoreID, item); err != nil {
			return false, false, 0, fmt.Errorf("create record: %w", err)
		}
		n, err := s.upsertIndex(ctx, req.StoreID, item, entity.ChangeCreate)
		if err != nil {
			return true, false, 0, err
		}
		return true, false, n, nil
	case err != nil:
		return false, false, 0, fmt.Errorf("get record: %w", err)
	}

	// Заказы неизменяемы: существующая запись не трогается
	if item.Type.AppendOnly() {
		return false, false, 0, nil
	}

	// Инкрементальная стратегия доверяет фильтру платформы: раз запись
	// пришла, она изменилась. Остальные стратегии сверяют значимые поля,
	// чтобы не дергать индекс впустую.
	if strategy != StrategyIncremental && !entity.Changed(prev, item) {
		return false, false, 0, nil
	}

	next, apply := s.resolveConflict(req.ConflictPolicy, prev, item)
	if !apply {
		return false, false, 0, nil
	}
	if err := s.records.Update(ctx, req.StoreID, next); err != nil {
		return false, false, 0, fmt.Errorf("update record: %w", err)
	}
	n, err := s.upsertIndex(ctx, req.StoreID, next, entity.ChangeUpdate)
	if err != nil {
		return false, true, 0, err
	}
	return false, true, n, nil
}

// resolveConflict применяет политику разрешения конфликтов к паре
// локальная/платформенная версия. Возвращает запись для сохранения и
// признак, что сохранять вообще нужно.
func (s *Service) resolveConflict(policy ConflictPolicy, prev, next *entity.Record) (*entity.Record, bool) {
	switch policy {
	case ConflictLatestWins:
		if !next.UpdatedAt.After(prev.UpdatedAt) {
			return nil, false
		}
		return next, true
	case ConflictMerge:
		return entity.Merge(prev, next), true
	default:
		// store_wins: платформа — источник истины
		return next, true
	}
}

func (s *Service) upsertIndex(ctx context.Context, storeID string, rec *entity.Record, kind entity.ChangeKind) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	n, err := s.index.Upsert(ctx, storeID, rec, kind)
	if err != nil {
		return 0, fmt.Errorf("index upsert: %w", err)
	}
	return n, nil
}

// saveHistory журналирует сводку, ошибка записи не влияет на итог
func (s *Service) saveHistory(ctx context.Context, o *Outcome) {
	if s.history == nil {
		return
	}
	entry := &HistoryEntry{
		StoreID:        o.StoreID,
		Strategy:       o.StrategyUsed,
		Success:        o.Success,
		StartedAt:      o.StartedAt,
		FinishedAt:     o.FinishedAt,
		ItemsProcessed: o.TotalItemsProcessed,
		APICalls:       o.TotalAPICalls,
		Error:          o.Error,
	}
	for _, eo := range o.PerEntityResults {
		entry.ItemsCreated += eo.ItemsCreated
		entry.ItemsUpdated += eo.ItemsUpdated
	}
	if err := s.history.SaveEntry(ctx, entry); err != nil {
		s.log.Warn("history save failed",
			slog.String("store_id", o.StoreID),
			slog.String("error", err.Error()))
	}
}

func sleepTimer(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
