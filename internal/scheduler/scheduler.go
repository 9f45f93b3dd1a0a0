package scheduler

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"storesync/internal/domain/sync"
)

// Trigger запускает синхронизацию одного магазина
type Trigger func(ctx context.Context, store sync.Store) error

// Scheduler периодически синхронизирует все зарегистрированные
// магазины
type Scheduler struct {
	stores   sync.StoreRepository
	trigger  Trigger
	interval time.Duration
	enabled  bool
	log      *slog.Logger
}

func New(stores sync.StoreRepository, trigger Trigger, interval time.Duration, enabled bool, log *slog.Logger) *Scheduler {
	return &Scheduler{
		stores:   stores,
		trigger:  trigger,
		interval: interval,
		enabled:  enabled,
		log:      log.With(slog.String("component", "scheduler")),
	}
}

// Run крутит цикл до отмены контекста
func (s *Scheduler) Run(ctx context.Context) {
	if !s.enabled {
		s.log.Info("автоматическая синхронизация отключена")
		return
	}

	s.log.Info("запуск автоматической синхронизации", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("автоматическая синхронизация остановлена")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce синхронизирует все магазины по очереди. Сбой одного магазина
// не прерывает обход остальных.
func (s *Scheduler) runOnce(ctx context.Context) {
	stores, err := s.stores.ListStores(ctx)
	if err != nil {
		s.log.Error("не удалось получить список магазинов", "error", err)
		return
	}

	for _, store := range stores {
		if ctx.Err() != nil {
			return
		}
		if err := s.trigger(ctx, store); err != nil {
			s.log.Error("ошибка синхронизации магазина",
				"store_id", store.ID, "error", err)
		}
	}
}
