//POST /api/v1/stores                        # Регистрация магазина
//GET  /api/v1/stores                        # Список магазинов
//GET  /api/v1/stores/{id}/search            # Поиск по локальной копии
//POST /api/v1/stores/{id}/sync              # Запуск синхронизации
//GET  /api/v1/stores/{id}/sync/history      # История синхронизаций
//GET  /api/v1/sync/stats                    # Статистика повторов
//GET  /api/v1/sync/breakers/{operation_id}  # Состояние circuit breaker
//GET  /api/v1/sync/ratelimit                # Состояние ограничителя частоты

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	healthAPI "storesync/internal/app/server/api/http/health"
	"storesync/internal/app/server/api/http/middleware/logger"
	storeAPI "storesync/internal/app/server/api/http/store"
	syncAPI "storesync/internal/app/server/api/http/sync"
	"storesync/internal/domain/sync"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
)

// Deps — собранные зависимости API
type Deps struct {
	Syncer   syncAPI.Syncer
	Stores   sync.StoreRepository
	History  sync.HistoryRepository
	Searcher storeAPI.Searcher
	Executor *retry.Executor
	Limiter  *ratelimit.Limiter
}

type Handlers struct {
	Health *healthAPI.Handler
	Store  *storeAPI.Handler
	Sync   *syncAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Storesync API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Store.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	mws := huma.Middlewares{loggerMW.Middleware()}

	return &Handlers{
		Health: healthAPI.NewHandler(log, mws),
		Store:  storeAPI.NewHandler(deps.Stores, deps.Searcher, log, mws),
		Sync: syncAPI.NewHandler(deps.Syncer, deps.Stores, deps.History,
			deps.Executor, deps.Limiter, log, mws),
	}
}
