package sync

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
)

// Syncer — оркестратор синхронизации
type Syncer interface {
	PerformSync(ctx context.Context, req sync.Request) (*sync.Outcome, error)
}

type Handler struct {
	syncer     Syncer
	stores     sync.StoreRepository
	history    sync.HistoryRepository
	exec       *retry.Executor
	limiter    *ratelimit.Limiter
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(
	syncer Syncer,
	stores sync.StoreRepository,
	history sync.HistoryRepository,
	exec *retry.Executor,
	limiter *ratelimit.Limiter,
	log *slog.Logger,
	mws huma.Middlewares,
) *Handler {
	return &Handler{
		syncer:     syncer,
		stores:     stores,
		history:    history,
		exec:       exec,
		limiter:    limiter,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.triggerOp(), h.trigger)
	huma.Register(api, h.historyOp(), h.listHistory)
	huma.Register(api, h.statsOp(), h.stats)
	huma.Register(api, h.operationStatsOp(), h.operationStats)
	huma.Register(api, h.breakerOp(), h.breakerStatus)
	huma.Register(api, h.resetBreakerOp(), h.resetBreaker)
	huma.Register(api, h.rateLimitOp(), h.rateLimit)
}

func (h *Handler) trigger(ctx context.Context, input *triggerInput) (*triggerOutput, error) {
	store, err := h.stores.GetStore(ctx, input.StoreID)
	if err != nil {
		if errors.Is(err, sync.ErrStoreNotFound) {
			return nil, huma.Error404NotFound("store not found")
		}
		return nil, err
	}

	req := sync.Request{
		StoreID: store.ID,
		Credentials: sync.Credentials{
			StoreDomain: store.Domain,
			AccessToken: store.AccessToken,
		},
		EntityTypes:      input.Body.EntityTypes,
		ForceFullSync:    input.Body.ForceFullSync,
		ConflictPolicy:   input.Body.ConflictPolicy,
		RespectRateLimit: !input.Body.IgnoreRateLimit,
	}
	if len(input.Body.MaxItemsPerBatch) > 0 {
		req.MaxItemsPerBatch = make(map[entity.Type]int, len(input.Body.MaxItemsPerBatch))
		for k, v := range input.Body.MaxItemsPerBatch {
			req.MaxItemsPerBatch[entity.Type(k)] = v
		}
	}

	outcome, err := h.syncer.PerformSync(ctx, req)
	if err != nil {
		h.log.Error("sync trigger failed", "store_id", input.StoreID, "error", err)
		return nil, err
	}

	return &triggerOutput{Body: *outcome}, nil
}

func (h *Handler) listHistory(ctx context.Context, input *historyInput) (*historyOutput, error) {
	entries, err := h.history.ListEntries(ctx, input.StoreID, input.Limit)
	if err != nil {
		h.log.Error("failed to list history", "store_id", input.StoreID, "error", err)
		return nil, err
	}

	return &historyOutput{Body: historyResponse{Entries: entries}}, nil
}

func (h *Handler) stats(_ context.Context, _ *struct{}) (*statsOutput, error) {
	return &statsOutput{Body: h.exec.OverallStats()}, nil
}

func (h *Handler) operationStats(_ context.Context, input *operationInput) (*operationStatsOutput, error) {
	stats, ok := h.exec.Stats(input.OperationID)
	if !ok {
		return nil, huma.Error404NotFound("unknown operation")
	}
	return &operationStatsOutput{Body: stats}, nil
}

func (h *Handler) breakerStatus(_ context.Context, input *operationInput) (*breakerOutput, error) {
	status, ok := h.exec.BreakerStatus(input.OperationID)
	if !ok {
		return nil, huma.Error404NotFound("unknown operation")
	}
	return &breakerOutput{Body: status}, nil
}

func (h *Handler) resetBreaker(_ context.Context, input *operationInput) (*resetOutput, error) {
	if !h.exec.ResetBreaker(input.OperationID) {
		return nil, huma.Error404NotFound("unknown operation")
	}
	h.log.Info("circuit breaker reset", "operation_id", input.OperationID)
	return &resetOutput{Body: resetResponse{Status: "Ok"}}, nil
}

func (h *Handler) rateLimit(_ context.Context, _ *struct{}) (*rateLimitOutput, error) {
	return &rateLimitOutput{Body: h.limiter.Snapshot()}, nil
}
