package client

import (
	"context"
	"net/url"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
)

// TriggerSyncRequest — параметры запуска синхронизации магазина.
type TriggerSyncRequest struct {
	EntityTypes      []entity.Type       `json:"entity_types,omitempty"`
	ForceFullSync    bool                `json:"force_full_sync,omitempty"`
	ConflictPolicy   sync.ConflictPolicy `json:"conflict_policy,omitempty"`
	MaxItemsPerBatch map[string]int      `json:"max_items_per_batch,omitempty"`
	IgnoreRateLimit  bool                `json:"ignore_rate_limit,omitempty"`
}

// TriggerSync запускает синхронизацию магазина и ждёт её завершения
func (a *App) TriggerSync(ctx context.Context, storeID string, req TriggerSyncRequest) (*sync.Outcome, error) {
	path := "/api/v1/stores/" + url.PathEscape(storeID) + "/sync"
	resp, err := a.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, err
	}

	var outcome sync.Outcome
	if err := a.parseResponse(resp, &outcome); err != nil {
		return nil, err
	}

	return &outcome, nil
}

// SyncHistory возвращает историю синхронизаций магазина
func (a *App) SyncHistory(ctx context.Context, storeID string, limit int) ([]sync.HistoryEntry, error) {
	path := "/api/v1/stores/" + url.PathEscape(storeID) + "/sync/history"
	resp, err := a.doRequest(ctx, "GET", queryPath(path, limitParam(limit)), nil)
	if err != nil {
		return nil, err
	}

	var historyResp struct {
		Entries []sync.HistoryEntry `json:"entries"`
	}

	if err := a.parseResponse(resp, &historyResp); err != nil {
		return nil, err
	}

	return historyResp.Entries, nil
}

// Stats возвращает сводную статистику повторных попыток
func (a *App) Stats(ctx context.Context) (*retry.OverallStats, error) {
	resp, err := a.doRequest(ctx, "GET", "/api/v1/sync/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats retry.OverallStats
	if err := a.parseResponse(resp, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// OperationStats возвращает статистику по одной операции
func (a *App) OperationStats(ctx context.Context, operationID string) (*retry.OperationStats, error) {
	resp, err := a.doRequest(ctx, "GET", "/api/v1/sync/stats/"+url.PathEscape(operationID), nil)
	if err != nil {
		return nil, err
	}

	var stats retry.OperationStats
	if err := a.parseResponse(resp, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// BreakerStatus возвращает состояние предохранителя операции
func (a *App) BreakerStatus(ctx context.Context, operationID string) (*retry.BreakerStatus, error) {
	resp, err := a.doRequest(ctx, "GET", "/api/v1/sync/breakers/"+url.PathEscape(operationID), nil)
	if err != nil {
		return nil, err
	}

	var status retry.BreakerStatus
	if err := a.parseResponse(resp, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

// ResetBreaker принудительно закрывает предохранитель операции
func (a *App) ResetBreaker(ctx context.Context, operationID string) error {
	path := "/api/v1/sync/breakers/" + url.PathEscape(operationID) + "/reset"
	resp, err := a.doRequest(ctx, "POST", path, nil)
	if err != nil {
		return err
	}

	return a.parseResponse(resp, nil)
}

// RateLimit возвращает текущее состояние ограничителя частоты запросов
func (a *App) RateLimit(ctx context.Context) (*ratelimit.Snapshot, error) {
	resp, err := a.doRequest(ctx, "GET", "/api/v1/sync/ratelimit", nil)
	if err != nil {
		return nil, err
	}

	var snapshot ratelimit.Snapshot
	if err := a.parseResponse(resp, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}
