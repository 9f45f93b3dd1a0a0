package client

import (
	"context"
	"net/url"
	"strconv"

	"storesync/internal/domain/sync"
	"storesync/internal/infrastructure/index"
)

// RegisterStoreRequest — параметры регистрации магазина на сервере.
type RegisterStoreRequest struct {
	ID          string `json:"id"`
	Domain      string `json:"domain"`
	AccessToken string `json:"access_token"`
}

// RegisterStore регистрирует магазин на сервере
func (a *App) RegisterStore(ctx context.Context, req RegisterStoreRequest) error {
	resp, err := a.doRequest(ctx, "POST", "/api/v1/stores", req)
	if err != nil {
		return err
	}

	return a.parseResponse(resp, nil)
}

// ListStores возвращает список зарегистрированных магазинов
func (a *App) ListStores(ctx context.Context) ([]sync.Store, error) {
	resp, err := a.doRequest(ctx, "GET", "/api/v1/stores", nil)
	if err != nil {
		return nil, err
	}

	var listResp struct {
		Stores []sync.Store `json:"stores"`
	}

	if err := a.parseResponse(resp, &listResp); err != nil {
		return nil, err
	}

	return listResp.Stores, nil
}

// Search выполняет полнотекстовый поиск по локальной копии магазина
func (a *App) Search(ctx context.Context, storeID, query string, limit int) ([]index.Match, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/stores/" + url.PathEscape(storeID) + "/search"
	resp, err := a.doRequest(ctx, "GET", queryPath(path, params), nil)
	if err != nil {
		return nil, err
	}

	var searchResp struct {
		Matches []index.Match `json:"matches"`
	}

	if err := a.parseResponse(resp, &searchResp); err != nil {
		return nil, err
	}

	return searchResp.Matches, nil
}
