package store

import (
	"storesync/internal/domain/sync"
	"storesync/internal/infrastructure/index"
)

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ID          string `json:"id" doc:"Идентификатор магазина" minLength:"1"`
	Domain      string `json:"domain" doc:"Домен магазина на платформе" minLength:"1"`
	AccessToken string `json:"access_token" doc:"Токен доступа к API платформы" minLength:"1"`
}

type createOutput struct {
	Body response
}

type response struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Stores []sync.Store `json:"stores"`
}

type searchInput struct {
	StoreID string `path:"store_id" doc:"Идентификатор магазина"`
	Query   string `query:"q" doc:"Поисковый запрос" minLength:"1"`
	Limit   int    `query:"limit" doc:"Максимум результатов" minimum:"0"`
}

type searchOutput struct {
	Body searchResponse
}

type searchResponse struct {
	Matches []index.Match `json:"matches"`
}
