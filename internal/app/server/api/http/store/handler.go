package store

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"storesync/internal/domain/sync"
	"storesync/internal/infrastructure/index"
)

// Searcher — поиск по индексу локальной копии
type Searcher interface {
	Search(ctx context.Context, storeID, query string, limit int) ([]index.Match, error)
}

type Handler struct {
	stores     sync.StoreRepository
	searcher   Searcher
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(stores sync.StoreRepository, searcher Searcher, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		stores:     stores,
		searcher:   searcher,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.searchOp(), h.search)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	err := h.stores.CreateStore(ctx, &sync.Store{
		ID:          input.Body.ID,
		Domain:      input.Body.Domain,
		AccessToken: input.Body.AccessToken,
	})
	if err != nil {
		if errors.Is(err, sync.ErrStoreExists) {
			return nil, huma.Error409Conflict("store already exists")
		}
		h.log.Error("failed to create store", "store_id", input.Body.ID, "error", err)
		return nil, err
	}

	return &createOutput{
		Body: response{
			ID:     input.Body.ID,
			Status: "Ok",
		},
	}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	stores, err := h.stores.ListStores(ctx)
	if err != nil {
		h.log.Error("failed to list stores", "error", err)
		return nil, err
	}

	return &listOutput{Body: listResponse{Stores: stores}}, nil
}

func (h *Handler) search(ctx context.Context, input *searchInput) (*searchOutput, error) {
	if _, err := h.stores.GetStore(ctx, input.StoreID); err != nil {
		if errors.Is(err, sync.ErrStoreNotFound) {
			return nil, huma.Error404NotFound("store not found")
		}
		return nil, err
	}

	matches, err := h.searcher.Search(ctx, input.StoreID, input.Query, input.Limit)
	if err != nil {
		h.log.Error("search failed", "store_id", input.StoreID, "error", err)
		return nil, err
	}

	return &searchOutput{Body: searchResponse{Matches: matches}}, nil
}
