package platform

import (
	"context"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
	"storesync/internal/retry"
)

// RetryingClient оборачивает клиент платформы исполнителем повторов.
// Каждая пара магазин/тип сущности получает свой операционный
// идентификатор и, как следствие, свой circuit breaker: деградация
// одной коллекции не выключает остальные.
type RetryingClient struct {
	inner sync.PlatformClient
	exec  *retry.Executor
}

func NewRetryingClient(inner sync.PlatformClient, exec *retry.Executor) *RetryingClient {
	return &RetryingClient{inner: inner, exec: exec}
}

func (c *RetryingClient) List(ctx context.Context, creds sync.Credentials, t entity.Type, p sync.ListParams) ([]entity.Record, error) {
	operationID := creds.StoreDomain + ":" + string(t)
	return retry.Execute(ctx, c.exec, operationID, func(ctx context.Context) ([]entity.Record, error) {
		return c.inner.List(ctx, creds, t, p)
	})
}
