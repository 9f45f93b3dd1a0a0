package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"storesync/internal/domain/entity"
	"storesync/internal/domain/sync"
)

const defaultUserAgent = "Storesync/1.0"

// Client — HTTP-клиент API внешней коммерческой платформы.
// Реализует sync.PlatformClient.
type Client struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

// New создает клиент платформы. baseURL — схема и хост API,
// например https://api.platform.example.
func New(baseURL string, log *slog.Logger) *Client {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
			DisableKeepAlives:   false,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &Client{
		client:    client,
		log:       log.With(slog.String("component", "platform_client")),
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
	}
}

// List выгружает страницу сущностей указанного типа. Фильтр
// UpdatedSince передается платформе как updated_since.
func (c *Client) List(ctx context.Context, creds sync.Credentials, t entity.Type, p sync.ListParams) ([]entity.Record, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.UpdatedSince != nil {
		q.Set("updated_since", p.UpdatedSince.UTC().Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("%s/api/v1/%s?%s", c.baseURL, t.Collection(), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	if creds.StoreDomain != "" {
		req.Header.Set("X-Store-Domain", creds.StoreDomain)
	}

	c.log.Debug("platform request",
		slog.String("collection", t.Collection()),
		slog.Int("page", p.Page),
		slog.Int("per_page", p.PerPage))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("network error: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, body)
	}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid data: failed to decode response: %w", err)
	}

	records := make([]entity.Record, 0, len(payload.Items))
	for _, item := range payload.Items {
		rec, err := recordFromItem(t, item)
		if err != nil {
			return nil, fmt.Errorf("invalid data: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// statusError переводит HTTP-статус в ошибку, по тексту которой
// классификатор повторов отличает устранимые сбои от фатальных
func statusError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		detail = ": " + errResp.Error
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("authentication failed: status %d%s", status, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("not found: status %d%s", status, detail)
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return fmt.Errorf("invalid data: status %d%s", status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("rate limit exceeded: status %d%s", status, detail)
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		return fmt.Errorf("service unavailable: status %d%s", status, detail)
	case status >= 500:
		return fmt.Errorf("internal server error: status %d%s", status, detail)
	default:
		return fmt.Errorf("platform returned status %d%s", status, detail)
	}
}

// recordFromItem извлекает идентификатор и метку изменения, остальные
// поля складывает как есть
func recordFromItem(t entity.Type, item map[string]any) (entity.Record, error) {
	rec := entity.Record{Type: t, Fields: make(map[string]any, len(item))}

	for k, v := range item {
		switch k {
		case "id":
			switch id := v.(type) {
			case string:
				rec.ExternalID = id
			case float64:
				rec.ExternalID = strconv.FormatInt(int64(id), 10)
			default:
				return rec, fmt.Errorf("unexpected id type %T", v)
			}
		case "updated_at":
			s, ok := v.(string)
			if !ok {
				return rec, fmt.Errorf("unexpected updated_at type %T", v)
			}
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return rec, fmt.Errorf("parse updated_at: %w", err)
			}
			rec.UpdatedAt = ts
		default:
			rec.Fields[k] = v
		}
	}

	if rec.ExternalID == "" {
		return rec, fmt.Errorf("item of type %s has no id", t)
	}
	return rec, nil
}
