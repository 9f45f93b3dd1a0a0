package entity

import (
	"encoding/json"
	"time"
)

// Record — запись внешней платформы в сыром виде: идентификатор,
// тип и набор полей, как их вернул API.
type Record struct {
	ExternalID string         `json:"external_id"`
	Type       Type           `json:"type"`
	Fields     map[string]any `json:"fields"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// MarshalFields сериализует поля записи для хранения.
func (r *Record) MarshalFields() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// UnmarshalFields восстанавливает поля записи из хранилища.
func (r *Record) UnmarshalFields(data []byte) error {
	return json.Unmarshal(data, &r.Fields)
}

// ChangeKind — вид изменения записи для обновления поискового индекса
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
)
