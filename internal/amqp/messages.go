package amqp

import (
	"encoding/json"
	"time"

	"kassenbuch/internal/core"
)

// AuditEventMessage mirrors a stored audit event for an external
// collector. It is published after the save transaction committed, so
// a consumer only ever sees changes that are durable locally.
type AuditEventMessage struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	EditedAt  int64     `json:"edited_at"`
	Comment   string    `json:"comment,omitempty"`
	Published time.Time `json:"published"`
}

func NewAuditEventMessage(ev core.AuditEvent) *AuditEventMessage {
	return &AuditEventMessage{
		ID:        ev.ID,
		Date:      string(ev.Date),
		Field:     string(ev.Field),
		OldValue:  ev.OldValue,
		NewValue:  ev.NewValue,
		EditedAt:  ev.EditedAt,
		Comment:   ev.Comment,
		Published: time.Now(),
	}
}

func (m *AuditEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AuditEventMessageFromJSON(data []byte) (*AuditEventMessage, error) {
	var msg AuditEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
