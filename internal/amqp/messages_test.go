package amqp

import (
	"testing"

	"kassenbuch/internal/core"
)

func TestAuditEventMessageJSON(t *testing.T) {
	ev := core.AuditEvent{
		ID:       "ae-1",
		Date:     "2026-02-07",
		Field:    core.FieldCash,
		OldValue: "1000",
		NewValue: "1500",
		EditedAt: 1770000000000,
		Comment:  "till recount",
	}

	body, err := NewAuditEventMessage(ev).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := AuditEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != ev.ID || got.Field != "cash" || got.NewValue != "1500" || got.Comment != "till recount" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := AuditEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
