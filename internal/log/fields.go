package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldDate         = "date"
	FieldFrom         = "from"
	FieldTo           = "to"
	FieldCashCents    = "cash_cents"
	FieldCardCents    = "card_cents"
	FieldExpenseItems = "expense_items"
	FieldAuditEvents  = "audit_events"
	FieldAuditID      = "audit_id"
	FieldDeleted      = "deleted"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentPurge   = "purge"
	ComponentExport  = "export"
)
