package log

// Common field names for structured logging
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
	FieldLoanID     = "loan_id"
	FieldLoanTitle  = "loan_title"
	FieldAsOf       = "as_of"
	FieldRows       = "rows"
	FieldProgress   = "progress"
	FieldStatus     = "status"
	FieldCacheKey   = "cache_key"
	FieldMessageID  = "message_id"
	FieldReason     = "reason"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentEngine   = "engine"
	ComponentSchedule = "schedule"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpList      = "list"
	OpDelete    = "delete"
	OpCalculate = "calculate"
	OpRecalc    = "recalc"
	OpExport    = "export"
	OpValidate  = "validate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
