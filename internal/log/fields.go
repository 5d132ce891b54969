package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldDuration  = "duration_ms"
	FieldError     = "error"

	FieldRecordID = "id"
	FieldDate     = "date"
	FieldAmountML = "amount_ml"
	FieldGoalML   = "goal_ml"
	FieldWeightKG = "weight_kg"
	FieldStreak   = "streak_days"
	FieldSheetRef = "sheet_ref"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentNotify   = "notify"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentSettings = "settings"
	ComponentCounter  = "counter"
)
