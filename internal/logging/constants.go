package logging

// Standard field names so log output stays filterable across components.
const (
	FieldComponent      = "component"
	FieldOperation      = "operation"
	FieldSession        = "session_id"
	FieldState          = "state"
	FieldDirection      = "direction"
	FieldActivity       = "activity"
	FieldClassification = "classification"
	FieldIndex          = "index"
	FieldRemaining      = "remaining"
	FieldCount          = "count"
	FieldGroups         = "groups"
	FieldFile           = "file_path"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatus         = "status"
	FieldDuration       = "duration_ms"
	FieldAttempt        = "attempt"
	FieldError          = "error"
)

// Component names.
const (
	ComponentQueue      = "queue"
	ComponentPivot      = "pivot"
	ComponentLedger     = "ledger"
	ComponentStore      = "store"
	ComponentCategorize = "categorizer"
	ComponentServer     = "server"
	ComponentAPI        = "api"
	ComponentReport     = "report"
	ComponentCLI        = "cli"
)
