package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldAccountID  = "account_id"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldDate       = "date"
	FieldInput      = "input"
	FieldRecords    = "records"
	FieldAccepted   = "accepted"
	FieldRejected   = "rejected"
	FieldDuplicates = "duplicates"
	FieldError      = "error"
	FieldOperation  = "operation"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentTracker   = "tracker"
	ComponentImporter  = "importer"
	ComponentCleaner   = "cleaner"
	ComponentAnalytics = "analytics"
	ComponentAlerts    = "alerts"
	ComponentStore     = "store"
	ComponentReport    = "report"
)
