package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldReportID  = "report_id"
	FieldCase      = "case"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Deck fields
	FieldDeck     = "deck"
	FieldDeckHash = "deck_hash"
	FieldName     = "field"
	FieldSection  = "section"
	FieldIssues   = "issues"

	// Path fields
	FieldPath = "path"
	FieldDir  = "dir"

	// Network fields
	FieldAddr = "addr"
)
