package logging

// Standardized field names for structured logging.
const (
	FieldFile       = "file_path"
	FieldBatch      = "batch"
	FieldBatches    = "batches"
	FieldCategory   = "category"
	FieldStrategy   = "strategy"
	FieldKeyword    = "keyword"
	FieldEntity     = "entity"
	FieldMonth      = "month"
	FieldContract   = "contract_id"
	FieldEntryID    = "entry_id"
	FieldSession    = "session_id"
	FieldRequestID  = "request_id"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldCreated    = "created"
	FieldSkipped    = "skipped"
	FieldProvider   = "provider"
	FieldMIMEType   = "mime_type"
	FieldHeaderRow  = "header_row"
	FieldRowIndex   = "row_index"
	FieldParty      = "party"
)
