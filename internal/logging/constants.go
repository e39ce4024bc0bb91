package logging

// Standard field names so log output can be filtered consistently.
const (
	FieldFile       = "file_path"
	FieldCategory   = "category"
	FieldMethod     = "method"
	FieldConfidence = "confidence"
	FieldKeywords   = "keywords"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldProvider   = "provider"
	FieldModel      = "model"
	FieldTokens     = "tokens"
	FieldCost       = "cost_usd"
	FieldAttempt    = "attempt"
	FieldDiagnosis  = "diagnosis"
	FieldChunk      = "chunk"
	FieldIndex      = "index"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
