package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldStage     = "stage"
	FieldTable     = "table"
	FieldRows      = "rows"
	FieldRawRows   = "raw_rows"
	FieldAccepted  = "accepted"
	FieldRejected  = "rejected"
	FieldPath      = "path"
	FieldSource    = "source"
	FieldLine      = "line"
	FieldReason    = "reason"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldOperation = "operation"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentPipeline   = "pipeline"
	ComponentIngestion  = "ingestion"
	ComponentNormalize  = "normalize"
	ComponentIndicators = "indicators"
	ComponentAnalysis   = "analysis"
	ComponentExport     = "export"
	ComponentVisualize  = "visualize"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
)

// Operations defines standard operation names
const (
	OpRead     = "read"
	OpValidate = "validate"
	OpCompute  = "compute"
	OpJoin     = "join"
	OpWrite    = "write"
	OpRender   = "render"
	OpPersist  = "persist"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpAppend   = "append"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRunID adds the run identifier
func (f LogFields) WithRunID(runID string) LogFields {
	if runID != "" {
		f[FieldRunID] = runID
	}
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithStage adds the pipeline stage and, when known, the table it produces
func (f LogFields) WithStage(stage, table string) LogFields {
	f[FieldStage] = stage
	if table != "" {
		f[FieldTable] = table
	}
	return f
}

// WithPartition adds validation partition counts
func (f LogFields) WithPartition(raw, accepted, rejected int) LogFields {
	f[FieldRawRows] = raw
	f[FieldAccepted] = accepted
	f[FieldRejected] = rejected
	return f
}

// WithDuration adds elapsed milliseconds and the outcome
func (f LogFields) WithDuration(durationMs int64, success bool) LogFields {
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
