package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// ContextWithLogger returns a copy of ctx carrying logger
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides the pipeline's recurring log records
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogStageStart logs the start of a pipeline stage
func (sl *StructuredLogger) LogStageStart(ctx context.Context, runID, stage, table string) {
	fields := NewFields().
		WithRunID(runID).
		WithStage(stage, table).
		WithComponent(ComponentPipeline)

	sl.logger.Logger.DebugContext(ctx, "Stage started", fields.ToSlice()...)
}

// LogStageEnd logs the completion of a pipeline stage
func (sl *StructuredLogger) LogStageEnd(ctx context.Context, runID, stage, table string, started time.Time, err error) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}

	fields := NewFields().
		WithRunID(runID).
		WithStage(stage, table).
		WithDuration(time.Since(started).Milliseconds(), err == nil).
		WithError(err).
		WithComponent(ComponentPipeline)

	sl.logger.Logger.Log(ctx, level, "Stage completed", fields.ToSlice()...)
}

// LogValidationSummary logs the accepted/rejected partition of a run
func (sl *StructuredLogger) LogValidationSummary(ctx context.Context, runID string, raw, accepted, rejected int) {
	fields := NewFields().
		WithRunID(runID).
		WithPartition(raw, accepted, rejected).
		WithOperation(OpValidate).
		WithComponent(ComponentNormalize)

	sl.logger.Logger.InfoContext(ctx, "Validation summary", fields.ToSlice()...)
}

// LogEmptyCohort warns that no respondent survived validation
func (sl *StructuredLogger) LogEmptyCohort(ctx context.Context, runID string, raw int) {
	fields := NewFields().
		WithRunID(runID).
		WithPartition(raw, 0, raw).
		WithComponent(ComponentIndicators)

	sl.logger.Logger.WarnContext(ctx, "Empty cohort: indicator tables will be empty or undefined", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
