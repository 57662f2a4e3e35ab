package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"finzen/internal/amqp"
	"finzen/internal/core"
	"finzen/internal/sheets"
	"finzen/internal/storage"
)

// RunLookup finds the stored summary of a run.
type RunLookup interface {
	GetRun(ctx context.Context, id string) (core.RunSummary, error)
}

// RunLogWorker appends every completed run to the runs log. When a run store
// is configured the stored summary wins over the message body.
type RunLogWorker struct {
	runLog sheets.RunLogWriter
	runs   RunLookup

	mu       sync.Mutex
	appended map[string]string
}

// NewRunLogWorker builds a worker. runLog and runs may both be nil; without a
// runs log the worker only records the event in its logs.
func NewRunLogWorker(runLog sheets.RunLogWriter, runs RunLookup) *RunLogWorker {
	return &RunLogWorker{
		runLog:   runLog,
		runs:     runs,
		appended: make(map[string]string),
	}
}

// HandleRunCompleted processes one run-completed message. Redelivered
// messages for a run already appended are acknowledged without a second row.
func (w *RunLogWorker) HandleRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error {
	slog.InfoContext(ctx, "Processing run completed message",
		"run_id", msg.RunID,
		"accepted", msg.Accepted,
		"rejected", msg.Rejected)

	w.mu.Lock()
	ref, done := w.appended[msg.RunID]
	w.mu.Unlock()
	if done {
		slog.InfoContext(ctx, "Run already in runs log", "run_id", msg.RunID, "row", ref)
		return nil
	}

	run, err := w.resolve(ctx, msg)
	if err != nil {
		return err
	}

	if w.runLog == nil {
		slog.InfoContext(ctx, "No runs log configured, run recorded in logs only",
			"run_id", run.RunID,
			"source", run.Source,
			"raw_rows", run.RawRows,
			"accepted", run.Accepted,
			"rejected", run.Rejected,
			"responsible", run.Responsible,
			"at_risk", run.AtRisk,
			"vulnerable", run.Vulnerable,
			"duration_ms", run.Duration().Milliseconds())
		return nil
	}

	ref, err = w.runLog.AppendRun(ctx, run)
	if err != nil {
		return fmt.Errorf("append run %s to runs log: %w", run.RunID, err)
	}

	w.mu.Lock()
	w.appended[run.RunID] = ref
	w.mu.Unlock()

	slog.InfoContext(ctx, "Run appended to runs log", "run_id", run.RunID, "row", ref)
	return nil
}

func (w *RunLogWorker) resolve(ctx context.Context, msg *amqp.RunCompletedMessage) (core.RunSummary, error) {
	if w.runs == nil {
		return msg.Summary(), nil
	}
	run, err := w.runs.GetRun(ctx, msg.RunID)
	if errors.Is(err, storage.ErrRunNotFound) {
		slog.WarnContext(ctx, "Run not in storage, using message body", "run_id", msg.RunID)
		return msg.Summary(), nil
	}
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("look up run %s: %w", msg.RunID, err)
	}
	return run, nil
}
