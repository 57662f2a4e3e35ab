package sheets

import (
	"context"

	"finzen/internal/core"
)

// Ports for outbound adapters.
type (
	// ResponseReader yields the raw survey submissions of one source, with
	// header labels already mapped to canonical column keys.
	ResponseReader interface {
		ReadResponses(ctx context.Context) ([]core.RawRecord, error)
	}

	// RunLogWriter appends a finished run to an external runs log.
	RunLogWriter interface {
		AppendRun(ctx context.Context, run core.RunSummary) (rowRef string, err error)
	}
)
