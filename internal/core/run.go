package core

import "time"

// RunSummary describes one finished pipeline run. It is what gets persisted,
// published and appended to the runs log.
type RunSummary struct {
	RunID      string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	RawRows    int
	Accepted   int
	Rejected   int

	Responsible int
	AtRisk      int
	Vulnerable  int
}

// Duration returns the wall time of the run.
func (r RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
