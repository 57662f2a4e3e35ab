package pipeline

import "fmt"

// Stage names as they appear in logs and errors.
const (
	StageIngestion  = "ingestion"
	StageNormalize  = "normalize"
	StageIndicators = "indicators"
	StageAnalysis   = "analysis"
	StageExport     = "export"
	StageVisualize  = "visualize"
	StageStorage    = "storage"
	StagePublish    = "publish"
)

// StageError is a fatal run failure tagged with the stage and, when one is
// involved, the table or file being produced.
type StageError struct {
	Stage string
	Table string
	Err   error
}

func (e *StageError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed on %s: %v", e.Stage, e.Table, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage, table string, err error) error {
	return &StageError{Stage: stage, Table: table, Err: err}
}
