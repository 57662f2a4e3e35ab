package backend

import (
	"context"

	"finzen/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the response reader and optional cleanup function
type SourceResult struct {
	Reader  sheets.ResponseReader
	Cleanup CleanupFunc
}

// Factory creates survey sources and run logs based on configuration
type Factory interface {
	// CreateSource creates the response reader selected by config
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
	// CreateRunLog creates the runs log writer; nil when none is configured
	CreateRunLog(ctx context.Context, config Config) (sheets.RunLogWriter, error)
}

// Config holds configuration for source creation
type Config struct {
	// Source type
	Type SourceType

	// File, workbook and memory sources
	InputPath string
	Delimiter rune
	SheetName string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
	GoogleRunsSheetName string
}

// SourceType represents the type of survey source
type SourceType string

const (
	FileSource     SourceType = "file"
	WorkbookSource SourceType = "workbook"
	SheetsSource   SourceType = "sheets"
	MemorySource   SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case FileSource, WorkbookSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}
