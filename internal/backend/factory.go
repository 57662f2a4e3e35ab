package backend

import (
	"context"
	"fmt"

	"finzen/internal/log"
	"finzen/internal/sheets"
	"finzen/internal/sheets/csvfile"
	gsheet "finzen/internal/sheets/google"
	"finzen/internal/sheets/memory"
	"finzen/internal/sheets/workbook"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentIngestion),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileSource:
		f.logger.Info("Initialized delimited file source",
			log.FieldPath, config.InputPath,
			"delimiter", string(config.Delimiter))
		return &SourceResult{Reader: csvfile.New(config.InputPath, config.Delimiter)}, nil
	case WorkbookSource:
		f.logger.Info("Initialized workbook source", log.FieldPath, config.InputPath, "sheet", config.SheetName)
		return &SourceResult{Reader: workbook.New(config.InputPath, config.SheetName)}, nil
	case SheetsSource:
		cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName, config.GoogleRunsSheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets source", "sheet", config.GoogleSheetName)
		return &SourceResult{Reader: cli}, nil
	case MemorySource:
		f.logger.Info("Initialized memory source", log.FieldPath, config.InputPath)
		return &SourceResult{Reader: memory.NewFromFile(config.InputPath)}, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

// CreateRunLog implements Factory.CreateRunLog. Without a spreadsheet the
// runs log is disabled and nil is returned.
func (f *DefaultFactory) CreateRunLog(ctx context.Context, config Config) (sheets.RunLogWriter, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.Info("Google Sheets not configured, runs log disabled")
		return nil, nil
	}
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName, config.GoogleRunsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets runs log", "sheet", config.GoogleRunsSheetName)
	return cli, nil
}
