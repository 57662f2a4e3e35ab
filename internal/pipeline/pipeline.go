// Package pipeline drives one run: ingest, validate, derive, join, write and
// optionally persist and announce the result.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finzen/internal/amqp"
	"finzen/internal/analysis"
	"finzen/internal/config"
	"finzen/internal/core"
	"finzen/internal/export"
	"finzen/internal/indicators"
	"finzen/internal/log"
	"finzen/internal/normalize"
	"finzen/internal/sheets"
	"finzen/internal/visualize"
)

// RunStore persists a finished run with its tables.
type RunStore interface {
	SaveRun(ctx context.Context, run core.RunSummary, ind indicators.Tables, an analysis.Table) error
}

// RunPublisher announces a finished run.
type RunPublisher interface {
	PublishRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error
}

type Options struct {
	Source        string
	OutputDir     string
	Normalize     normalize.Options
	WriteWorkbook bool
	RenderReport  bool
}

// OptionsFromConfig maps application configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Source:        cfg.InputSource,
		OutputDir:     cfg.OutputDir,
		Normalize:     normalize.Options{MinAge: cfg.MinAge, MaxAge: cfg.MaxAge},
		WriteWorkbook: cfg.WriteWorkbook,
		RenderReport:  cfg.RenderReport,
	}
}

// Result is what a successful run leaves behind.
type Result struct {
	Summary    core.RunSummary
	Rejections []normalize.Rejection
	Insights   analysis.Insights
	Files      []string
}

type Runner struct {
	reader    sheets.ResponseReader
	opts      Options
	store     RunStore
	publisher RunPublisher
	logger    *log.Logger
	events    *log.StructuredLogger

	now   func() time.Time
	newID func() string
}

type RunnerOption func(*Runner)

// WithStore persists every successful run.
func WithStore(s RunStore) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithPublisher announces every successful run.
func WithPublisher(p RunPublisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

func NewRunner(reader sheets.ResponseReader, opts Options, logger *log.Logger, options ...RunnerOption) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	r := &Runner{
		reader: reader,
		opts:   opts,
		logger: logger.WithComponent(log.ComponentPipeline),
		events: log.NewStructuredLogger(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run executes the pipeline once. Structural input problems and invariant
// violations stop the run before any file is written. A failed publish is
// logged and does not fail the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runID := r.newID()
	started := r.now()
	ctx = log.ContextWithLogger(ctx, r.logger.With(log.FieldRunID, runID))

	raw, err := r.ingest(ctx, runID)
	if err != nil {
		return nil, err
	}

	norm := r.validate(ctx, runID, raw)

	ind, an, err := r.derive(ctx, runID, norm.Respondents)
	if err != nil {
		return nil, err
	}

	insights := analysis.Interpret(an)
	r.logInsights(ctx, insights)

	files, err := r.write(ctx, runID, ind, an)
	if err != nil {
		return nil, err
	}

	counts := indicators.CountClasses(ind.Profile)
	summary := core.RunSummary{
		RunID:       runID,
		Source:      r.opts.Source,
		StartedAt:   started,
		RawRows:     len(raw),
		Accepted:    len(norm.Respondents),
		Rejected:    len(norm.Rejections),
		Responsible: counts[indicators.Responsible],
		AtRisk:      counts[indicators.AtRisk],
		Vulnerable:  counts[indicators.Vulnerable],
	}

	if r.opts.RenderReport {
		out, err := r.render(ctx, runID, summary, ind, an, insights)
		if err != nil {
			return nil, err
		}
		files = append(files, out...)
	}

	summary.FinishedAt = r.now()

	if r.store != nil {
		t0 := time.Now()
		r.events.LogStageStart(ctx, runID, StageStorage, "")
		err := r.store.SaveRun(ctx, summary, ind, an)
		r.events.LogStageEnd(ctx, runID, StageStorage, "", t0, err)
		if err != nil {
			r.events.LogError(ctx, "Run persistence failed", err, log.ComponentStorage, log.OpPersist,
				log.NewFields().WithRunID(runID))
			return nil, stageErr(StageStorage, "", err)
		}
	}

	if r.publisher != nil {
		t0 := time.Now()
		r.events.LogStageStart(ctx, runID, StagePublish, "")
		err := r.publisher.PublishRunCompleted(ctx, amqp.NewRunCompletedMessage(summary))
		r.events.LogStageEnd(ctx, runID, StagePublish, "", t0, err)
		if err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Run completed but event was not published",
				log.FieldError, err)
		}
	}

	log.FromContext(ctx).InfoContext(ctx, "Run completed",
		log.FieldRawRows, summary.RawRows,
		log.FieldAccepted, summary.Accepted,
		log.FieldRejected, summary.Rejected,
		log.FieldDuration, summary.Duration().Milliseconds(),
		"files", len(files))

	return &Result{
		Summary:    summary,
		Rejections: norm.Rejections,
		Insights:   insights,
		Files:      files,
	}, nil
}

func (r *Runner) ingest(ctx context.Context, runID string) ([]core.RawRecord, error) {
	t0 := time.Now()
	r.events.LogStageStart(ctx, runID, StageIngestion, "")
	raw, err := r.reader.ReadResponses(ctx)
	r.events.LogStageEnd(ctx, runID, StageIngestion, "", t0, err)
	if err != nil {
		return nil, stageErr(StageIngestion, "", err)
	}
	return raw, nil
}

func (r *Runner) validate(ctx context.Context, runID string, raw []core.RawRecord) normalize.Result {
	t0 := time.Now()
	r.events.LogStageStart(ctx, runID, StageNormalize, "")
	res := normalize.New(r.opts.Normalize).Normalize(raw)
	r.events.LogStageEnd(ctx, runID, StageNormalize, "", t0, nil)

	for _, rej := range res.Rejections {
		log.FromContext(ctx).DebugContext(ctx, "Row rejected",
			log.FieldLine, rej.Line,
			"field", rej.Field,
			log.FieldReason, rej.Reason)
	}
	r.events.LogValidationSummary(ctx, runID, len(raw), len(res.Respondents), len(res.Rejections))
	if len(res.Respondents) == 0 {
		r.events.LogEmptyCohort(ctx, runID, len(raw))
	}
	return res
}

func (r *Runner) derive(ctx context.Context, runID string, respondents []core.Respondent) (indicators.Tables, analysis.Table, error) {
	t0 := time.Now()
	r.events.LogStageStart(ctx, runID, StageIndicators, "")
	ind, err := indicators.Compute(respondents)
	r.events.LogStageEnd(ctx, runID, StageIndicators, "", t0, err)
	if err != nil {
		return indicators.Tables{}, analysis.Table{}, stageErr(StageIndicators, indicators.TableIncomeTypes, err)
	}

	t0 = time.Now()
	r.events.LogStageStart(ctx, runID, StageAnalysis, analysis.TableAnalysis)
	an, err := analysis.Build(respondents, ind.Balance, ind.Profile)
	r.events.LogStageEnd(ctx, runID, StageAnalysis, analysis.TableAnalysis, t0, err)
	if err != nil {
		r.events.LogError(ctx, "Analysis join failed", err, log.ComponentAnalysis, log.OpJoin,
			log.NewFields().WithRunID(runID).WithStage(StageAnalysis, analysis.TableAnalysis))
		return indicators.Tables{}, analysis.Table{}, stageErr(StageAnalysis, analysis.TableAnalysis, err)
	}
	return ind, an, nil
}

func (r *Runner) write(ctx context.Context, runID string, ind indicators.Tables, an analysis.Table) ([]string, error) {
	tables := export.Tables(ind, an)
	var files []string
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, stageErr(StageExport, t.Name, err)
		}
		t0 := time.Now()
		r.events.LogStageStart(ctx, runID, StageExport, t.Name)
		path, err := export.WriteCSV(r.opts.OutputDir, t)
		r.events.LogStageEnd(ctx, runID, StageExport, t.Name, t0, err)
		if err != nil {
			return nil, stageErr(StageExport, t.Name, err)
		}
		log.FromContext(ctx).DebugContext(ctx, "Table written",
			log.FieldTable, t.Name,
			log.FieldRows, len(t.Rows),
			log.FieldPath, path)
		files = append(files, path)
	}

	if r.opts.WriteWorkbook {
		path := filepath.Join(r.opts.OutputDir, export.WorkbookName)
		t0 := time.Now()
		r.events.LogStageStart(ctx, runID, StageExport, export.WorkbookName)
		err := export.WriteWorkbook(path, tables)
		r.events.LogStageEnd(ctx, runID, StageExport, export.WorkbookName, t0, err)
		if err != nil {
			return nil, stageErr(StageExport, export.WorkbookName, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (r *Runner) render(ctx context.Context, runID string, summary core.RunSummary, ind indicators.Tables, an analysis.Table, insights analysis.Insights) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageVisualize, "", err)
	}
	charts := visualize.BuildCharts(ind, an)

	chartPath := filepath.Join(r.opts.OutputDir, visualize.ChartWorkbookName)
	t0 := time.Now()
	r.events.LogStageStart(ctx, runID, StageVisualize, visualize.ChartWorkbookName)
	err := visualize.WriteChartWorkbook(chartPath, charts)
	r.events.LogStageEnd(ctx, runID, StageVisualize, visualize.ChartWorkbookName, t0, err)
	if err != nil {
		return nil, stageErr(StageVisualize, visualize.ChartWorkbookName, err)
	}

	reportPath := filepath.Join(r.opts.OutputDir, visualize.ReportName)
	t0 = time.Now()
	r.events.LogStageStart(ctx, runID, StageVisualize, visualize.ReportName)
	err = visualize.WriteReport(reportPath, visualize.Report{
		RawRows:    summary.RawRows,
		Accepted:   summary.Accepted,
		Rejected:   summary.Rejected,
		Statistics: ind.Statistics,
		Insights:   insights,
		Charts:     charts,
	})
	r.events.LogStageEnd(ctx, runID, StageVisualize, visualize.ReportName, t0, err)
	if err != nil {
		return nil, stageErr(StageVisualize, visualize.ReportName, err)
	}
	return []string{chartPath, reportPath}, nil
}

func (r *Runner) logInsights(ctx context.Context, in analysis.Insights) {
	args := []any{
		"top_expense_age", in.TopExpenseAge,
		"top_expense_mean", in.TopExpenseMean.StringFixed(2),
		"correlation_pairs", in.CorrelationPairs,
		"correlation_strength", in.Strength,
	}
	if in.SavingsDifficulty.Valid {
		args = append(args, "savings_difficulty_correlation", in.SavingsDifficulty.Decimal.String())
	}
	args = append(args, "gender_pairs", in.GenderPairs, "gender_strength", in.GenderStrength)
	if in.GenderExpenses.Valid {
		args = append(args, "gender_expenses_correlation", in.GenderExpenses.Decimal.String())
	}
	log.FromContext(ctx).WithComponent(log.ComponentAnalysis).InfoContext(ctx, "Cohort insights", args...)
}
