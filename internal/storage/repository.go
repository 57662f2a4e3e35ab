package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finzen/internal/analysis"
	"finzen/internal/core"
	"finzen/internal/indicators"

	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores the run summary together with every derived table in one
// transaction. A failure leaves nothing behind for that run.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run core.RunSummary, ind indicators.Tables, an analysis.Table) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.CreateRun(ctx, runToRow(run)); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for _, b := range ind.Balance {
		if err := q.InsertBalance(ctx, InsertBalanceParams{
			RunID:         run.RunID,
			RespondentID:  int64(b.RespondentID),
			NetBalance:    b.NetBalance.String(),
			BalanceStatus: string(b.Status),
		}); err != nil {
			return fmt.Errorf("insert balance row %d: %w", b.RespondentID, err)
		}
	}

	for i, s := range ind.Statistics {
		if err := q.InsertStatistic(ctx, InsertStatisticParams{
			RunID:    run.RunID,
			Position: int64(i),
			Field:    s.Field,
			Count:    int64(s.Count),
			Mean:     measureString(s.Mean),
			Median:   measureString(s.Median),
			StdDev:   measureString(s.StdDev),
			Min:      measureString(s.Min),
			Max:      measureString(s.Max),
		}); err != nil {
			return fmt.Errorf("insert statistics %s: %w", s.Field, err)
		}
	}

	for _, p := range ind.Profile {
		if err := q.InsertProfile(ctx, run.RunID, int64(p.RespondentID), string(p.Class)); err != nil {
			return fmt.Errorf("insert profile row %d: %w", p.RespondentID, err)
		}
	}

	for i, t := range ind.IncomeTypes {
		if err := q.InsertIncomeType(ctx, InsertIncomeTypeParams{
			RunID:        run.RunID,
			Position:     int64(i),
			IncomeSource: string(t.Source),
			Count:        int64(t.Count),
			Percentage:   t.Percentage.String(),
		}); err != nil {
			return fmt.Errorf("insert income type %s: %w", t.Source, err)
		}
	}

	for _, row := range an.Rows {
		p := InsertRespondentParams{
			RunID:              run.RunID,
			RespondentID:       int64(row.ID),
			Age:                int64(row.Age),
			Gender:             row.Gender,
			IncomeSource:       string(row.IncomeSource),
			SavingsBehavior:    string(row.SavingsBehavior),
			DebtStatus:         string(row.DebtStatus),
			FinancialEducation: string(row.FinancialEducation),
			MonthlyIncome:      row.MonthlyIncome.String(),
			MonthlyExpenses:    row.MonthlyExpenses.String(),
			NetBalance:         row.NetBalance.String(),
			BalanceStatus:      string(row.BalanceStatus),
			BehaviorClass:      string(row.BehaviorClass),
		}
		if row.SavingsPercentage != nil {
			p.SavingsPercentage = sql.NullString{String: row.SavingsPercentage.String(), Valid: true}
		}
		if row.BalanceDifficulty != nil {
			p.BalanceDifficulty = sql.NullInt64{Int64: int64(*row.BalanceDifficulty), Valid: true}
		}
		if err := q.InsertRespondent(ctx, p); err != nil {
			return fmt.Errorf("insert respondent %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Run saved to SQLite",
		"run_id", run.RunID,
		"accepted", run.Accepted,
		"rejected", run.Rejected)
	return nil
}

// GetRun returns the summary of a stored run.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (core.RunSummary, error) {
	row, err := r.queries.GetRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("get run: %w", err)
	}
	return rowToRun(row)
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	rows, err := r.queries.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]core.RunSummary, 0, len(rows))
	for _, row := range rows {
		run, err := rowToRun(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// IncomeTypes reads back the tipo_ingreso table of a run.
func (r *SQLiteRepository) IncomeTypes(ctx context.Context, runID string) ([]indicators.IncomeTypeRow, error) {
	rows, err := r.queries.ListIncomeTypes(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list income types: %w", err)
	}
	out := make([]indicators.IncomeTypeRow, len(rows))
	for i, row := range rows {
		pct, err := decimal.NewFromString(row.Percentage)
		if err != nil {
			return nil, fmt.Errorf("stored percentage for %s: %w", row.IncomeSource, err)
		}
		out[i] = indicators.IncomeTypeRow{
			Source:     core.IncomeSource(row.IncomeSource),
			Count:      int(row.Count),
			Percentage: pct,
		}
	}
	return out, nil
}

// Statistics reads back the estadisticas table of a run.
func (r *SQLiteRepository) Statistics(ctx context.Context, runID string) ([]indicators.StatisticsRow, error) {
	rows, err := r.queries.ListStatistics(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	out := make([]indicators.StatisticsRow, len(rows))
	for i, row := range rows {
		s := indicators.StatisticsRow{Field: row.Field, Count: int(row.Count)}
		for _, m := range []struct {
			dst *indicators.Measure
			src sql.NullString
		}{
			{&s.Mean, row.Mean},
			{&s.Median, row.Median},
			{&s.StdDev, row.StdDev},
			{&s.Min, row.Min},
			{&s.Max, row.Max},
		} {
			if !m.src.Valid {
				continue
			}
			v, err := decimal.NewFromString(m.src.String)
			if err != nil {
				return nil, fmt.Errorf("stored %s statistic: %w", row.Field, err)
			}
			*m.dst = indicators.Measure{Value: v, Defined: true}
		}
		out[i] = s
	}
	return out, nil
}

// RespondentCount returns how many analysis rows were stored for a run.
func (r *SQLiteRepository) RespondentCount(ctx context.Context, runID string) (int, error) {
	n, err := r.queries.CountRespondents(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("count respondents: %w", err)
	}
	return int(n), nil
}

func measureString(m indicators.Measure) sql.NullString {
	if !m.Defined {
		return sql.NullString{}
	}
	return sql.NullString{String: m.Value.String(), Valid: true}
}

func runToRow(run core.RunSummary) Run {
	return Run{
		ID:          run.RunID,
		Source:      run.Source,
		StartedAt:   run.StartedAt.UTC().Format(timeLayout),
		FinishedAt:  run.FinishedAt.UTC().Format(timeLayout),
		RawRows:     int64(run.RawRows),
		Accepted:    int64(run.Accepted),
		Rejected:    int64(run.Rejected),
		Responsible: int64(run.Responsible),
		AtRisk:      int64(run.AtRisk),
		Vulnerable:  int64(run.Vulnerable),
	}
}

func rowToRun(row Run) (core.RunSummary, error) {
	started, err := time.Parse(timeLayout, row.StartedAt)
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("parse started_at of run %s: %w", row.ID, err)
	}
	finished, err := time.Parse(timeLayout, row.FinishedAt)
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("parse finished_at of run %s: %w", row.ID, err)
	}
	return core.RunSummary{
		RunID:       row.ID,
		Source:      row.Source,
		StartedAt:   started,
		FinishedAt:  finished,
		RawRows:     int(row.RawRows),
		Accepted:    int(row.Accepted),
		Rejected:    int(row.Rejected),
		Responsible: int(row.Responsible),
		AtRisk:      int(row.AtRisk),
		Vulnerable:  int(row.Vulnerable),
	}, nil
}
