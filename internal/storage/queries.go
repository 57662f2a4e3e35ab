package storage

import (
	"context"
	"database/sql"
)

// Run mirrors a row of the runs table.
type Run struct {
	ID          string
	Source      string
	StartedAt   string
	FinishedAt  string
	RawRows     int64
	Accepted    int64
	Rejected    int64
	Responsible int64
	AtRisk      int64
	Vulnerable  int64
}

const createRun = `
INSERT INTO runs (id, source, started_at, finished_at, raw_rows, accepted, rejected, responsible, at_risk, vulnerable)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateRun(ctx context.Context, arg Run) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.Source,
		arg.StartedAt,
		arg.FinishedAt,
		arg.RawRows,
		arg.Accepted,
		arg.Rejected,
		arg.Responsible,
		arg.AtRisk,
		arg.Vulnerable,
	)
	return err
}

const runColumns = `id, source, started_at, finished_at, raw_rows, accepted, rejected, responsible, at_risk, vulnerable`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID,
		&r.Source,
		&r.StartedAt,
		&r.FinishedAt,
		&r.RawRows,
		&r.Accepted,
		&r.Rejected,
		&r.Responsible,
		&r.AtRisk,
		&r.Vulnerable,
	)
	return r, err
}

const getRun = `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	return scanRun(q.db.QueryRowContext(ctx, getRun, id))
}

const listRuns = `SELECT ` + runColumns + ` FROM runs ORDER BY finished_at DESC, id LIMIT ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertBalance = `
INSERT INTO run_balance (run_id, respondent_id, net_balance, balance_status)
VALUES (?, ?, ?, ?)
`

type InsertBalanceParams struct {
	RunID         string
	RespondentID  int64
	NetBalance    string
	BalanceStatus string
}

func (q *Queries) InsertBalance(ctx context.Context, arg InsertBalanceParams) error {
	_, err := q.db.ExecContext(ctx, insertBalance, arg.RunID, arg.RespondentID, arg.NetBalance, arg.BalanceStatus)
	return err
}

const insertStatistic = `
INSERT INTO run_statistics (run_id, position, field, count, mean, median, std_dev, min, max)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertStatisticParams struct {
	RunID    string
	Position int64
	Field    string
	Count    int64
	Mean     sql.NullString
	Median   sql.NullString
	StdDev   sql.NullString
	Min      sql.NullString
	Max      sql.NullString
}

func (q *Queries) InsertStatistic(ctx context.Context, arg InsertStatisticParams) error {
	_, err := q.db.ExecContext(ctx, insertStatistic,
		arg.RunID,
		arg.Position,
		arg.Field,
		arg.Count,
		arg.Mean,
		arg.Median,
		arg.StdDev,
		arg.Min,
		arg.Max,
	)
	return err
}

const listStatistics = `
SELECT run_id, position, field, count, mean, median, std_dev, min, max
FROM run_statistics WHERE run_id = ? ORDER BY position
`

func (q *Queries) ListStatistics(ctx context.Context, runID string) ([]InsertStatisticParams, error) {
	rows, err := q.db.QueryContext(ctx, listStatistics, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InsertStatisticParams
	for rows.Next() {
		var i InsertStatisticParams
		if err := rows.Scan(
			&i.RunID,
			&i.Position,
			&i.Field,
			&i.Count,
			&i.Mean,
			&i.Median,
			&i.StdDev,
			&i.Min,
			&i.Max,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProfile = `
INSERT INTO run_profile (run_id, respondent_id, behavior_class)
VALUES (?, ?, ?)
`

func (q *Queries) InsertProfile(ctx context.Context, runID string, respondentID int64, class string) error {
	_, err := q.db.ExecContext(ctx, insertProfile, runID, respondentID, class)
	return err
}

const insertIncomeType = `
INSERT INTO run_income_types (run_id, position, income_source, count, percentage)
VALUES (?, ?, ?, ?, ?)
`

type InsertIncomeTypeParams struct {
	RunID        string
	Position     int64
	IncomeSource string
	Count        int64
	Percentage   string
}

func (q *Queries) InsertIncomeType(ctx context.Context, arg InsertIncomeTypeParams) error {
	_, err := q.db.ExecContext(ctx, insertIncomeType, arg.RunID, arg.Position, arg.IncomeSource, arg.Count, arg.Percentage)
	return err
}

const listIncomeTypes = `
SELECT run_id, position, income_source, count, percentage
FROM run_income_types WHERE run_id = ? ORDER BY position
`

func (q *Queries) ListIncomeTypes(ctx context.Context, runID string) ([]InsertIncomeTypeParams, error) {
	rows, err := q.db.QueryContext(ctx, listIncomeTypes, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InsertIncomeTypeParams
	for rows.Next() {
		var i InsertIncomeTypeParams
		if err := rows.Scan(&i.RunID, &i.Position, &i.IncomeSource, &i.Count, &i.Percentage); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertRespondent = `
INSERT INTO run_respondents (
    run_id, respondent_id, age, gender, income_source, savings_behavior, debt_status,
    financial_education, savings_percentage, balance_difficulty, monthly_income,
    monthly_expenses, net_balance, balance_status, behavior_class
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertRespondentParams struct {
	RunID              string
	RespondentID       int64
	Age                int64
	Gender             string
	IncomeSource       string
	SavingsBehavior    string
	DebtStatus         string
	FinancialEducation string
	SavingsPercentage  sql.NullString
	BalanceDifficulty  sql.NullInt64
	MonthlyIncome      string
	MonthlyExpenses    string
	NetBalance         string
	BalanceStatus      string
	BehaviorClass      string
}

func (q *Queries) InsertRespondent(ctx context.Context, arg InsertRespondentParams) error {
	_, err := q.db.ExecContext(ctx, insertRespondent,
		arg.RunID,
		arg.RespondentID,
		arg.Age,
		arg.Gender,
		arg.IncomeSource,
		arg.SavingsBehavior,
		arg.DebtStatus,
		arg.FinancialEducation,
		arg.SavingsPercentage,
		arg.BalanceDifficulty,
		arg.MonthlyIncome,
		arg.MonthlyExpenses,
		arg.NetBalance,
		arg.BalanceStatus,
		arg.BehaviorClass,
	)
	return err
}

const countRespondents = `SELECT COUNT(*) FROM run_respondents WHERE run_id = ?`

func (q *Queries) CountRespondents(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRespondents, runID).Scan(&n)
	return n, err
}
