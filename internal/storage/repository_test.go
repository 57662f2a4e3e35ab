package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finzen/internal/analysis"
	"finzen/internal/core"
	"finzen/internal/indicators"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "finzen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func cohort() []core.Respondent {
	pct := decimal.RequireFromString("12.5")
	diff := 3
	return []core.Respondent{
		{ID: 0, Age: 20, MonthlyIncome: decimal.NewFromInt(500), MonthlyExpenses: decimal.NewFromInt(300),
			IncomeSource: core.Salaried, SavingsBehavior: core.SavesRegularly, DebtStatus: core.NoDebt,
			SavingsPercentage: &pct, BalanceDifficulty: &diff},
		{ID: 1, Age: 22, MonthlyIncome: decimal.NewFromInt(200), MonthlyExpenses: decimal.RequireFromString("350.50"),
			IncomeSource: core.Informal, SavingsBehavior: core.SavesOccasionally},
		{ID: 2, Age: 24, MonthlyIncome: decimal.NewFromInt(100), MonthlyExpenses: decimal.NewFromInt(100),
			IncomeSource: core.FamilySupported, SavingsBehavior: core.SavesRegularly},
	}
}

func derive(t *testing.T, rs []core.Respondent) (indicators.Tables, analysis.Table) {
	t.Helper()
	ind, err := indicators.Compute(rs)
	require.NoError(t, err)
	an, err := analysis.Build(rs, ind.Balance, ind.Profile)
	require.NoError(t, err)
	return ind, an
}

func summary(id string, finished time.Time, accepted, rejected int) core.RunSummary {
	return core.RunSummary{
		RunID:       id,
		Source:      "file",
		StartedAt:   finished.Add(-2 * time.Second),
		FinishedAt:  finished,
		RawRows:     accepted + rejected,
		Accepted:    accepted,
		Rejected:    rejected,
		Responsible: 2,
		Vulnerable:  1,
	}
}

func TestSaveRunAndReadBack(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	ind, an := derive(t, cohort())
	finished := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	require.NoError(t, repo.SaveRun(ctx, summary("run-1", finished, 3, 1), ind, an))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "file", got.Source)
	assert.Equal(t, 4, got.RawRows)
	assert.Equal(t, 3, got.Accepted)
	assert.Equal(t, 1, got.Rejected)
	assert.True(t, got.FinishedAt.Equal(finished))
	assert.Equal(t, 2*time.Second, got.Duration())

	types, err := repo.IncomeTypes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, core.Salaried, types[0].Source)
	assert.Equal(t, "33.33", types[0].Percentage.Round(2).String())

	stats, err := repo.Statistics(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stats, len(ind.Statistics))
	for i := range stats {
		assert.Equal(t, ind.Statistics[i].Field, stats[i].Field)
		assert.True(t, ind.Statistics[i].Mean.Value.Equal(stats[i].Mean.Value), stats[i].Field)
	}

	n, err := repo.RespondentCount(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSaveRun_EmptyCohortKeepsUndefinedStatistics(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	ind, an := derive(t, nil)

	require.NoError(t, repo.SaveRun(ctx, summary("empty", time.Now(), 0, 2), ind, an))

	stats, err := repo.Statistics(ctx, "empty")
	require.NoError(t, err)
	for _, s := range stats {
		assert.Zero(t, s.Count)
		assert.False(t, s.Mean.Defined, s.Field)
		assert.False(t, s.StdDev.Defined, s.Field)
	}
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	ind, an := derive(t, cohort())
	now := time.Now()

	require.NoError(t, repo.SaveRun(ctx, summary("dup", now, 3, 0), ind, an))
	require.Error(t, repo.SaveRun(ctx, summary("dup", now, 3, 0), ind, an))

	n, err := repo.RespondentCount(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	ind, an := derive(t, cohort())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.SaveRun(ctx, summary(id, base.Add(time.Duration(i)*time.Hour), 3, 0), ind, an))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestGetRun_NotFound(t *testing.T) {
	_, err := newRepo(t).GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finzen.db")
	v1, err := RunMigrations(path)
	require.NoError(t, err)
	v2, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v1)
	assert.Equal(t, v1, v2)
}
