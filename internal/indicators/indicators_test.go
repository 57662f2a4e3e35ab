package indicators

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finzen/internal/core"
)

func respondent(id int, income, expenses string, src core.IncomeSource, sb core.SavingsBehavior) core.Respondent {
	return core.Respondent{
		ID:              id,
		Age:             18 + id%8,
		MonthlyIncome:   decimal.RequireFromString(income),
		MonthlyExpenses: decimal.RequireFromString(expenses),
		IncomeSource:    src,
		SavingsBehavior: sb,
	}
}

// threeRespondents is the reference cohort: one surplus, one deficit, one balanced.
func threeRespondents() []core.Respondent {
	return []core.Respondent{
		respondent(0, "500", "300", core.Salaried, core.SavesRegularly),
		respondent(1, "200", "350", core.Informal, core.SavesOccasionally),
		respondent(2, "100", "100", core.FamilySupported, core.SavesRegularly),
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, Surplus, StatusOf(decimal.RequireFromString("0.01")))
	assert.Equal(t, Deficit, StatusOf(decimal.RequireFromString("-0.01")))
	assert.Equal(t, Balanced, StatusOf(decimal.RequireFromString("0.00")))
}

func TestComputeBalance_SignInvariant(t *testing.T) {
	rows := ComputeBalance(threeRespondents())
	require.Len(t, rows, 3)
	for _, r := range rows {
		switch r.Status {
		case Surplus:
			assert.True(t, r.NetBalance.IsPositive())
		case Deficit:
			assert.True(t, r.NetBalance.IsNegative())
		case Balanced:
			assert.True(t, r.NetBalance.IsZero())
		}
	}
	assert.Equal(t, "200", rows[0].NetBalance.String())
	assert.Equal(t, "-150", rows[1].NetBalance.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status   BalanceStatus
		behavior core.SavingsBehavior
		want     BehaviorClass
	}{
		{Surplus, core.SavesRegularly, Responsible},
		{Surplus, core.SavesOccasionally, Responsible},
		{Surplus, core.NeverSaves, AtRisk},
		{Balanced, core.SavesRegularly, Responsible},
		{Balanced, core.SavesOccasionally, AtRisk},
		{Balanced, core.NeverSaves, AtRisk},
		{Deficit, core.SavesRegularly, Vulnerable},
		{Deficit, core.SavesOccasionally, Vulnerable},
		{Deficit, core.NeverSaves, Vulnerable},
		{Surplus, "", AtRisk},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.status, tt.behavior), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.behavior))
		})
	}
}

func TestComputeProfile_DeficitDominates(t *testing.T) {
	var rs []core.Respondent
	for i, sb := range []core.SavingsBehavior{core.SavesRegularly, core.SavesOccasionally, core.NeverSaves} {
		rs = append(rs, respondent(i, "10", "10.01", core.Salaried, sb))
	}
	for _, row := range ComputeProfile(rs) {
		assert.Equal(t, Vulnerable, row.Class)
	}
}

func TestComputeStatistics(t *testing.T) {
	rs := []core.Respondent{
		respondent(0, "100", "50", core.Salaried, core.NeverSaves),
		respondent(1, "200", "50", core.Salaried, core.NeverSaves),
		respondent(2, "300", "50", core.Salaried, core.NeverSaves),
		respondent(3, "400", "50", core.Salaried, core.NeverSaves),
	}
	stats := ComputeStatistics(rs)
	require.Len(t, stats, 4)
	assert.Equal(t, []string{FieldIncome, FieldExpenses, FieldNetBalance, FieldAge},
		[]string{stats[0].Field, stats[1].Field, stats[2].Field, stats[3].Field})

	income := stats[0]
	assert.Equal(t, 4, income.Count)
	assert.Equal(t, "250", income.Mean.String())
	assert.Equal(t, "250", income.Median.String(), "even count uses the midpoint")
	assert.Equal(t, "100", income.Min.String())
	assert.Equal(t, "400", income.Max.String())
	// population std of 100..400 step 100 is sqrt(12500)
	assert.Equal(t, "111.8034", income.StdDev.Format(4))

	expenses := stats[1]
	assert.Equal(t, "0", expenses.StdDev.String())

	odd := ComputeStatistics(rs[:3])
	assert.Equal(t, "200", odd[0].Median.String())
}

func TestComputeStatistics_Sanity(t *testing.T) {
	var rs []core.Respondent
	for i := 0; i < 37; i++ {
		rs = append(rs, respondent(i, fmt.Sprintf("%d.%02d", (i*7919)%1000, i%100), fmt.Sprintf("%d", (i*104729)%900), core.Informal, core.SavesRegularly))
	}
	for _, row := range ComputeStatistics(rs) {
		assert.True(t, row.Min.Value.LessThanOrEqual(row.Mean.Value), "%s: min <= mean", row.Field)
		assert.True(t, row.Mean.Value.LessThanOrEqual(row.Max.Value), "%s: mean <= max", row.Field)
		assert.True(t, row.Min.Value.LessThanOrEqual(row.Median.Value), "%s: min <= median", row.Field)
		assert.True(t, row.Median.Value.LessThanOrEqual(row.Max.Value), "%s: median <= max", row.Field)
		assert.False(t, row.StdDev.Value.IsNegative(), "%s: std >= 0", row.Field)
	}
}

func TestComputeIncomeTypes_Closure(t *testing.T) {
	sources := []core.IncomeSource{core.Salaried, core.Informal, core.Informal, core.NoIncome, core.OtherIncome, core.Salaried, core.Informal}
	var rs []core.Respondent
	for i, src := range sources {
		rs = append(rs, respondent(i, "1", "1", src, core.NeverSaves))
	}

	rows, err := ComputeIncomeTypes(rs)
	require.NoError(t, err)

	got := make([]core.IncomeSource, len(rows))
	total := decimal.Zero
	count := 0
	for i, r := range rows {
		got[i] = r.Source
		total = total.Add(r.Percentage)
		count += r.Count
	}
	assert.Equal(t, []core.IncomeSource{core.Salaried, core.Informal, core.OtherIncome, core.NoIncome}, got)
	assert.Equal(t, len(rs), count)
	assert.True(t, total.Sub(hundred).Abs().LessThan(decimal.New(1, -9)), "sum = %s", total)
}

func TestCompute_EmptyCohort(t *testing.T) {
	tables, err := Compute(nil)
	require.NoError(t, err)

	assert.Empty(t, tables.Balance)
	assert.Empty(t, tables.Profile)
	assert.Empty(t, tables.IncomeTypes)
	require.Len(t, tables.Statistics, 4)
	for _, row := range tables.Statistics {
		assert.Equal(t, 0, row.Count)
		for _, m := range []Measure{row.Mean, row.Median, row.StdDev, row.Min, row.Max} {
			assert.False(t, m.Defined)
			assert.Equal(t, Undefined, m.Format(2))
		}
	}
}

func TestCompute_ThreeRespondents(t *testing.T) {
	tables, err := Compute(threeRespondents())
	require.NoError(t, err)

	var statuses []BalanceStatus
	for _, r := range tables.Balance {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []BalanceStatus{Surplus, Deficit, Balanced}, statuses)

	var classes []BehaviorClass
	for _, r := range tables.Profile {
		classes = append(classes, r.Class)
	}
	assert.Equal(t, []BehaviorClass{Responsible, Vulnerable, Responsible}, classes)

	require.Len(t, tables.IncomeTypes, 3)
	for _, r := range tables.IncomeTypes {
		assert.Equal(t, "33.33", r.Percentage.Round(2).String())
	}

	counts := CountClasses(tables.Profile)
	assert.Equal(t, 2, counts[Responsible])
	assert.Equal(t, 1, counts[Vulnerable])
	assert.Equal(t, 0, counts[AtRisk])
}
