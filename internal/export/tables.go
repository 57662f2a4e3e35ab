// Package export serializes the derived tables. It performs no computation:
// every value written is taken from the tables as they were built.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"finzen/internal/analysis"
	"finzen/internal/indicators"
)

// Decimal places used when writing statistics and percentages. Amounts are
// written exactly as parsed.
const (
	StatisticsPlaces = 4
	PercentPlaces    = 2
)

// Table is a named, headed grid of cells. Cells hold string, int,
// decimal.Decimal, indicators.Measure or nil for an unanswered value.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Tables lays out every output table in a fixed order: the four indicator
// tables followed by the analysis table.
func Tables(ind indicators.Tables, an analysis.Table) []Table {
	return []Table{
		balanceTable(ind.Balance),
		statisticsTable(ind.Statistics),
		profileTable(ind.Profile),
		incomeTypesTable(ind.IncomeTypes),
		analysisTable(an),
	}
}

func balanceTable(rows []indicators.BalanceRow) Table {
	t := Table{Name: indicators.TableBalance, Header: []string{"respondent_id", "net_balance", "balance_status"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.RespondentID, r.NetBalance, string(r.Status)})
	}
	return t
}

func statisticsTable(rows []indicators.StatisticsRow) Table {
	t := Table{Name: indicators.TableStatistics, Header: []string{"field", "count", "mean", "median", "std_dev", "min", "max"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Field, r.Count, r.Mean, r.Median, r.StdDev, r.Min, r.Max})
	}
	return t
}

func profileTable(rows []indicators.ProfileRow) Table {
	t := Table{Name: indicators.TableProfile, Header: []string{"respondent_id", "behavior_class"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.RespondentID, string(r.Class)})
	}
	return t
}

func incomeTypesTable(rows []indicators.IncomeTypeRow) Table {
	t := Table{Name: indicators.TableIncomeTypes, Header: []string{"income_source", "count", "percentage_of_cohort"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{string(r.Source), r.Count, r.Percentage.Round(PercentPlaces)})
	}
	return t
}

func analysisTable(an analysis.Table) Table {
	t := Table{Name: analysis.TableAnalysis, Header: []string{
		"respondent_id", "age", "gender", "income_source", "savings_behavior",
		"debt_status", "financial_education", "savings_percentage", "balance_difficulty",
		"monthly_income", "monthly_expenses", "net_balance", "balance_status", "behavior_class",
	}}
	for _, r := range an.Rows {
		var pct, diff any
		if r.SavingsPercentage != nil {
			pct = *r.SavingsPercentage
		}
		if r.BalanceDifficulty != nil {
			diff = *r.BalanceDifficulty
		}
		t.Rows = append(t.Rows, []any{
			r.ID, r.Age, r.Gender, string(r.IncomeSource), string(r.SavingsBehavior),
			string(r.DebtStatus), string(r.FinancialEducation), pct, diff,
			r.MonthlyIncome, r.MonthlyExpenses, r.NetBalance, string(r.BalanceStatus), string(r.BehaviorClass),
		})
	}
	return t
}

// formatCell renders a cell for delimited output.
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case decimal.Decimal:
		return c.String()
	case indicators.Measure:
		return c.Format(StatisticsPlaces)
	default:
		panic("export: unsupported cell type")
	}
}
