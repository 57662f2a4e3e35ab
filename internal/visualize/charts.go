// Package visualize renders charts from the derived tables. It reads tables
// only and never changes them.
package visualize

import (
	"github.com/shopspring/decimal"

	"finzen/internal/analysis"
	"finzen/internal/indicators"
)

// Output file names.
const (
	ChartWorkbookName = "graficos.xlsx"
	ReportName        = "reporte.html"
)

type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// Chart is one labelled series ready to be drawn.
type Chart struct {
	Name   string
	Title  string
	Kind   Kind
	Labels []string
	Values []float64
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	for _, v := range c.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// BuildCharts derives the report charts: balance status and behavior class
// distributions, the income type shares, total income against total
// expenses, the essential/occasional expense composition and real against
// expected savings.
func BuildCharts(ind indicators.Tables, an analysis.Table) []Chart {
	status := Chart{
		Name:   "balance_status",
		Title:  "Balance status",
		Kind:   KindBar,
		Labels: []string{string(indicators.Surplus), string(indicators.Balanced), string(indicators.Deficit)},
		Values: make([]float64, 3),
	}
	for _, b := range ind.Balance {
		switch b.Status {
		case indicators.Surplus:
			status.Values[0]++
		case indicators.Balanced:
			status.Values[1]++
		case indicators.Deficit:
			status.Values[2]++
		}
	}

	classes := Chart{Name: "behavior_class", Title: "Financial behavior", Kind: KindBar}
	counts := indicators.CountClasses(ind.Profile)
	for _, c := range indicators.BehaviorClasses {
		classes.Labels = append(classes.Labels, string(c))
		classes.Values = append(classes.Values, float64(counts[c]))
	}

	income := Chart{Name: "income_type", Title: "Income type", Kind: KindPie}
	for _, r := range ind.IncomeTypes {
		income.Labels = append(income.Labels, string(r.Source))
		income.Values = append(income.Values, r.Percentage.Round(2).InexactFloat64())
	}

	totalIncome, totalExpenses := decimal.Zero, decimal.Zero
	for _, r := range an.Rows {
		totalIncome = totalIncome.Add(r.MonthlyIncome)
		totalExpenses = totalExpenses.Add(r.MonthlyExpenses)
	}
	totals := Chart{
		Name:   "income_vs_expenses",
		Title:  "Total income vs expenses",
		Kind:   KindBar,
		Labels: []string{"income", "expenses"},
		Values: []float64{totalIncome.InexactFloat64(), totalExpenses.InexactFloat64()},
	}

	return []Chart{status, classes, income, totals, composition(an), savings(an)}
}

// composition splits expenses into essential and occasional shares over the
// respondents who answered with the split.
func composition(an analysis.Table) Chart {
	c := Chart{
		Name:   "expense_composition",
		Title:  "Expense composition",
		Kind:   KindPie,
		Labels: []string{"essential", "occasional"},
		Values: make([]float64, 2),
	}
	essential, occasional := decimal.Zero, decimal.Zero
	for _, r := range an.Rows {
		if !r.EssentialExpenses.Valid {
			continue
		}
		essential = essential.Add(r.EssentialExpenses.Decimal)
		occasional = occasional.Add(r.OccasionalExpenses.Decimal)
	}
	total := essential.Add(occasional)
	if total.IsZero() {
		return c
	}
	hundred := decimal.NewFromInt(100)
	c.Values[0] = essential.Mul(hundred).Div(total).Round(2).InexactFloat64()
	c.Values[1] = occasional.Mul(hundred).Div(total).Round(2).InexactFloat64()
	return c
}

// savings compares the mean real saving (income minus expenses) with the
// mean saving the respondents expected from their stated percentage of
// income. Only respondents who stated a percentage count.
func savings(an analysis.Table) Chart {
	c := Chart{
		Name:   "savings_real_vs_expected",
		Title:  "Real vs expected savings (mean)",
		Kind:   KindBar,
		Labels: []string{"real", "expected"},
		Values: make([]float64, 2),
	}
	actual, expected := decimal.Zero, decimal.Zero
	var n int64
	for _, r := range an.Rows {
		if r.SavingsPercentage == nil {
			continue
		}
		actual = actual.Add(r.NetBalance)
		expected = expected.Add(r.MonthlyIncome.Mul(*r.SavingsPercentage).Div(decimal.NewFromInt(100)))
		n++
	}
	if n == 0 {
		return c
	}
	count := decimal.NewFromInt(n)
	c.Values[0] = actual.Div(count).Round(2).InexactFloat64()
	c.Values[1] = expected.Div(count).Round(2).InexactFloat64()
	return c
}
