package indicators

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"finzen/internal/core"
)

// Undefined is how an undefined measure is written out.
const Undefined = "NA"

// Statistic field names, in table order.
const (
	FieldIncome     = "income"
	FieldExpenses   = "expenses"
	FieldNetBalance = "net_balance"
	FieldAge        = "age"
)

// Measure is a statistic that may be undefined, as every measure of an empty
// cohort is.
type Measure struct {
	Value   decimal.Decimal
	Defined bool
}

func defined(d decimal.Decimal) Measure { return Measure{Value: d, Defined: true} }

// Format rounds the value to places decimals, or returns Undefined.
func (m Measure) Format(places int32) string {
	if !m.Defined {
		return Undefined
	}
	return m.Value.Round(places).String()
}

func (m Measure) String() string {
	if !m.Defined {
		return Undefined
	}
	return m.Value.String()
}

// StatisticsRow is one line of the estadisticas table.
type StatisticsRow struct {
	Field  string
	Count  int
	Mean   Measure
	Median Measure
	StdDev Measure
	Min    Measure
	Max    Measure
}

// ComputeStatistics summarizes income, expenses, net balance and age over the
// whole cohort. Mean and standard deviation are population measures (divided
// by N); the median of an even count is the midpoint of the two middle values.
func ComputeStatistics(respondents []core.Respondent) []StatisticsRow {
	income := make([]decimal.Decimal, len(respondents))
	expenses := make([]decimal.Decimal, len(respondents))
	net := make([]decimal.Decimal, len(respondents))
	ages := make([]decimal.Decimal, len(respondents))
	for i, r := range respondents {
		income[i] = r.MonthlyIncome
		expenses[i] = r.MonthlyExpenses
		net[i] = r.NetBalance()
		ages[i] = decimal.NewFromInt(int64(r.Age))
	}
	return []StatisticsRow{
		describe(FieldIncome, income),
		describe(FieldExpenses, expenses),
		describe(FieldNetBalance, net),
		describe(FieldAge, ages),
	}
}

func describe(field string, values []decimal.Decimal) StatisticsRow {
	row := StatisticsRow{Field: field, Count: len(values)}
	if len(values) == 0 {
		return row
	}

	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := decimal.NewFromInt(int64(len(values)))
	mean := decimal.Sum(decimal.Zero, values...).Div(n)

	var median decimal.Decimal
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
	}

	squares := decimal.Zero
	for _, v := range values {
		d := v.Sub(mean)
		squares = squares.Add(d.Mul(d))
	}
	variance := squares.Div(n)
	std := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))

	row.Mean = defined(mean)
	row.Median = defined(median)
	row.StdDev = defined(std)
	row.Min = defined(sorted[0])
	row.Max = defined(sorted[len(sorted)-1])
	return row
}
