package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"finzen/internal/core"
)

// Correlation strength labels, by absolute value.
const (
	StrengthWeak      = "weak"
	StrengthModerate  = "moderate"
	StrengthStrong    = "strong"
	StrengthUndefined = "undefined"
)

// Insights are the cohort-level readings shown in the report.
type Insights struct {
	// TopExpenseAge is the age whose respondents have the highest mean
	// expenses; ties go to the youngest. Zero when the cohort is empty.
	TopExpenseAge  int
	TopExpenseMean decimal.Decimal

	// SavingsDifficulty is the Pearson correlation between savings
	// percentage and balance difficulty over respondents who answered both.
	SavingsDifficulty decimal.NullDecimal
	CorrelationPairs  int
	Strength          string

	// GenderExpenses correlates gender, coded by the sorted position of each
	// distinct answer, with monthly expenses over respondents who gave one.
	GenderExpenses decimal.NullDecimal
	GenderPairs    int
	GenderStrength string
}

// Interpret computes the insights of an analysis table.
func Interpret(t Table) Insights {
	var in Insights
	in.TopExpenseAge, in.TopExpenseMean = topExpenseAge(t)

	var xs, ys []float64
	for _, r := range t.Rows {
		if r.SavingsPercentage == nil || r.BalanceDifficulty == nil {
			continue
		}
		xs = append(xs, r.SavingsPercentage.InexactFloat64())
		ys = append(ys, float64(*r.BalanceDifficulty))
	}
	in.CorrelationPairs = len(xs)
	in.Strength = StrengthUndefined
	if rho, ok := pearson(xs, ys); ok {
		in.SavingsDifficulty = decimal.NewNullDecimal(decimal.NewFromFloat(rho).Round(3))
		in.Strength = Strength(rho)
	}

	codes, expenses := genderCodes(t)
	in.GenderPairs = len(codes)
	in.GenderStrength = StrengthUndefined
	if rho, ok := pearson(codes, expenses); ok {
		in.GenderExpenses = decimal.NewNullDecimal(decimal.NewFromFloat(rho).Round(3))
		in.GenderStrength = Strength(rho)
	}
	return in
}

func genderCodes(t Table) ([]float64, []float64) {
	var genders []string
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		g := core.Fold(r.Gender)
		if g != "" && !seen[g] {
			seen[g] = true
			genders = append(genders, g)
		}
	}
	sort.Strings(genders)
	code := make(map[string]float64, len(genders))
	for i, g := range genders {
		code[g] = float64(i)
	}

	var xs, ys []float64
	for _, r := range t.Rows {
		g := core.Fold(r.Gender)
		if g == "" {
			continue
		}
		xs = append(xs, code[g])
		ys = append(ys, r.MonthlyExpenses.InexactFloat64())
	}
	return xs, ys
}

// Strength labels a correlation coefficient.
func Strength(rho float64) string {
	switch a := math.Abs(rho); {
	case a < 0.2:
		return StrengthWeak
	case a < 0.5:
		return StrengthModerate
	default:
		return StrengthStrong
	}
}

func topExpenseAge(t Table) (int, decimal.Decimal) {
	type acc struct {
		sum   decimal.Decimal
		count int64
	}
	byAge := make(map[int]*acc)
	for _, r := range t.Rows {
		a, ok := byAge[r.Age]
		if !ok {
			a = &acc{}
			byAge[r.Age] = a
		}
		a.sum = a.sum.Add(r.MonthlyExpenses)
		a.count++
	}
	ages := make([]int, 0, len(byAge))
	for age := range byAge {
		ages = append(ages, age)
	}
	sort.Ints(ages)

	bestAge, best := 0, decimal.Zero
	for i, age := range ages {
		a := byAge[age]
		mean := a.sum.Div(decimal.NewFromInt(a.count))
		if i == 0 || mean.GreaterThan(best) {
			bestAge, best = age, mean
		}
	}
	return bestAge, best
}

// pearson returns the sample correlation of xs and ys. It is undefined with
// fewer than two pairs or when either series has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
