package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finzen/internal/core"
)

// IncomeTypeRow is one line of the tipo_ingreso table.
type IncomeTypeRow struct {
	Source     core.IncomeSource
	Count      int
	Percentage decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeIncomeTypes groups the cohort by income source. Only sources that
// occur are listed, in core.IncomeSources order. An empty cohort has no rows.
func ComputeIncomeTypes(respondents []core.Respondent) ([]IncomeTypeRow, error) {
	if len(respondents) == 0 {
		return nil, nil
	}
	counts := make(map[core.IncomeSource]int)
	for _, r := range respondents {
		counts[r.IncomeSource]++
	}

	total := decimal.NewFromInt(int64(len(respondents)))
	rows := make([]IncomeTypeRow, 0, len(counts))
	seen := 0
	for _, src := range core.IncomeSources {
		c, ok := counts[src]
		if !ok {
			continue
		}
		seen += c
		rows = append(rows, IncomeTypeRow{
			Source:     src,
			Count:      c,
			Percentage: decimal.NewFromInt(int64(c)).Mul(hundred).Div(total),
		})
	}
	if seen != len(respondents) {
		return nil, fmt.Errorf("%w: income types cover %d of %d respondents", core.ErrInvariant, seen, len(respondents))
	}
	return rows, nil
}
