// Package indicators derives the per-respondent and cohort tables from a
// validated cohort.
//
// The four derivations read the same immutable respondent slice and each
// writes its own table, so Compute runs them concurrently and joins before
// returning.
package indicators

import (
	"golang.org/x/sync/errgroup"

	"finzen/internal/core"
)

// Table names as used in file names and logs.
const (
	TableBalance     = "equilibrio"
	TableStatistics  = "estadisticas"
	TableProfile     = "finanzas"
	TableIncomeTypes = "tipo_ingreso"
)

// Tables holds the four indicator tables of one run.
type Tables struct {
	Balance     []BalanceRow
	Statistics  []StatisticsRow
	Profile     []ProfileRow
	IncomeTypes []IncomeTypeRow
}

// Compute derives all indicator tables. An empty cohort is not an error.
func Compute(respondents []core.Respondent) (Tables, error) {
	var (
		t Tables
		g errgroup.Group
	)
	g.Go(func() error {
		t.Balance = ComputeBalance(respondents)
		return nil
	})
	g.Go(func() error {
		t.Statistics = ComputeStatistics(respondents)
		return nil
	})
	g.Go(func() error {
		t.Profile = ComputeProfile(respondents)
		return nil
	})
	g.Go(func() error {
		rows, err := ComputeIncomeTypes(respondents)
		if err != nil {
			return err
		}
		t.IncomeTypes = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Tables{}, err
	}
	return t, nil
}
