// Package analysis joins respondents with their balance and profile rows into
// the consolidated analysis table.
package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finzen/internal/core"
	"finzen/internal/indicators"
)

// TableAnalysis is the file and log name of the consolidated table.
const TableAnalysis = "analisis"

// Row is one respondent with every derived attribute.
type Row struct {
	core.Respondent
	NetBalance    decimal.Decimal
	BalanceStatus indicators.BalanceStatus
	BehaviorClass indicators.BehaviorClass
}

// Table is built once per run and never mutated afterwards.
type Table struct {
	Rows []Row
}

// Build joins respondents, balance and profile on respondent id. The join is
// strictly one-to-one: a respondent without exactly one balance and one
// profile row, or a row without a respondent, violates core.ErrInvariant.
func Build(respondents []core.Respondent, balance []indicators.BalanceRow, profile []indicators.ProfileRow) (Table, error) {
	if len(balance) != len(respondents) || len(profile) != len(respondents) {
		return Table{}, fmt.Errorf("%w: %d respondents, %d balance rows, %d profile rows",
			core.ErrInvariant, len(respondents), len(balance), len(profile))
	}

	byBalance := make(map[int]indicators.BalanceRow, len(balance))
	for _, b := range balance {
		if _, dup := byBalance[b.RespondentID]; dup {
			return Table{}, fmt.Errorf("%w: duplicate balance row for respondent %d", core.ErrInvariant, b.RespondentID)
		}
		byBalance[b.RespondentID] = b
	}
	byProfile := make(map[int]indicators.ProfileRow, len(profile))
	for _, p := range profile {
		if _, dup := byProfile[p.RespondentID]; dup {
			return Table{}, fmt.Errorf("%w: duplicate profile row for respondent %d", core.ErrInvariant, p.RespondentID)
		}
		byProfile[p.RespondentID] = p
	}

	rows := make([]Row, 0, len(respondents))
	for _, r := range respondents {
		b, ok := byBalance[r.ID]
		if !ok {
			return Table{}, fmt.Errorf("%w: no balance row for respondent %d", core.ErrInvariant, r.ID)
		}
		p, ok := byProfile[r.ID]
		if !ok {
			return Table{}, fmt.Errorf("%w: no profile row for respondent %d", core.ErrInvariant, r.ID)
		}
		rows = append(rows, Row{
			Respondent:    r,
			NetBalance:    b.NetBalance,
			BalanceStatus: b.Status,
			BehaviorClass: p.Class,
		})
	}
	return Table{Rows: rows}, nil
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }
