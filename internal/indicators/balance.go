package indicators

import (
	"github.com/shopspring/decimal"

	"finzen/internal/core"
)

type BalanceStatus string

const (
	Surplus  BalanceStatus = "surplus"
	Deficit  BalanceStatus = "deficit"
	Balanced BalanceStatus = "balanced"
)

// BalanceRow is one line of the equilibrio table.
type BalanceRow struct {
	RespondentID int
	NetBalance   decimal.Decimal
	Status       BalanceStatus
}

// StatusOf classifies a net balance by its sign. Only an exact zero is balanced.
func StatusOf(net decimal.Decimal) BalanceStatus {
	switch net.Sign() {
	case 1:
		return Surplus
	case -1:
		return Deficit
	default:
		return Balanced
	}
}

// ComputeBalance derives one row per respondent, in respondent order.
func ComputeBalance(respondents []core.Respondent) []BalanceRow {
	rows := make([]BalanceRow, len(respondents))
	for i, r := range respondents {
		net := r.NetBalance()
		rows[i] = BalanceRow{RespondentID: r.ID, NetBalance: net, Status: StatusOf(net)}
	}
	return rows
}
