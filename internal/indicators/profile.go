package indicators

import "finzen/internal/core"

type BehaviorClass string

const (
	Responsible BehaviorClass = "responsible"
	AtRisk      BehaviorClass = "at_risk"
	Vulnerable  BehaviorClass = "vulnerable"
)

// BehaviorClasses lists the classes in report order.
var BehaviorClasses = []BehaviorClass{Responsible, AtRisk, Vulnerable}

// ProfileRow is one line of the finanzas table.
type ProfileRow struct {
	RespondentID int
	Class        BehaviorClass
}

type rule struct {
	name  string
	match func(BalanceStatus, core.SavingsBehavior) bool
	class BehaviorClass
}

// rules are evaluated in order; the first match wins and the last always matches.
var rules = []rule{
	{
		name: "surplus and saving",
		match: func(s BalanceStatus, b core.SavingsBehavior) bool {
			return s == Surplus && (b == core.SavesRegularly || b == core.SavesOccasionally)
		},
		class: Responsible,
	},
	{
		name: "balanced and saving regularly",
		match: func(s BalanceStatus, b core.SavingsBehavior) bool {
			return s == Balanced && b == core.SavesRegularly
		},
		class: Responsible,
	},
	{
		name:  "deficit",
		match: func(s BalanceStatus, _ core.SavingsBehavior) bool { return s == Deficit },
		class: Vulnerable,
	},
	{
		name: "not in deficit but never saving",
		match: func(s BalanceStatus, b core.SavingsBehavior) bool {
			return (s == Surplus || s == Balanced) && b == core.NeverSaves
		},
		class: AtRisk,
	},
	{
		name:  "fallback",
		match: func(BalanceStatus, core.SavingsBehavior) bool { return true },
		class: AtRisk,
	},
}

// Classify returns the behavior class of the first matching rule.
func Classify(status BalanceStatus, behavior core.SavingsBehavior) BehaviorClass {
	for _, r := range rules {
		if r.match(status, behavior) {
			return r.class
		}
	}
	return AtRisk
}

// ComputeProfile classifies every respondent, in respondent order.
func ComputeProfile(respondents []core.Respondent) []ProfileRow {
	rows := make([]ProfileRow, len(respondents))
	for i, r := range respondents {
		rows[i] = ProfileRow{RespondentID: r.ID, Class: Classify(StatusOf(r.NetBalance()), r.SavingsBehavior)}
	}
	return rows
}

// CountClasses tallies a profile table.
func CountClasses(rows []ProfileRow) map[BehaviorClass]int {
	counts := make(map[BehaviorClass]int, len(BehaviorClasses))
	for _, r := range rows {
		counts[r.Class]++
	}
	return counts
}
