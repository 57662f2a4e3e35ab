package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column keys of a RawRecord.
const (
	ColNationalID         = "national_id"
	ColAge                = "age"
	ColGender             = "gender"
	ColIncomeSource       = "income_source"
	ColMonthlyIncome      = "monthly_income"
	ColMonthlyExpenses    = "monthly_expenses"
	ColEssentialExpenses  = "essential_expenses"
	ColOccasionalExpenses = "occasional_expenses"
	ColSavingsBehavior    = "savings_behavior"
	ColSavingsPercentage  = "savings_percentage"
	ColBalanceDifficulty  = "balance_difficulty"
	ColDebtStatus         = "debt_status"
	ColFinancialEducation = "financial_education"
)

// columnAliases maps folded header labels to canonical keys. Keys are stored
// already folded (lower case, no accents, single spaces).
var columnAliases = map[string]string{
	"national_id": ColNationalID,
	"cedula":      ColNationalID,

	"age":             ColAge,
	"edad":            ColAge,
	"ingrese su edad": ColAge,

	"gender": ColGender,
	"genero": ColGender,

	"income_source": ColIncomeSource,
	"tipo_ingreso":  ColIncomeSource,
	"¿cuenta con ingresos mensuales (trabajo fijo, temporal, negocio propio, apoyo familiar, otro)?": ColIncomeSource,

	"monthly_income": ColMonthlyIncome,
	"ingresos":       ColMonthlyIncome,
	"¿cuales son sus ingresos mensuales? (usd)": ColMonthlyIncome,

	"monthly_expenses": ColMonthlyExpenses,
	"gastos":           ColMonthlyExpenses,

	"essential_expenses":  ColEssentialExpenses,
	"gastos_prioritarios": ColEssentialExpenses,
	"¿cuales son sus gastos fundamentales al mes ? (usd)": ColEssentialExpenses,
	"¿cuales son sus gastos fundamentales al mes? (usd)":  ColEssentialExpenses,

	"occasional_expenses": ColOccasionalExpenses,
	"gastos_secundarios":  ColOccasionalExpenses,
	"¿cuales son sus gastos ocasionales al mes? (usd)": ColOccasionalExpenses,

	"savings_behavior":  ColSavingsBehavior,
	"habito_ahorro":     ColSavingsBehavior,
	"¿con que frecuencia ahorras?": ColSavingsBehavior,

	"savings_percentage": ColSavingsPercentage,
	"porcentaje_ahorro":  ColSavingsPercentage,
	"¿que porcentaje de tus ingresos destinas al ahorro?": ColSavingsPercentage,

	"balance_difficulty":    ColBalanceDifficulty,
	"dificultad_equilibrio": ColBalanceDifficulty,
	"en una escala del 1 al 5, que tan dificil es para ti equilibrar tus finanzas (ingresos con respecto a tus gastos)?": ColBalanceDifficulty,

	"debt_status": ColDebtStatus,
	"deudas":      ColDebtStatus,
	"¿tiene deudas actualmente?": ColDebtStatus,

	"financial_education": ColFinancialEducation,
	"educacion_financiera": ColFinancialEducation,
	"¿ha recibido educacion financiera?": ColFinancialEducation,
}

// CanonicalColumn returns the canonical key for a header label, or "" when
// the label is not part of the survey schema (timestamps, e-mail, names...).
func CanonicalColumn(label string) string {
	return columnAliases[Fold(label)]
}

// MissingColumns reports which required columns a canonical header set lacks.
// Expenses may come as a single total or as the essential/occasional split.
func MissingColumns(present map[string]bool) []string {
	var missing []string
	for _, col := range []string{ColAge, ColMonthlyIncome, ColIncomeSource, ColSavingsBehavior} {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if !present[ColMonthlyExpenses] && !present[ColEssentialExpenses] {
		missing = append(missing, ColMonthlyExpenses)
	}
	return missing
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s, strips accents and collapses whitespace so that survey
// labels and answers compare independently of how the form was typed.
func Fold(s string) string {
	out, _, err := transform.String(folder, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
