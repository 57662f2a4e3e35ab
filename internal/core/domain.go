package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Salaried        IncomeSource = "salaried"
	Informal        IncomeSource = "informal"
	FamilySupported IncomeSource = "family_supported"
	OtherIncome     IncomeSource = "other"
	NoIncome        IncomeSource = "none"

	SavesRegularly    SavingsBehavior = "saves_regularly"
	SavesOccasionally SavingsBehavior = "saves_occasionally"
	NeverSaves        SavingsBehavior = "never"

	HasDebt DebtStatus = "has_debt"
	NoDebt  DebtStatus = "no_debt"

	EducationYes Exposure = "yes"
	EducationNo  Exposure = "no"
)

type (
	IncomeSource    string
	SavingsBehavior string
	DebtStatus      string
	Exposure        string

	// RawRecord is one survey submission keyed by canonical column key.
	RawRecord struct {
		Line   int // 1-based line or row number in the source, header excluded
		Fields map[string]string
	}

	// Respondent is a validated survey row. ID is its position among accepted rows.
	Respondent struct {
		ID                 int
		NationalID         string
		Age                int
		Gender             string
		MonthlyIncome      decimal.Decimal `validate:"gte=0"`
		MonthlyExpenses    decimal.Decimal `validate:"gte=0"`
		IncomeSource       IncomeSource    `validate:"required,oneof=salaried informal family_supported other none"`
		SavingsBehavior    SavingsBehavior `validate:"required,oneof=saves_regularly saves_occasionally never"`
		DebtStatus         DebtStatus      `validate:"omitempty,oneof=has_debt no_debt"`
		FinancialEducation Exposure        `validate:"omitempty,oneof=yes no"`
		SavingsPercentage  *decimal.Decimal `validate:"omitempty,gte=0,lte=100"`
		BalanceDifficulty  *int             `validate:"omitempty,min=1,max=5"`

		// Set when expenses were answered as essential plus occasional
		// instead of a single total.
		EssentialExpenses  decimal.NullDecimal
		OccasionalExpenses decimal.NullDecimal
	}
)

var (
	ErrMissingField        = errors.New("missing field")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAge          = errors.New("invalid age")
	ErrAgeOutOfRange       = errors.New("age out of range")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidNationalID   = errors.New("invalid national id")
	ErrDuplicateRespondent = errors.New("duplicate respondent")
	ErrInvalidPercentage   = errors.New("invalid percentage")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")

	// ErrStructuralInput marks input that cannot be processed at all.
	ErrStructuralInput = errors.New("structural input failure")
	// ErrInvariant marks a violated internal invariant; never a data condition.
	ErrInvariant = errors.New("internal invariant violation")
)

// IncomeSources lists the categories in report order.
var IncomeSources = []IncomeSource{Salaried, Informal, FamilySupported, OtherIncome, NoIncome}

var incomeSourceAliases = map[string]IncomeSource{
	"salaried":         Salaried,
	"trabajo fijo":     Salaried,
	"empleo fijo":      Salaried,
	"asalariado":       Salaried,
	"informal":         Informal,
	"self_employed":    Informal,
	"temporal":         Informal,
	"trabajo temporal": Informal,
	"negocio propio":   Informal,
	"emprendimiento":   Informal,
	"family_supported": FamilySupported,
	"apoyo familiar":   FamilySupported,
	"familia":          FamilySupported,
	"other":            OtherIncome,
	"otro":             OtherIncome,
	"none":             NoIncome,
	"ninguno":          NoIncome,
	"sin ingresos":     NoIncome,
}

var savingsAliases = map[string]SavingsBehavior{
	"saves_regularly":    SavesRegularly,
	"regularly":          SavesRegularly,
	"regularmente":       SavesRegularly,
	"siempre":            SavesRegularly,
	"saves_occasionally": SavesOccasionally,
	"occasionally":       SavesOccasionally,
	"ocasionalmente":     SavesOccasionally,
	"a veces":            SavesOccasionally,
	"never":              NeverSaves,
	"nunca":              NeverSaves,
}

var debtAliases = map[string]DebtStatus{
	"has_debt": HasDebt,
	"yes":      HasDebt,
	"si":       HasDebt,
	"no_debt":  NoDebt,
	"no":       NoDebt,
}

var exposureAliases = map[string]Exposure{
	"yes": EducationYes,
	"si":  EducationYes,
	"no":  EducationNo,
}

// ParseIncomeSource maps a survey answer to its category.
func ParseIncomeSource(s string) (IncomeSource, error) {
	return lookup(incomeSourceAliases, s)
}

// ParseSavingsBehavior maps a survey answer to its category.
func ParseSavingsBehavior(s string) (SavingsBehavior, error) {
	return lookup(savingsAliases, s)
}

// ParseDebtStatus maps an optional answer; empty input yields "".
func ParseDebtStatus(s string) (DebtStatus, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return lookup(debtAliases, s)
}

// ParseExposure maps an optional yes/no answer; empty input yields "".
func ParseExposure(s string) (Exposure, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return lookup(exposureAliases, s)
}

func lookup[T ~string](aliases map[string]T, s string) (T, error) {
	key := Fold(s)
	if key == "" {
		return "", ErrMissingField
	}
	if v, ok := aliases[key]; ok {
		return v, nil
	}
	if v, ok := aliases[strings.ReplaceAll(key, " ", "_")]; ok {
		return v, nil
	}
	var zero T
	return zero, ErrUnknownCategory
}

// Get returns the trimmed value for key and whether it was non-empty.
func (r RawRecord) Get(key string) (string, bool) {
	v := strings.TrimSpace(r.Fields[key])
	return v, v != ""
}

// NetBalance returns income minus expenses.
func (r Respondent) NetBalance() decimal.Decimal {
	return r.MonthlyIncome.Sub(r.MonthlyExpenses)
}
