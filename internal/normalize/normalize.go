// Package normalize turns raw survey submissions into validated respondents.
//
// Every raw record ends up either as a Respondent or as a Rejection, never
// both and never neither. Parsing is fail-closed: an unparsable amount, an
// unknown category or an out-of-band age rejects the row instead of being
// replaced by a default.
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"finzen/internal/core"
)

// Rejection records why a raw row was excluded.
type Rejection struct {
	Line   int
	Field  string
	Reason string
	Err    error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("line %d: %s", r.Line, r.Reason)
}

func (r Rejection) Unwrap() error { return r.Err }

// Result is the partition of a raw batch.
type Result struct {
	Respondents []core.Respondent
	Rejections  []Rejection
}

// Options bounds the accepted age band, inclusive on both ends.
type Options struct {
	MinAge int
	MaxAge int
}

// DefaultOptions returns the 18-25 survey band.
func DefaultOptions() Options {
	return Options{MinAge: 18, MaxAge: 25}
}

type Normalizer struct {
	opts     Options
	validate *validator.Validate
}

func New(opts Options) *Normalizer {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &Normalizer{opts: opts, validate: v}
}

// decimalValue lets numeric tags such as gte/lte apply to decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// fieldError ties a sentinel to the canonical column that caused it.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return e.field + ": " + e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }

func fieldErr(field string, err error) error {
	return &fieldError{field: field, err: err}
}

// Normalize partitions raw into accepted respondents and rejections.
// Respondent ids are 0-based positions among accepted rows, in input order.
// A national id seen earlier in the batch rejects the later row.
func (n *Normalizer) Normalize(raw []core.RawRecord) Result {
	res := Result{Respondents: make([]core.Respondent, 0, len(raw))}
	seen := make(map[string]int)

	for _, rec := range raw {
		r, err := n.parse(rec)
		if err == nil && r.NationalID != "" {
			if first, dup := seen[r.NationalID]; dup {
				err = fieldErr(core.ColNationalID, fmt.Errorf("%w (first seen on line %d)", core.ErrDuplicateRespondent, first))
			} else {
				seen[r.NationalID] = rec.Line
			}
		}
		if err != nil {
			res.Rejections = append(res.Rejections, reject(rec.Line, err))
			continue
		}
		r.ID = len(res.Respondents)
		res.Respondents = append(res.Respondents, r)
	}
	return res
}

func reject(line int, err error) Rejection {
	rej := Rejection{Line: line, Reason: err.Error(), Err: err}
	var fe *fieldError
	if errors.As(err, &fe) {
		rej.Field = fe.field
	}
	return rej
}

func (n *Normalizer) parse(rec core.RawRecord) (core.Respondent, error) {
	var r core.Respondent
	var err error

	ageText, _ := rec.Get(core.ColAge)
	if r.Age, err = core.ParseAge(ageText); err != nil {
		return r, fieldErr(core.ColAge, err)
	}
	if r.Age < n.opts.MinAge || r.Age > n.opts.MaxAge {
		return r, fieldErr(core.ColAge, fmt.Errorf("%w: %d not in [%d, %d]", core.ErrAgeOutOfRange, r.Age, n.opts.MinAge, n.opts.MaxAge))
	}

	incomeText, _ := rec.Get(core.ColMonthlyIncome)
	if r.MonthlyIncome, err = core.ParseAmount(incomeText); err != nil {
		return r, fieldErr(core.ColMonthlyIncome, err)
	}
	if err = expenses(rec, &r); err != nil {
		return r, err
	}

	sourceText, _ := rec.Get(core.ColIncomeSource)
	if r.IncomeSource, err = core.ParseIncomeSource(sourceText); err != nil {
		return r, fieldErr(core.ColIncomeSource, categoryErr(err, sourceText))
	}
	savingsText, _ := rec.Get(core.ColSavingsBehavior)
	if r.SavingsBehavior, err = core.ParseSavingsBehavior(savingsText); err != nil {
		return r, fieldErr(core.ColSavingsBehavior, categoryErr(err, savingsText))
	}

	debtText, _ := rec.Get(core.ColDebtStatus)
	if r.DebtStatus, err = core.ParseDebtStatus(debtText); err != nil {
		return r, fieldErr(core.ColDebtStatus, categoryErr(err, debtText))
	}
	eduText, _ := rec.Get(core.ColFinancialEducation)
	if r.FinancialEducation, err = core.ParseExposure(eduText); err != nil {
		return r, fieldErr(core.ColFinancialEducation, categoryErr(err, eduText))
	}

	pctText, _ := rec.Get(core.ColSavingsPercentage)
	if r.SavingsPercentage, err = core.ParsePercentage(pctText); err != nil {
		return r, fieldErr(core.ColSavingsPercentage, err)
	}
	diffText, _ := rec.Get(core.ColBalanceDifficulty)
	if r.BalanceDifficulty, err = core.ParseDifficulty(diffText); err != nil {
		return r, fieldErr(core.ColBalanceDifficulty, err)
	}

	if id, ok := rec.Get(core.ColNationalID); ok {
		if !validNationalID(id) {
			return r, fieldErr(core.ColNationalID, core.ErrInvalidNationalID)
		}
		r.NationalID = id
	}
	r.Gender, _ = rec.Get(core.ColGender)

	if err := n.validate.Struct(r); err != nil {
		return r, structErr(err)
	}
	return r, nil
}

// expenses reads the total expenses column, or else the essential plus
// optional occasional split, which is kept on the respondent.
func expenses(rec core.RawRecord, r *core.Respondent) error {
	if text, ok := rec.Get(core.ColMonthlyExpenses); ok {
		d, err := core.ParseAmount(text)
		if err != nil {
			return fieldErr(core.ColMonthlyExpenses, err)
		}
		r.MonthlyExpenses = d
		return nil
	}
	essentialText, ok := rec.Get(core.ColEssentialExpenses)
	if !ok {
		return fieldErr(core.ColMonthlyExpenses, core.ErrMissingField)
	}
	essential, err := core.ParseAmount(essentialText)
	if err != nil {
		return fieldErr(core.ColEssentialExpenses, err)
	}
	occasional := decimal.Zero
	if occasionalText, ok := rec.Get(core.ColOccasionalExpenses); ok {
		if occasional, err = core.ParseAmount(occasionalText); err != nil {
			return fieldErr(core.ColOccasionalExpenses, err)
		}
	}
	r.MonthlyExpenses = essential.Add(occasional)
	r.EssentialExpenses = decimal.NewNullDecimal(essential)
	r.OccasionalExpenses = decimal.NewNullDecimal(occasional)
	return nil
}

func categoryErr(err error, value string) error {
	if errors.Is(err, core.ErrUnknownCategory) {
		return fmt.Errorf("%w %q", err, value)
	}
	return err
}

func validNationalID(id string) bool {
	if len(id) != 10 {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

func structErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return fieldErr(strings.ToLower(fe.Field()), fmt.Errorf("value %v failed %q rule", fe.Value(), fe.Tag()))
}
