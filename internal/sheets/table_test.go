package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finzen/internal/core"
)

func TestRecords(t *testing.T) {
	header := []string{"Marca temporal", "Edad", "Ingresos", "Gastos", "Tipo_Ingreso", "Habito_Ahorro"}
	rows := [][]string{
		{"2024-05-01", "20", "500", "300", "Trabajo fijo", "Regularmente"},
		{"", "", "", "", "", ""},
		{},
		{"2024-05-02", " 22 ", "200"},
	}

	records, err := Records(header, rows)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, "20", records[0].Fields[core.ColAge])
	assert.Equal(t, "Trabajo fijo", records[0].Fields[core.ColIncomeSource])
	assert.NotContains(t, records[0].Fields, "marca temporal")

	assert.Equal(t, 2, records[1].Line, "a row of blank cells is still a data row")
	_, ok := records[1].Get(core.ColAge)
	assert.False(t, ok)

	assert.Equal(t, 4, records[2].Line, "a row without cells is skipped")
	assert.Equal(t, "22", records[2].Fields[core.ColAge])
	_, ok = records[2].Get(core.ColSavingsBehavior)
	assert.False(t, ok, "short rows are padded with empty cells")
}

func TestRecords_SplitExpenses(t *testing.T) {
	header := []string{"age", "monthly_income", "essential_expenses", "occasional_expenses", "income_source", "savings_behavior"}
	records, err := Records(header, [][]string{{"19", "100", "60", "10", "informal", "never"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "60", records[0].Fields[core.ColEssentialExpenses])
}

func TestRecords_StructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantMsg string
	}{
		{"no header", nil, "missing header row"},
		{"missing required", []string{"age", "monthly_income"}, "missing required columns: income_source, savings_behavior, monthly_expenses"},
		{"duplicate column", []string{"age", "edad", "monthly_income", "monthly_expenses", "income_source", "savings_behavior"}, `column "age" appears more than once`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Records(tt.header, nil)
			require.ErrorIs(t, err, core.ErrStructuralInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
