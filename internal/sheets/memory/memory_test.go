package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finzen/internal/core"
)

var header = []string{"age", "monthly_income", "monthly_expenses", "income_source", "savings_behavior"}

func TestMemoryStoreReadAndAppend(t *testing.T) {
	s := New(header, [][]string{{"20", "500", "300", "salaried", "saves_regularly"}})
	s.AddRow("21", "100", "200", "informal", "never")

	records, err := s.ReadResponses(context.Background())
	if err != nil || len(records) != 2 {
		t.Fatalf("unexpected read: records=%v err=%v", records, err)
	}
	if records[1].Fields[core.ColIncomeSource] != "informal" {
		t.Fatalf("unexpected record: %+v", records[1])
	}

	ref, err := s.AppendRun(context.Background(), core.RunSummary{RunID: "r1", Accepted: 2})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if runs := s.Runs(); len(runs) != 1 || runs[0].Accepted != 2 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	if _, err := s.AppendRun(context.Background(), core.RunSummary{}); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}

func TestMemoryStoreWithoutHeader(t *testing.T) {
	_, err := New(nil, nil).ReadResponses(context.Background())
	if !errors.Is(err, core.ErrStructuralInput) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// No file -> empty store
	if _, err := NewFromFile(filepath.Join(dir, "missing.txt")).ReadResponses(context.Background()); err == nil {
		t.Fatalf("expected error for empty store")
	}

	path := filepath.Join(dir, "seed.txt")
	content := "# seed\nEdad | Ingresos | Gastos | Tipo_Ingreso | Habito_Ahorro\n\n20 | 500 | 300 | Otro | Nunca\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	records, err := NewFromFile(path).ReadResponses(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("unexpected read: records=%v err=%v", records, err)
	}
	if records[0].Fields[core.ColSavingsBehavior] != "Nunca" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
