package google

import (
	"fmt"
	"strings"
	"time"

	"finzen/internal/core"
	ports "finzen/internal/sheets"
)

// lastColumn is the column letter of the last runs log field.
const lastColumn = "J"

// parseResponses converts a values matrix (as returned by Sheets API) into
// raw records. Cells come back as strings or float64 depending on the sheet
// formatting; both are rendered with fmt.
func parseResponses(values [][]interface{}) ([]core.RawRecord, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: responses sheet is empty", core.ErrStructuralInput)
	}
	header := toStrings(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, toStrings(row))
	}
	return ports.Records(header, rows)
}

func runHeader() []any {
	return []any{"run_id", "finished_at", "source", "raw_rows", "accepted", "rejected", "responsible", "at_risk", "vulnerable", "duration_ms"}
}

func runRow(run core.RunSummary) []any {
	return []any{
		run.RunID,
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Source,
		run.RawRows,
		run.Accepted,
		run.Rejected,
		run.Responsible,
		run.AtRisk,
		run.Vulnerable,
		run.Duration().Milliseconds(),
	}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
