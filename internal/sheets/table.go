package sheets

import (
	"fmt"
	"strings"

	"finzen/internal/core"
)

// Records converts a header row plus data rows into canonical RawRecords.
//
// Header labels are mapped through core.CanonicalColumn; unknown columns
// (timestamps, e-mail, names) are ignored. A row with no cells at all is not
// a data row and is skipped; a row of blank cells (";;;;") is kept so that
// validation rejects it and it is counted. Line numbers are 1-based data row
// positions, header excluded.
//
// A missing header, a canonical column mapped twice or a missing required
// column is reported as core.ErrStructuralInput.
func Records(header []string, rows [][]string) ([]core.RawRecord, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: missing header row", core.ErrStructuralInput)
	}

	keys := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, label := range header {
		key := core.CanonicalColumn(label)
		if key == "" {
			continue
		}
		if present[key] {
			return nil, fmt.Errorf("%w: column %q appears more than once", core.ErrStructuralInput, key)
		}
		present[key] = true
		keys[i] = key
	}
	if missing := core.MissingColumns(present); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", core.ErrStructuralInput, strings.Join(missing, ", "))
	}

	out := make([]core.RawRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		fields := make(map[string]string, len(present))
		for col, key := range keys {
			if key == "" {
				continue
			}
			fields[key] = strings.TrimSpace(safeGet(row, col))
		}
		out = append(out, core.RawRecord{Line: i + 1, Fields: fields})
	}
	return out, nil
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
