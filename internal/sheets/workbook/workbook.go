// Package workbook reads survey responses from an .xlsx export.
package workbook

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"finzen/internal/core"
	ports "finzen/internal/sheets"
)

var _ ports.ResponseReader = (*Reader)(nil)

type Reader struct {
	path  string
	sheet string
}

// New returns a Reader for the named sheet of the workbook at path. An empty
// sheet name selects the first sheet.
func New(path, sheet string) *Reader {
	return &Reader{path: path, sheet: sheet}
}

// ReadResponses implements ports.ResponseReader. The first row is the header.
func (r *Reader) ReadResponses(ctx context.Context) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", core.ErrStructuralInput, r.path, err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", core.ErrStructuralInput, r.path)
		}
		sheet = list[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", core.ErrStructuralInput, sheet, r.path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", core.ErrStructuralInput, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", core.ErrStructuralInput, sheet)
	}
	return ports.Records(rows[0], rows[1:])
}
