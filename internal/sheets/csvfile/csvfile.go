// Package csvfile reads survey responses from a delimited text export.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"finzen/internal/core"
	ports "finzen/internal/sheets"
)

var _ ports.ResponseReader = (*Reader)(nil)

// Reader reads one delimited file with a header row.
type Reader struct {
	path      string
	delimiter rune
}

// New returns a Reader for path. The survey exports use ';' by default.
func New(path string, delimiter rune) *Reader {
	if delimiter == 0 {
		delimiter = ';'
	}
	return &Reader{path: path, delimiter: delimiter}
}

// ReadResponses implements ports.ResponseReader.
func (r *Reader) ReadResponses(ctx context.Context) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrStructuralInput, r.path, err)
	}
	defer f.Close()
	return Parse(f, r.delimiter)
}

// Parse reads a delimited table from src. Rows may have fewer or more cells
// than the header; malformed quoting is a structural failure.
func Parse(src io.Reader, delimiter rune) ([]core.RawRecord, error) {
	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", core.ErrStructuralInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", core.ErrStructuralInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", core.ErrStructuralInput, err)
		}
		rows = append(rows, row)
	}
	return ports.Records(header, rows)
}
