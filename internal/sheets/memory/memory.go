package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"finzen/internal/core"
	ports "finzen/internal/sheets"
)

var (
	_ ports.ResponseReader = (*Store)(nil)
	_ ports.RunLogWriter   = (*Store)(nil)
)

// Store keeps survey rows and the runs log in memory. It backs tests and dry
// runs where no file or spreadsheet is available.
type Store struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
	runs   []core.RunSummary
}

func New(header []string, rows [][]string) *Store {
	s := &Store{header: append([]string(nil), header...)}
	for _, row := range rows {
		s.rows = append(s.rows, append([]string(nil), row...))
	}
	return s
}

// NewFromFile seeds the store from a pipe-separated text file: the first
// non-comment line is the header. Missing files yield an empty store.
func NewFromFile(path string) *Store {
	lines := readLines(path)
	if len(lines) == 0 {
		return New(nil, nil)
	}
	split := func(line string) []string {
		cells := strings.Split(line, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		return cells
	}
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, split(line))
	}
	return New(split(lines[0]), rows)
}

// AddRow appends a survey row.
func (s *Store) AddRow(row ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, append([]string(nil), row...))
}

// ReadResponses implements ports.ResponseReader.
func (s *Store) ReadResponses(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.Records(s.header, s.rows)
}

// AppendRun stores the run and returns a synthetic row reference.
func (s *Store) AppendRun(_ context.Context, run core.RunSummary) (string, error) {
	if run.RunID == "" {
		return "", errors.New("run id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return fmt.Sprintf("mem:%d", len(s.runs)), nil
}

// Runs returns a copy of the appended runs.
func (s *Store) Runs() []core.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RunSummary(nil), s.runs...)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
