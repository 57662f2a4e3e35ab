package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finzen/internal/config"
	"finzen/internal/sheets/csvfile"
	"finzen/internal/sheets/memory"
	"finzen/internal/sheets/workbook"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	cfg := &config.Config{InputSource: "workbook", InputPath: "in.xlsx", InputDelimiter: ","}
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, WorkbookSource, bc.Type)
	assert.Equal(t, ',', bc.Delimiter)

	_, err = FromAppConfig(&config.Config{InputSource: "ftp"})
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"file ok", Config{Type: FileSource, InputPath: "a.csv"}, false},
		{"file without path", Config{Type: FileSource}, true},
		{"sheets without id", Config{Type: SheetsSource, GoogleSheetName: "Responses"}, true},
		{"sheets without name", Config{Type: SheetsSource, GoogleSpreadsheetID: "id"}, true},
		{"sheets ok", Config{Type: SheetsSource, GoogleSpreadsheetID: "id", GoogleSheetName: "Responses"}, false},
		{"unknown", Config{Type: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestFactory_CreateSource(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateSource(ctx, Config{Type: FileSource, InputPath: "a.csv", Delimiter: ';'})
	require.NoError(t, err)
	assert.IsType(t, &csvfile.Reader{}, res.Reader)

	res, err = f.CreateSource(ctx, Config{Type: WorkbookSource, InputPath: "a.xlsx"})
	require.NoError(t, err)
	assert.IsType(t, &workbook.Reader{}, res.Reader)

	seed := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(seed, []byte("age|monthly_income|monthly_expenses|income_source|savings_behavior\n20|1|1|none|never\n"), 0o644))
	res, err = f.CreateSource(ctx, Config{Type: MemorySource, InputPath: seed})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Reader)
	records, err := res.Reader.ReadResponses(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.CreateSource(ctx, Config{Type: "ftp"})
	require.Error(t, err)
}

func TestFactory_CreateRunLogDisabled(t *testing.T) {
	w, err := NewFactory(nil).CreateRunLog(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestGetSourceTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"file", "workbook", "sheets", "memory"}, GetSourceTypeStrings())
}
