package validation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/shared/testutil"
)

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       error
		errorContains string
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteWorkbook(t, t.TempDir(), testutil.SubjectFile, [][]interface{}{{"Uddannelse"}})
			},
		},
		{
			name: "missing workbook lists alternatives",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				testutil.WriteFile(t, dir, "Uddannelse_combined.xls", []byte("xls"))
				return filepath.Join(dir, testutil.SubjectFile)
			},
			wantErr:       ErrNotFound,
			errorContains: "found: Uddannelse_combined.xls",
		},
		{
			name: "missing workbook in empty directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), testutil.InstitutionFile)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "csv is not a workbook",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "data.csv", []byte("a,b"))
			},
			wantErr: ErrNotWorkbook,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "~$Uddannelse_combined.xlsx", []byte("lock"))
			},
			wantErr: ErrTempWorkbook,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "tom.xlsx", nil)
			},
			wantErr: ErrEmptyFile,
		},
		{
			name: "directory with workbook name",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "mappe.xlsx")
				require.NoError(t, os.Mkdir(dir, 0o755))
				return dir
			},
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			validator := NewFileValidator(logger)

			err := validator.ValidateWorkbook(tt.setupFunc(t))

			if tt.wantErr == nil && tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
		})
	}
}

func TestFileValidator_FindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	older := testutil.WriteFile(t, dir, "b.xls", []byte("x"))
	testutil.WriteFile(t, dir, "a.xlsx", []byte("x"))
	testutil.WriteFile(t, dir, "~$a.xlsx", []byte("x"))
	testutil.WriteFile(t, dir, "notes.txt", []byte("x"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := NewFileValidator(nil).FindWorkbooks(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.xls", files[0].Name)
	assert.Equal(t, "a.xlsx", files[1].Name)

	_, err = NewFileValidator(nil).FindWorkbooks(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFileValidator_ValidateExportPath(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, validator.ValidateExportPath(filepath.Join(dir, "forudsigelse_2025.csv")))
	assert.NoError(t, validator.ValidateExportPath(filepath.Join(dir, "ny", "forudsigelse_2025.xlsx")))
	assert.DirExists(t, filepath.Join(dir, "ny"))

	err := validator.ValidateExportPath(filepath.Join(dir, "forudsigelse_2025.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv or .xlsx")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".write_test")
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	file := testutil.WriteFile(t, t.TempDir(), "fil", []byte("x"))
	err := validator.ValidateOutputDirectory(filepath.Join(file, "under"))
	assert.Error(t, err)
}
