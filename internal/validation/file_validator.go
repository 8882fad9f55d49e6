package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Sentinel failures of ValidateWorkbook
var (
	ErrNotFound     = errors.New("workbook not found")
	ErrNotWorkbook  = errors.New("not an Excel workbook")
	ErrTempWorkbook = errors.New("temporary Excel lock file")
	ErrEmptyFile    = errors.New("workbook is empty")
)

// WorkbookExtensions are the workbook formats the loader reads
var WorkbookExtensions = []string{".xlsx", ".xls"}

// ExportExtensions are the formats the prediction export writes
var ExportExtensions = []string{".csv", ".xlsx"}

// FileInfo describes a workbook found in the data directory
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FileValidator checks the workbooks the dashboard reads and the files the
// export writes.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateWorkbook checks that path is a readable, non-empty .xlsx or .xls
// file. A missing file is reported together with the workbooks that do
// exist in its directory.
func (v *FileValidator) ValidateWorkbook(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTempWorkbook, path)
	}
	if !hasExtension(path, WorkbookExtensions) {
		return fmt.Errorf("%w: %s (extension %q)", ErrNotWorkbook, path, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		err = fmt.Errorf("%w: %s", ErrNotFound, path)
		if found, _ := v.FindWorkbooks(filepath.Dir(path)); len(found) > 0 {
			names := make([]string, len(found))
			for i, f := range found {
				names[i] = f.Name
			}
			err = fmt.Errorf("%w (found: %s)", err, strings.Join(names, ", "))
		}
		v.logger.Warn("Workbook does not exist", slog.String("file", path))
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Workbook is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// FindWorkbooks lists the Excel files of dir, oldest first. Lock files
// left behind by Excel are skipped.
func (v *FileValidator) FindWorkbooks(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || !hasExtension(name, WorkbookExtensions) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateExportPath checks the extension of an export target and that
// its directory is writable.
func (v *FileValidator) ValidateExportPath(path string) error {
	if !hasExtension(path, ExportExtensions) {
		return fmt.Errorf("export file %s must end in %s", path, strings.Join(ExportExtensions, " or "))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
