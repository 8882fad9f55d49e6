package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds the resolved file locations the dashboard reads and writes.
// Relative entries in the config are resolved against the working directory.
type Paths struct {
	DataDir         string
	InstitutionFile string
	SubjectFile     string
	LogFile         string
}

// Paths resolves the data and log locations
func (c *Config) Paths() (*Paths, error) {
	dataDir, err := filepath.Abs(c.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	p := &Paths{
		DataDir:         dataDir,
		InstitutionFile: resolve(dataDir, c.Data.InstitutionFile),
		SubjectFile:     resolve(dataDir, c.Data.SubjectFile),
	}
	if c.Logging.FilePath != "" {
		if p.LogFile, err = filepath.Abs(c.Logging.FilePath); err != nil {
			return nil, fmt.Errorf("failed to resolve log file: %w", err)
		}
	}
	return p, nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureLogDir creates the directory of the log file if one is configured
func (p *Paths) EnsureLogDir() error {
	if p.LogFile == "" {
		return nil
	}
	dir := filepath.Dir(p.LogFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// MissingFiles lists the workbooks that do not exist. The dashboard still
// starts without them; the affected views show their load error instead.
func (p *Paths) MissingFiles() []string {
	var missing []string
	for _, f := range []string{p.InstitutionFile, p.SubjectFile} {
		if !FileExists(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// LogResolution logs where the dashboard will look for its files
func (p *Paths) LogResolution(logger *slog.Logger) {
	logger.Info("path resolution summary",
		slog.String("data_dir", p.DataDir),
		slog.String("institution_file", p.InstitutionFile),
		slog.String("subject_file", p.SubjectFile),
		slog.String("log_file", p.LogFile),
	)
	if missing := p.MissingFiles(); len(missing) > 0 {
		logger.Warn("workbooks missing, affected views will show the load error",
			slog.String("missing", strings.Join(missing, ", ")))
	}
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
