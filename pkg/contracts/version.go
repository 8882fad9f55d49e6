package contracts

import (
	"fmt"
	"runtime"

	"uddannelsebi/pkg/contracts/domain"
)

const (
	// Version of the dashboard
	Version = "1.0.0"

	// APIVersion is the path segment of the JSON API
	APIVersion = "v1"
)

// Set with -ldflags "-X uddannelsebi/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what /api/version reports
type VersionInfo struct {
	Version        string `json:"version"`
	APIVersion     string `json:"api_version"`
	BuildTime      string `json:"build_time"`
	GitCommit      string `json:"git_commit"`
	GoVersion      string `json:"go_version"`
	Platform       string `json:"platform"`
	DataYears      string `json:"data_years"`
	PredictionYear int    `json:"prediction_year"`
}

// GetVersionInfo returns the build and dataset information of this binary
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:        Version,
		APIVersion:     APIVersion,
		BuildTime:      BuildTime,
		GitCommit:      GitCommit,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		DataYears:      fmt.Sprintf("%d-%d", domain.FirstYear, domain.LastYear),
		PredictionYear: domain.PredictionYear,
	}
}

// GetVersionString returns the name and version of the dashboard
func GetVersionString() string {
	return "Uddannelse BI v" + Version
}

// GetFullVersionString adds the build information to GetVersionString
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (data %s, commit %s, built %s, %s %s)",
		GetVersionString(), info.DataYears, info.GitCommit, info.BuildTime, info.GoVersion, info.Platform)
}
