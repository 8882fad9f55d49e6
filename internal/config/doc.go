// Package config loads and validates the dashboard configuration.
//
// # Configuration Sources
//
// Values are applied in order of increasing precedence:
//
//  1. Default()
//  2. config.yaml (./config.yaml, ./configs/config.yaml or UDD_CONFIG_FILE)
//  3. Environment variables, optionally seeded from a .env file
//
// # Environment Variables
//
// Variables use the UDD prefix followed by the section and field:
//
//	UDD_SERVER_PORT=8050
//	UDD_DATA_DIR=/srv/uddannelse
//	UDD_DATA_SUBJECT_FILE=Uddannelse_combined.xlsx
//	UDD_LOGGING_LEVEL=debug
//	UDD_SECURITY_RATE_LIMIT_RPS=20
//
// # Paths
//
// Config.Paths resolves the workbook and log locations. Missing workbooks
// are reported, not fatal: each view shows its own load error.
package config
