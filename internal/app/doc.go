// Package app wires the education dashboard together: configuration,
// logging, OpenTelemetry, the dashboard services and the HTTP router.
//
// # Initialization Flow
//
//  1. Load configuration from .env, the YAML file and UDD_* variables
//  2. Initialize logging and observability
//  3. Resolve the workbook paths
//  4. Create the dashboard and health services
//  5. Set up handlers and middleware
//  6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout. Missing workbooks are not fatal: they
// are logged at startup, reported by /api/health/ready and shown on the
// pages that need them.
package app
