// Package services implements the views of the education dashboard on top of
// the workbook loaders, aggregations and the forecast model.
//
// # Services
//
//   - DashboardService: every page, chart and JSON view
//   - HealthService: health, readiness (both workbooks load) and version
//
// # Empty selections
//
// A selection that matches nothing is not a failure. The view methods return
// the partially filled view together with one of the warning sentinels
// (ErrNoData, ErrLineNotFound, ErrCombinationNotFound, ErrNoCoordinates,
// ErrDirectionIncomplete), so selectors can still be rendered. Use Warning
// to tell them apart from real errors:
//
//	view, err := svc.Subjects(ctx, line, direction)
//	if msg, ok := services.Warning(err); ok {
//	    // render view with msg as a warning
//	}
//
// # State
//
// Nothing is cached. Each call reads the workbooks it needs, so replacing a
// file on disk is picked up by the next request.
package services
