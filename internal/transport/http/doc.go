// Package http implements the HTTP handlers of the education dashboard. The
// handlers stay thin: they parse and validate the selection, call the
// dashboard service and format the answer.
//
// # Surfaces
//
//	GET /                          HTML pages (?page=Homepage|Visualization|Prediction|Institutioner|Institution|Kort)
//	GET /charts/{chart}.png        chart images, same selectors as the pages
//	GET /api/...                   JSON views
//	GET /api/export/prediction.*   prediction table as csv or xlsx
//	GET /api/health, /api/version  health and build information
//	GET /metrics                   Prometheus scrape endpoint
//
// # Errors
//
// JSON and image endpoints answer with RFC 7807 problem details through
// the errors.ErrorHandler. Empty selections map to 404 with the Danish
// message shown on the page.
//
// HTML pages never answer with problem details. An empty selection is shown
// as a warning with status 200; any other failure, a panic included, is
// shown as "⚠️ Fejl under visning af siden: <fejl>" with status 500 while the
// sidebar stays usable.
package http
