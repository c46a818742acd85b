// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Triggering and aborting Load All executions
//   - Execution status queries
//   - Tab registry and action form descriptions
//   - Action submission
//   - Health checks
//   - Prometheus metrics
package http
