// Package orchestrator implements the Load All control loop for the
// dashboard.
//
// The manager coordinates one execution at a time by:
//   - Establishing an execution id against the Backend Gateway
//   - Fetching every registered tab in fixed registry order
//   - Tracking independent per-tab outcomes (one failure never aborts the batch)
//   - Observing the cancellation flag between tab fetches
//   - Publishing progress events and persisting state snapshots
//
// A second Load All request while one is running is rejected rather than
// superseding the live execution.
package orchestrator
