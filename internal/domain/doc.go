// Package domain holds the core execution model for the dashboard
// orchestrator.
//
// The central type is ExecutionState: the authoritative record of the
// current (at most one) Load All execution, its per-tab outcomes, and
// its cancellation flag. It is mutated only by the orchestrator and the
// abort control; everything else reads snapshots.
package domain
