// Package ports defines the interfaces between the orchestrator core and
// its collaborators: the Backend Gateway, per-tab presentation consumers,
// the event bus, the snapshot store, and the metrics collector.
//
// Adapters under pkg/adapters provide the production implementations;
// tests substitute fakes.
package ports
