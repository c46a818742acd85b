// Package actions implements the action submission boundary: declared
// parameter schemas, validation of user input against them, and the
// schema-driven form description consumed by dashboard clients.
//
// Validation failure surfaces as a user-visible message and never reaches
// the backend; the widget mapping is a pure function kept apart from the
// orchestrator.
package actions
