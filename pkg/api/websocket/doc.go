// Package websocket provides real-time event streaming via WebSocket.
//
// Dashboard clients connect to /api/v1/executions/:id/ws to receive
// orchestration progress and per-tab view notifications while a Load All
// execution runs.
package websocket
