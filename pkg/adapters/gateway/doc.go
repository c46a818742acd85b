// Package gateway provides Backend Gateway client implementations.
//
// Implementations:
//   - httpgw: HTTP/JSON client against the trading backend
//
// Tests use fakes satisfying ports.Gateway.
package gateway
