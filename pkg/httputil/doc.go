// Package httputil provides JSON request and response helpers for the HTTP
// API.
//
// # Responses
//
// [WriteJSON] encodes a value with a status code. [WriteError] turns any
// error into a JSON error body, deriving the status from its
// [errors.Code] via [errors.HTTPStatus]:
//
//	{"error": {"code": "GRAPH_NOT_FOUND", "message": "graph g1 not found"}}
//
// Errors without a code are reported as INTERNAL_ERROR with a generic
// message so internal details do not leak to clients.
//
// # Requests
//
// [DecodeJSON] reads a request body into a value, rejecting unknown fields
// and bodies larger than [MaxBodyBytes]. Decoding failures are returned as
// INVALID_INPUT errors ready for [WriteError].
//
// [errors.Code]: github.com/matzehuels/conceptgraph/pkg/errors
// [errors.HTTPStatus]: github.com/matzehuels/conceptgraph/pkg/errors
package httputil
