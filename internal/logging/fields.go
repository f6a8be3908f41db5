// Package logging provides structured logging utilities for the HelixGate server.
package logging

// Standard field names for consistent logging across the application.
const (
	// FieldNodeID is the unique identifier for a node.
	FieldNodeID = "node_id"

	// FieldEpoch is the rotation epoch a token or operation belongs to.
	FieldEpoch = "epoch"

	// FieldRequestID is a unique identifier for each HTTP request.
	FieldRequestID = "request_id"

	// FieldDuration is the duration of an operation in milliseconds.
	FieldDuration = "duration_ms"

	// FieldStatusCode is the HTTP status code of a response.
	FieldStatusCode = "status_code"

	// FieldMethod is the HTTP method of a request.
	FieldMethod = "method"

	// FieldPath is the URL path of an HTTP request.
	FieldPath = "path"

	// FieldRemoteAddr is the client's remote address.
	FieldRemoteAddr = "remote_addr"

	// FieldUserAgent is the client's user agent string.
	FieldUserAgent = "user_agent"

	// FieldError is the error message or description.
	FieldError = "error"
)
