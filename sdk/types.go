package sdk

// errorEnvelope mirrors the server's error response body.
type errorEnvelope struct {
	// Error is the machine-readable error code.
	Error string `json:"error"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// RequestID is the server-assigned request ID for tracing.
	RequestID string `json:"request_id,omitempty"`
}
