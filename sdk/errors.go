package sdk

import "errors"

// Common SDK errors that clients can check for specific error handling.
var (
	// ErrInvalidConfig indicates the client configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNoBaseURLs indicates no authority URLs were provided.
	ErrNoBaseURLs = errors.New("no base URLs provided for authority")

	// ErrAllInstancesFailed indicates all authority instances are unreachable.
	ErrAllInstancesFailed = errors.New("all authority instances failed")

	// ErrUnauthorized indicates the presented token or admin key was rejected.
	ErrUnauthorized = errors.New("unauthorized: invalid credentials")

	// ErrBlocked indicates the node is blocked by the authority.
	ErrBlocked = errors.New("node is blocked")

	// ErrNotFound indicates the requested node does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrConflict indicates the request conflicts with existing state,
	// such as registering an identity that already holds a record.
	ErrConflict = errors.New("conflict with existing resource")

	// ErrRateLimited indicates the request was rate limited by the server.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError indicates an internal server error occurred.
	ErrServerError = errors.New("internal server error")

	// ErrBadRequest indicates the request was malformed or invalid.
	ErrBadRequest = errors.New("bad request")

	// ErrMissingAuth indicates required authentication credentials were not provided.
	ErrMissingAuth = errors.New("missing authentication credentials")
)
