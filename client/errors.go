package client

import "fmt"

// ValidationError is returned when the server rejects the input (HTTP 400),
// e.g. an empty or over-long title. Retrying the same request will not help.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// NotFoundError is returned when the target todo no longer exists (HTTP 404).
// Callers should treat the item as already gone rather than failing hard.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Message
}

// NotFound lets callers classify this error without importing the
// concrete type (errors.As against an interface).
func (e *NotFoundError) NotFound() bool { return true }

// QueryFailedError is returned for transport failures and server errors.
// No partial result accompanies it.
type QueryFailedError struct {
	Message string
	Err     error
}

func (e *QueryFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query failed: %s: %v", e.Message, e.Err)
	}
	return "query failed: " + e.Message
}

func (e *QueryFailedError) Unwrap() error {
	return e.Err
}
