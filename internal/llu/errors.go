package llu

import "fmt"

// TransportError reports a network-level failure (connection refused,
// timeout, interrupted body). The caller may retry; the client never does.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Body carries the raw response so
// callers can inspect server-side error details.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// DecodeError reports a 2xx response whose body could not be decoded into
// the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports bad caller input. It is returned before any
// request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PreconditionError reports an operation invoked out of order, such as a
// query before Authenticate or AcceptTerms without a stored ticket.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }
