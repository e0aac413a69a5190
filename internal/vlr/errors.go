package vlr

import "fmt"

// TransportError means the provider could not be reached or answered with a
// non-success status. Callers treat it as transient and retry next cycle.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vlr: unexpected status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("vlr: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the provider answered but the body did not decode as the
// expected snapshot shape. Transient from the caller's point of view.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("vlr: malformed response: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
