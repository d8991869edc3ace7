package contact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInFlight is returned by Submit when another submission is outstanding.
var ErrInFlight = errors.New("contact: submission already in flight")

// ValidationError is a locally detected input problem.
type ValidationError struct {
	Reason string
	Fields []FieldKey
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(names, ", "))
}

// TransportError wraps a failure to reach the endpoint at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "contact transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ServerRejection is a reachable endpoint answering with a non-2xx status.
type ServerRejection struct {
	StatusCode int
	Body       string
}

func (e *ServerRejection) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("contact endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("contact endpoint returned status %d: %s", e.StatusCode, e.Body)
}
