package monitor

import (
	"errors"
	"fmt"
)

var (
	// ErrSensorInvalid marks a cycle whose climate or gas read failed.
	ErrSensorInvalid = errors.New("sensor read invalid")
	// ErrTransport marks a report that did not reach the collector or was rejected by it.
	ErrTransport = errors.New("transport failure")
	// ErrProtocol marks a collector response that could not be understood.
	ErrProtocol = errors.New("protocol failure")
)

// FieldError is a response field that is present but has the wrong type.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("response field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrProtocol, e.Err}
}

// Kind names the failure class of err for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrSensorInvalid):
		return "sensor"
	default:
		return "internal"
	}
}
