package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CommandOff is the collector command that deactivates the device.
const CommandOff = "OFF"

// Report is the payload sent to the collector.
type Report struct {
	DeviceID    string  `json:"device_id"`
	Gas         float32 `json:"mq135"`
	Temperature float32 `json:"temp"`
	Humidity    float32 `json:"humidity"`
	Red         int     `json:"r"`
	Green       int     `json:"g"`
	Blue        int     `json:"b"`
}

// Directive is the activation change requested by a response.
type Directive int

const (
	// DirectiveKeep leaves the activation state alone.
	DirectiveKeep Directive = iota
	// DirectiveOn activates the device.
	DirectiveOn
	// DirectiveOff deactivates the device.
	DirectiveOff
)

func (d Directive) String() string {
	switch d {
	case DirectiveOn:
		return "on"
	case DirectiveOff:
		return "off"
	default:
		return "keep"
	}
}

// Response is a decoded collector reply.
type Response struct {
	Directive Directive
	Status    *string // nil when absent or invalid
	Problems  []error // *FieldError for each present but invalid field
}

// DecodeResponse decodes a collector reply. An unparseable body is an
// ErrProtocol error. Fields are optional: an absent command means DirectiveOn,
// a command that is not a string means DirectiveKeep and a recorded problem.
func DecodeResponse(body []byte) (Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if fields == nil {
		return Response{}, fmt.Errorf("%w: response is not an object", ErrProtocol)
	}

	resp := Response{Directive: DirectiveOn}

	if raw, ok := present(fields, "command"); ok {
		var cmd string
		if err := json.Unmarshal(raw, &cmd); err != nil {
			resp.Directive = DirectiveKeep
			resp.Problems = append(resp.Problems, &FieldError{Field: "command", Err: err})
		} else if cmd == CommandOff {
			resp.Directive = DirectiveOff
		}
	}

	if raw, ok := present(fields, "status"); ok {
		var status string
		if err := json.Unmarshal(raw, &status); err != nil {
			resp.Problems = append(resp.Problems, &FieldError{Field: "status", Err: err})
		} else {
			resp.Status = &status
		}
	}

	return resp, nil
}

// Err joins the response problems, or returns nil.
func (r Response) Err() error {
	return errors.Join(r.Problems...)
}

// present returns a field unless it is absent or null.
func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}
