// Package transport delivers controller reports to a collector over HTTP or MQTT.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 64 << 10

// StatusError is a non-success HTTP reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector replied %d %s", e.Code, http.StatusText(e.Code))
}

// HTTP posts JSON reports to a collector endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// NewHTTP creates an HTTP transport. timeout bounds each request; 0 means no
// client-side limit beyond the caller's context.
func NewHTTP(endpoint string, timeout time.Duration, log *zap.Logger) *HTTP {
	if log == nil {
		log = zap.L()
	}
	return &HTTP{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log.Named("http"),
	}
}

// Send posts payload and returns the response body of a 2xx reply.
func (h *HTTP) Send(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	h.log.Debug("posting report", zap.String("endpoint", h.endpoint), zap.Int("bytes", len(payload)))
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", h.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
