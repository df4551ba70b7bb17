package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itohio/envmon/pkg/collector"
)

// localTransport delivers reports to an in-process collector.
type localTransport struct {
	svc *collector.Service
}

func (l localTransport) Send(ctx context.Context, payload []byte) ([]byte, error) {
	var req collector.IngestRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	resp, err := l.svc.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
