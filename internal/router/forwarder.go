package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/plantwatch/telemetry-pipeline/internal/ingest"
	"github.com/plantwatch/telemetry-pipeline/pkg/telemetry"
)

// HTTPForwarder is the client side of the Ingest RPC (SPEC_FULL §4.5):
// it POSTs a batch to the supervisor's /v1/ingest endpoint as JSON.
type HTTPForwarder struct {
	client *http.Client
	url    string
}

// NewHTTPForwarder builds a forwarder posting to supervisorURL
// (e.g. "http://localhost:8090/v1/ingest"), reusing one shared client
// across calls.
func NewHTTPForwarder(supervisorURL string) *HTTPForwarder {
	return &HTTPForwarder{
		client: &http.Client{Timeout: 5 * time.Second},
		url:    supervisorURL,
	}
}

type ingestRequest struct {
	Envelopes []telemetry.Message `json:"envelopes"`
}

// ForwardBatch satisfies Batcher's Forwarder capability. Failures are
// returned to the caller, which logs and does not retry: at-least-once
// delivery is the device's responsibility via sequence numbers.
func (f *HTTPForwarder) ForwardBatch(ctx context.Context, envelopes []ingest.Envelope) error {
	body := ingestRequest{Envelopes: make([]telemetry.Message, len(envelopes))}
	for i, env := range envelopes {
		body.Envelopes[i] = env.Message
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("router: marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("router: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("router: ingest rpc failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("router: ingest rpc returned status %d", resp.StatusCode)
	}
	return nil
}
