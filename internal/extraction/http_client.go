// Package extraction holds the HTTP client for the external document
// extraction service. Submission only confirms acceptance; results arrive
// later through the callback endpoint carrying the task ID.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vendex/internal/config"
	"vendex/internal/port"
)

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an ExtractionClient for the configured service. The
// timeout is tuned above the service's expected latency under burst load; a
// local timeout means unknown outcome, not failure, which is why callers keep
// the task context alive on error.
func NewHTTPClient(cfg *config.ExtractionConfig) port.ExtractionClient {
	return &httpClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *httpClient) Submit(ctx context.Context, documentType string, req *port.ExtractionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("extraction.Submit marshal: %w", err)
	}

	url := fmt.Sprintf("%s/api/ocr/async/process-%s", c.baseURL, documentType)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("extraction.Submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("extraction.Submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("extraction.Submit: service returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
