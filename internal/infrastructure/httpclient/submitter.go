package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/triplog/tracking-system/internal/core/ports"
)

const submitTimeout = 15 * time.Second

// Submitter delivers serialized samples to the collector's submission
// endpoint with a bearer token issued at device registration.
type Submitter struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewSubmitter(baseURL, token string) *Submitter {
	return &Submitter{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: submitTimeout},
	}
}

// Submit POSTs one sample payload. Any non-2xx response is a failure;
// the caller decides whether to queue for retry.
func (s *Submitter) Submit(ctx context.Context, payload ports.SamplePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("submit sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/positions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit sample: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit sample: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("submit sample: collector returned %d", resp.StatusCode)
	}
	return nil
}
