package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/timeouts"
)

const maxRemoteResponseBytes = 4 << 20

// RemoteScorer calls an external search service over HTTP. The service
// accepts the request JSON at its /search endpoint and responds with
// {"results": [...]}.
type RemoteScorer struct {
	url    string
	client *http.Client
}

// NewRemoteScorer builds a scorer for the service at baseURL. The request
// timeout comes from the per-call context, not the client.
func NewRemoteScorer(baseURL string) *RemoteScorer {
	return &RemoteScorer{
		url:    baseURL + "/search",
		client: &http.Client{},
	}
}

func (s *RemoteScorer) Score(ctx context.Context, req Request) ([]Candidate, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Resolve())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxRemoteResponseBytes))
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []Candidate `json:"results"`
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteResponseBytes))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Results, nil
}
