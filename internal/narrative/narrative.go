// Package narrative provides the optional plain-language summarizer client.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// HTTPNarrator calls an external summarization service. It is strictly
// best effort: callers treat any error as "no narrative".
type HTTPNarrator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPNarrator creates a narrator against the given endpoint.
func NewHTTPNarrator(endpoint string, timeout time.Duration) *HTTPNarrator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNarrator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// FromConfig returns a narrator when enrichment is enabled, nil otherwise.
// A nil narrator means scores carry no narrative text.
func FromConfig(cfg domain.NarrativeConfig) domain.Narrator {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil
	}
	return NewHTTPNarrator(cfg.Endpoint, time.Duration(cfg.TimeoutSeconds)*time.Second)
}

type summarizeRequest struct {
	ClientID string   `json:"client_id"`
	Band     string   `json:"band"`
	Reasons  []string `json:"reasons"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize requests a one-sentence summary of a client's scoring outcome.
func (n *HTTPNarrator) Summarize(ctx context.Context, clientID, band string, reasons []string) (string, error) {
	body, err := json.Marshal(summarizeRequest{
		ClientID: clientID,
		Band:     band,
		Reasons:  reasons,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode summarize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("summarize request returned %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode summarize response: %w", err)
	}
	return out.Summary, nil
}
