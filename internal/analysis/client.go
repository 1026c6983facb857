package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client implements Analyzer against the HTTP analysis engine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewClient returns a client for the engine at baseURL. timeout bounds each
// call; a hung engine surfaces as ErrUnavailable instead of blocking a worker.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		log:        slog.Default(),
	}
}

type engineResponse struct {
	RiskScore       int             `json:"risk_score"`
	Summary         string          `json:"summary"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Analyze posts the diff to the engine and decodes the findings.
// Timeouts and 5xx responses return ErrUnavailable so callers can retry.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("analysis engine request failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		var out engineResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode analysis response: %w", err)
		}
		return sanitize(&out), nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return nil, fmt.Errorf("analysis engine: %s", resp.Status)
	}
}

// sanitize clamps the risk score to 0..100 and drops findings with unknown
// severities rather than persisting values the schema does not model.
func sanitize(out *engineResponse) *Result {
	score := out.RiskScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	vulns := make([]Vulnerability, 0, len(out.Vulnerabilities))
	for _, v := range out.Vulnerabilities {
		if !v.Severity.Valid() {
			continue
		}
		vulns = append(vulns, v)
	}
	return &Result{RiskScore: score, Summary: out.Summary, Vulnerabilities: vulns}
}
