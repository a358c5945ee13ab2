// Package proposal talks to the external AI proposal endpoint. The endpoint is
// a black box: it receives the current process with the organization chart and
// answers with a candidate process that may reference departments and roles
// by name.
package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/process-raci/internal/domain"
)

var (
	// ErrDisabled is returned when no endpoint is configured.
	ErrDisabled = errors.New("proposal endpoint not configured")

	// ErrBadResponse indicates a non-2xx answer or an unreadable candidate.
	ErrBadResponse = errors.New("invalid proposal response")
)

const maxResponseBytes = 4 << 20

// Request is sent to the endpoint.
type Request struct {
	Instruction string              `json:"instruction"`
	Process     domain.Process      `json:"process"`
	Departments []domain.Department `json:"departments"`
}

// Proposer produces a candidate rewrite of a process.
type Proposer interface {
	Propose(ctx context.Context, req Request) (domain.ProcessCandidate, error)
}

// Client is the HTTP implementation of Proposer. It is safe for concurrent use.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client; an empty url yields a client that always
// returns ErrDisabled.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{url: url, apiKey: apiKey, httpClient: &http.Client{Timeout: timeout}}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Propose posts req and decodes the candidate.
func (c *Client) Propose(ctx context.Context, req Request) (domain.ProcessCandidate, error) {
	if !c.Enabled() {
		return domain.ProcessCandidate{}, ErrDisabled
	}
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ProcessCandidate{}, fmt.Errorf("encode proposal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.ProcessCandidate{}, fmt.Errorf("build proposal request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.ProcessCandidate{}, fmt.Errorf("call proposal endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.ProcessCandidate{}, fmt.Errorf("read proposal response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ProcessCandidate{}, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var candidate domain.ProcessCandidate
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return domain.ProcessCandidate{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return candidate, nil
}
