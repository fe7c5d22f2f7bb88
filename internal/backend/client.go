package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	qerrors "querychat/cli/internal/errors"
)

// Client implements the API client over REST endpoints.
// All four operations share the same failure contract: a non-success status
// becomes a RequestFailed error carrying the raw response body, and a
// transport-level failure (unreachable server, undecodable body) becomes a
// TransportFailed error.
type Client struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:8000")
	baseURL string
	// endpoints contains the URL paths for the API endpoints
	endpoints Endpoints
	// client is the underlying HTTP client
	client *http.Client
}

// New creates a client for the given base URL and endpoints.
// Chat and evaluation wait on LLM work server-side, so the client carries a
// generous timeout rather than the usual few seconds.
func New(baseURL string, endpoints Endpoints) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Chat calls POST /api/chat and returns the backend's answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	var out ChatResult
	if err := c.postJSON(ctx, c.endpoints.Chat, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncSchema calls POST /api/sync-schema. The response shape discriminates by
// the presence of a job_id field; the returned outcome resolves that into an
// explicit variant.
func (c *Client) SyncSchema(ctx context.Context, req SyncRequest) (*SyncOutcome, error) {
	// Wire shape covering both variants of the response.
	var raw struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		Message string `json:"message"`
		SyncResult
	}
	if err := c.postJSON(ctx, c.endpoints.SyncSchema, req, &raw); err != nil {
		return nil, err
	}
	if raw.JobID != "" {
		status := JobStatus(raw.Status)
		if status == "" {
			status = JobRunning
		}
		return &SyncOutcome{Job: &JobHandle{ID: raw.JobID, Status: status, Message: raw.Message}}, nil
	}
	res := raw.SyncResult
	return &SyncOutcome{Immediate: &res}, nil
}

// JobStatus calls GET /api/sync-status?job_id=... It is a pure read: safe to
// call repeatedly, and terminal jobs keep answering with the same snapshot.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*SyncJob, error) {
	u := c.baseURL + c.endpoints.SyncStatus + "?job_id=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out SyncJob
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Evaluate calls POST /api/evaluate, triggering a full benchmark run
// server-side. The request has no body.
func (c *Client) Evaluate(ctx context.Context) (*EvaluationSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.endpoints.Evaluate, nil)
	if err != nil {
		return nil, err
	}
	var out EvaluationSummary
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health and reports whether the backend is reachable.
// No authentication required; used by the version command for connectivity checks.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.endpoints.Health, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return "unknown", nil
	}
	return out.Status, nil
}

// postJSON issues a JSON POST and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes a request and applies the shared failure contract.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return qerrors.Wrap(qerrors.TransportFailed, "server unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return qerrors.New(qerrors.RequestFailed, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return qerrors.Wrap(qerrors.TransportFailed, "malformed response", err)
	}
	return nil
}
