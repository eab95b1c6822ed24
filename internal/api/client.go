// Package api is the typed HTTP client for the interview backend. The
// session core treats the wire schemas as contracts; every call takes a
// context and returns an explicit error, and callers decide whether a
// failure is control-path (surfaced) or telemetry-path (swallowed).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) StartSession(ctx context.Context, req *models.StartSessionRequest) (*models.StartSessionResponse, error) {
	var resp models.StartSessionResponse
	if err := c.postJSON(ctx, "/api/start-session", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RequestHint(ctx context.Context, req *models.HintRequest) (*models.HintResponse, error) {
	var resp models.HintResponse
	if err := c.postJSON(ctx, "/api/hint", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitCode(ctx context.Context, req *models.CodeSubmitRequest) (*models.CodeSubmitResponse, error) {
	var resp models.CodeSubmitResponse
	if err := c.postJSON(ctx, "/api/submit-code", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncCode is best-effort telemetry for the remote observer view.
func (c *Client) SyncCode(ctx context.Context, sessionID, code string) error {
	req := &models.SyncCodeRequest{SessionID: sessionID, Code: code}
	return c.postJSON(ctx, "/api/sync-code", req, nil)
}

func (c *Client) AnalyzeStuck(ctx context.Context, req *models.AnalyzeStuckRequest) (*models.AnalyzeStuckResponse, error) {
	var resp models.AnalyzeStuckResponse
	if err := c.postJSON(ctx, "/api/analyze-stuck", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReportViolation informs the backend of an integrity violation. Callers
// must treat failures as non-fatal.
func (c *Client) ReportViolation(ctx context.Context, req *models.ReportCheatRequest) error {
	return c.postJSON(ctx, "/api/report-cheat", req, nil)
}

func (c *Client) EndSession(ctx context.Context, sessionID string) (*models.EndSessionResponse, error) {
	var resp models.EndSessionResponse
	if err := c.postJSON(ctx, "/api/end-session", &models.EndSessionRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
