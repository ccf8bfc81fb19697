// Package client is a small Go client for the gradequest HTTP API, used by
// the command-line tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/SAP-F-2025/gradequest-service/internal/services"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gradequest: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gradequest: %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		client:  httpClient,
	}
}

// WithToken returns a copy that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.token = token
	return &out
}

// LoginTeacher exchanges the teacher secret for a session token and keeps it.
func (c *Client) LoginTeacher(ctx context.Context, secret string) error {
	var resp services.LoginResponse
	req := services.LoginRequest{Role: services.RoleTeacher, Secret: secret}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) Policy(ctx context.Context) (scoring.Policy, error) {
	var policy scoring.Policy
	err := c.do(ctx, http.MethodGet, "/scoring/policy", nil, &policy)
	return policy, err
}

// Board fetches the teacher board of one subject.
func (c *Client) Board(ctx context.Context, subject models.SubjectCode, query string) ([]services.BoardRow, error) {
	path := "/subjects/" + url.PathEscape(string(subject)) + "/board"
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}
	var resp struct {
		Rows []services.BoardRow `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gradequest: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gradequest: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gradequest: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gradequest: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var payload struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Message != "" {
			apiErr.Message, apiErr.Code = payload.Message, payload.Code
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("gradequest: parse response: %w", err)
	}
	return nil
}
