package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mkuznecovs/healthmon/internal/common"
)

// HTTPClient implements Client against the healthmon HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*TokenResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var out TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	body := map[string]string{"username": username, "password": password}

	var out TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PushVectors(ctx context.Context, token string, userID int64, batch []VectorPayload) (*SyncResponse, error) {
	path := fmt.Sprintf("/sync/%d/vectors", userID)

	var out SyncResponse
	if err := c.doJSON(ctx, http.MethodPost, path, token, batch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PullVectors(ctx context.Context, token string, userID int64, limit int) ([]VectorPayload, error) {
	path := fmt.Sprintf("/sync/%d/vectors?limit=%d", userID, limit)

	var out []VectorPayload
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON performs one request/response round trip. Cancellation and
// timeouts come from ctx; the engine sets its submit timeout there.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps non-2xx responses onto the client error taxonomy.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readErrorDetail(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrNotAuthorized, detail)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrNotPremium, detail)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: http %d: %s", common.ErrTransient, resp.StatusCode, detail)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode, detail)
	}
}

func readErrorDetail(r io.Reader) string {
	var e struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(b) == 0 {
		return "no detail"
	}
	if json.Unmarshal(b, &e) == nil {
		if e.Detail != "" {
			return e.Detail
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(b))
}
