// API service for making raw HTTP requests to the movie backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "http://localhost:4000"

// APIService issues JSON requests against the backend base URL.
//
// Credentials travel as cookies on the client's jar. There is no retry policy and no timeout.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithRateLimit caps outgoing requests per second. Values <= 0 leave requests unlimited.
func WithRateLimit(rps float64) APIOption {
	return func(a *APIService) {
		if rps > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithCookieJar installs jar on the service's client so credentials are forwarded on every call.
func WithCookieJar(jar http.CookieJar) APIOption {
	return func(a *APIService) {
		if jar == nil {
			return
		}
		c := *a.httpClient
		c.Jar = jar
		a.httpClient = &c
	}
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the backend address requests are sent to.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Object returns the decoded body when it is a JSON object.
func (r *APIResponse) Object() map[string]any {
	if r == nil {
		return nil
	}
	obj, _ := r.JSONData.(map[string]any)
	return obj
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// PostJSON encodes v and posts it to path.
func (a *APIService) PostJSON(ctx context.Context, path string, v any) (*APIResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return a.Post(ctx, path, data)
}

// Delete performs a DELETE request to the specified path.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodDelete, path, nil)
}

// do sends the request and classifies the outcome.
//
// No response yields a [shared.NetworkError]; a status >= 400 yields a [shared.HTTPError]. Anything else,
// including 1xx and 3xx statuses, is returned to the caller as-is.
func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &shared.NetworkError{Method: method, Path: path, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &shared.NetworkError{Method: method, Path: path, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.NetworkError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	if resp.StatusCode >= 400 {
		httpErr := &shared.HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: raw}
		if msg, ok := apiResp.Object()["message"].(string); ok {
			httpErr.Message = msg
		}
		return apiResp, httpErr
	}
	return apiResp, nil
}
