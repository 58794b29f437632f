// ABOUTME: HTTP client for the blog REST API
// ABOUTME: Single choke point that authorizes requests and handles auth failures

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nilmcc/blogctl/internal/apperr"
	"github.com/nilmcc/blogctl/internal/storage"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 1 << 20

// Navigator exposes the current route and lets the client redirect
type Navigator interface {
	Current() string
	Redirect(path string)
}

// Client is the API client for the blog backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store   // durable credentials
	flags      *storage.Memory // transient, process-scoped flags
	limiter    *rate.Limiter
	logger     *slog.Logger

	excludedHosts   []string
	publicEndpoints []string
	exemptRoutes    []string
	redirectDelay   time.Duration

	mu             sync.RWMutex
	nav            Navigator
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithStore sets the durable store the token is read from
func WithStore(s storage.Store) Option {
	return func(c *Client) { c.store = s }
}

// WithTransientStore sets the process-scoped store holding the redirect flag
func WithTransientStore(m *storage.Memory) Option {
	return func(c *Client) { c.flags = m }
}

// WithTimeout sets the overall request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithExcludedHosts sets URL patterns of external providers that never get the token
func WithExcludedHosts(hosts ...string) Option {
	return func(c *Client) { c.excludedHosts = hosts }
}

// WithRedirectDelay sets how long to wait before navigating to login after a 401
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Client) { c.redirectDelay = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client with the given base URL (including /api)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:           storage.NewMemory(),
		flags:           storage.NewMemory(),
		logger:          slog.Default(),
		excludedHosts:   []string{"gitlab.nilm.cc"},
		publicEndpoints: []string{"/api/posts", "/api/categories", "/api/tags", "/api/comments"},
		exemptRoutes:    []string{"/about", "/login"},
		redirectDelay:   100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetNavigator wires the router used for exempt-route checks and redirects
func (c *Client) SetNavigator(nav Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav = nav
}

// OnUnauthorized registers a hook run after credentials are cleared by a 401
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) navigator() Navigator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nav
}

// resolve turns an API path into a full URL. Absolute URLs pass through.
func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.Contains(path, "://") {
		target = c.baseURL + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// do sends a JSON request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// doJSON is do with a freshly allocated result
func doJSON[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*T, error) {
	var out T
	if err := c.do(ctx, method, path, query, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, method+" "+path, fmt.Errorf("failed to marshal input: %w", err))
		}
		data, err = normalizeContent(data)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, method+" "+path, fmt.Errorf("failed to normalize content: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), reader)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, method+" "+path, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send authorizes and executes req, then routes the response
func (c *Client) send(req *http.Request, out any) error {
	ctx := req.Context()
	op := req.Method + " " + req.URL.Path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperr.Wrap(apperr.KindNetwork, op, c.handleRequestError(ctx, err))
		}
	}

	c.authorize(req)
	c.logger.Debug("API request",
		"method", req.Method,
		"url", req.URL.String(),
		"authorized", req.Header.Get("Authorization") != "",
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindNetwork, op, c.handleRequestError(ctx, err))
	}
	defer resp.Body.Close()

	c.logger.Debug("API response", "url", req.URL.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(req, resp)
	}

	if err := decodeBody(resp.Body, out); err != nil {
		return apperr.Wrap(apperr.KindServer, op, fmt.Errorf("invalid response from backend: %w", err))
	}
	return nil
}

// decodeBody fills out from a successful response body
func decodeBody(body io.Reader, out any) error {
	switch dst := out.(type) {
	case nil:
		_, err := io.Copy(io.Discard, body)
		return err
	case *json.RawMessage:
		data, err := io.ReadAll(body)
		if err != nil {
			return err
		}
		*dst = data
		return nil
	case io.Writer:
		_, err := io.Copy(dst, body)
		return err
	}

	err := json.NewDecoder(body).Decode(out)
	if errors.Is(err, io.EOF) {
		// Empty body, e.g. 204 from a delete
		return nil
	}
	return err
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses and applies status side effects
func (c *Client) handleErrorResponse(req *http.Request, resp *http.Response) error {
	target := req.URL.String()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		URL:        target,
		Body:       body,
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		statusErr.Message = errResp.Message
		statusErr.Reason = errResp.Error
	}

	c.logger.Debug("API error response", "url", target, "status", resp.StatusCode, "message", statusErr.Message)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.handleUnauthorized(req)
	case http.StatusInternalServerError:
		c.logger.Error("Backend internal server error", "url", target, "body", string(body))
	}

	return apperr.Wrap(kindForStatus(resp.StatusCode), req.Method+" "+req.URL.Path, statusErr)
}

func kindForStatus(code int) apperr.Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperr.KindAuth
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case code >= 500:
		return apperr.KindServer
	default:
		return apperr.KindUnknown
	}
}

// StatusError is a non-2xx response from the backend
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string // "message" field of the error body
	Reason     string // "error" field of the error body
	Body       []byte
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("backend error: %s", e.Message)
	case e.Reason != "":
		return fmt.Sprintf("backend error: %s", e.Reason)
	default:
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
}

// ServerMessage returns the backend's user-facing message
func (e *StatusError) ServerMessage() string {
	return e.Message
}

// StatusCode extracts the HTTP status from err, or 0 if none
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
