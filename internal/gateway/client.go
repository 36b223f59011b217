// Package gateway is the single HTTP client every call to the PMS API goes
// through. It owns the base URL, attaches the bearer token read at call time,
// tags requests with an id, and folds failures into the small error taxonomy
// in errors.go. There are no retries and no timeouts beyond the transport's
// defaults; callers cancel through their context.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader = "X-Request-ID"
	LoginPath       = "/auth/login"
)

// TokenSource yields the current bearer token, or "" when there is none.
// It is consulted on every request.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) AccessToken(ctx context.Context) string { return f(ctx) }

type Client struct {
	rc     *resty.Client
	tokens TokenSource
	log    zerolog.Logger
}

// New builds a client for baseURL. tokens may be nil, in which case no
// request is authenticated.
func New(baseURL string, tokens TokenSource, log zerolog.Logger) *Client {
	c := &Client{
		rc:     resty.New(),
		tokens: tokens,
		log:    log,
	}

	c.rc.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.rc.SetHeader("Accept", "application/json")
	c.rc.OnBeforeRequest(c.decorate)

	return c
}

// BaseURL reports the configured API root.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

func (c *Client) decorate(_ *resty.Client, r *resty.Request) error {
	r.SetHeader(RequestIDHeader, uuid.NewString())

	if c.tokens != nil {
		if tok := c.tokens.AccessToken(r.Context()); tok != "" {
			r.SetAuthToken(tok)
		}
	}

	return nil
}

// TokenResponse is the body of a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login posts form-encoded credentials to the auth endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	var out TokenResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post(LoginPath)
	if err != nil {
		c.log.Warn().Err(err).Str("path", LoginPath).Msg("login request failed")
		return out, &AuthenticationError{Err: err}
	}

	c.trace(resp)

	if !resp.IsSuccess() {
		return out, &AuthenticationError{Status: resp.StatusCode()}
	}

	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.AccessToken == "" {
		return out, &AuthenticationError{Status: resp.StatusCode(), Err: err}
	}

	return out, nil
}

// Call describes one data request.
type Call struct {
	Method     string
	Path       string // relative to the base URL, may hold {param} placeholders
	PathParams map[string]string
	Query      map[string]string
	Body       any

	// Resource and Op feed the error message on failure.
	Resource string
	Op       Operation
}

// Do executes call and, on a 2xx answer, decodes the body into out (when out
// is non-nil). Any other outcome is a *RequestFailedError.
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	req := c.rc.R().SetContext(ctx)
	if len(call.PathParams) > 0 {
		req.SetPathParams(call.PathParams)
	}
	if len(call.Query) > 0 {
		req.SetQueryParams(call.Query)
	}
	if call.Body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(call.Body)
	}

	method := call.Method
	if method == "" {
		method = http.MethodGet
	}

	fail := func(status int, detail string, err error) error {
		return &RequestFailedError{
			Resource:  call.Resource,
			Operation: call.Op,
			Status:    status,
			Detail:    detail,
			Err:       err,
		}
	}

	resp, err := req.Execute(method, call.Path)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", call.Path).Msg("request failed")
		return fail(0, "", err)
	}

	c.trace(resp)

	if !resp.IsSuccess() {
		return fail(resp.StatusCode(), errorDetail(resp.Body()), nil)
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fail(resp.StatusCode(), "undecodable response body", err)
	}

	return nil
}

func (c *Client) trace(resp *resty.Response) {
	req := resp.Request
	c.log.Debug().
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Str("method", req.Method).
		Str("url", req.URL).
		Int("status", resp.StatusCode()).
		Dur("latency", resp.Time()).
		Msg("pms api")
}

// errorDetail pulls the server's explanation out of an error body. The PMS
// API answers {"detail": "..."}; anything else is returned raw, clipped.
func errorDetail(body []byte) string {
	var e struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if s, ok := e.Detail.(string); ok && s != "" {
			return s
		}
		if e.Error != "" {
			return e.Error
		}
	}

	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}

	return s
}
