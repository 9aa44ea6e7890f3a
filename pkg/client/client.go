package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vhsrental/vhsrental/pkg/domain"
	"github.com/vhsrental/vhsrental/pkg/session"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	maxResponseBody       = 8 << 20 // 8 MB

	pathLogin       = "/auth/login"
	pathRegister    = "/auth/register"
	pathLogout      = "/auth/logout"
	pathAccessToken = "/auth/access-token"
)

// Kind tags a request with its role in the authentication flow.
type Kind int

const (
	KindAPI Kind = iota
	KindLogin
	KindRegister
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindRegister:
		return "register"
	case KindRefresh:
		return "refresh"
	default:
		return "api"
	}
}

// Request describes one outbound API call. Body is JSON encoded unless
// RawBody is set, in which case it is sent as is with ContentType.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any
	RawBody     []byte
	ContentType string
	Header      http.Header

	// Kind marks calls that belong to the authentication flow. Only KindAPI
	// requests are retried after a token refresh.
	Kind Kind
	// NoAuth sends the request without the Authorization header.
	NoAuth bool
}

// Client is the VHS rental API client. Every call goes through Send, which
// attaches the session token and recovers once from an expired token.
type Client struct {
	baseURL        string
	store          *session.Store
	httpClient     *http.Client
	jar            *PersistentJar
	refresher      *refresher
	refreshTimeout time.Duration
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. If it has no cookie
// jar the client's persistent jar is attached to a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout bounds every single HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRefreshTimeout bounds the shared refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL (for example
// http://localhost:8080/api) acting on behalf of the session in store.
func New(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		store:          store,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		refreshTimeout: defaultRefreshTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.jar = NewPersistentJar(c.baseURL, store.Storage(), c.logger)
		c.httpClient.Jar = c.jar
	} else if pj, ok := c.httpClient.Jar.(*PersistentJar); ok {
		c.jar = pj
	}
	c.refresher = newRefresher(c.requestAccessToken, c.refreshTimeout)
	return c
}

// Session returns the store the client reads its token from.
func (c *Client) Session() *session.Store {
	return c.store
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues req and decodes the envelope's data into out (which may be nil).
//
// A 401 on an ordinary API request triggers one token refresh, shared with
// any concurrent callers, and exactly one retry with the new token. If the
// refresh fails the session is logged out and the refresh error is returned.
// Every returned error is, or wraps, an *APIError.
func (c *Client) Send(ctx context.Context, req Request, out any) error {
	payload, contentType, err := req.encode()
	if err != nil {
		return Normalize(fmt.Errorf("encode request: %w", err))
	}

	token := ""
	if !req.NoAuth {
		token = c.store.AccessToken()
	}

	resp, err := c.attempt(ctx, req, payload, contentType, token, 1)
	if err != nil {
		return Normalize(err)
	}
	if resp.ok() {
		return resp.decode(out)
	}
	if resp.status != http.StatusUnauthorized || !refreshable(req) {
		return newResponseError(resp.status, resp.body, req.Path)
	}

	fresh, err := c.recoverToken(ctx, token)
	if err != nil {
		return err
	}

	resp, err = c.attempt(ctx, req, payload, contentType, fresh, 2)
	if err != nil {
		return Normalize(err)
	}
	if resp.ok() {
		return resp.decode(out)
	}
	return newResponseError(resp.status, resp.body, req.Path)
}

// recoverToken returns the token to retry with after stale was rejected.
func (c *Client) recoverToken(ctx context.Context, stale string) (string, error) {
	// Another request already replaced the rejected token.
	if current := c.store.AccessToken(); current != "" && current != stale {
		c.logger.Debug().Msg("retrying with token refreshed by a concurrent request")
		return current, nil
	}

	fresh, err := c.refresher.refresh(ctx)
	if err == nil {
		return fresh, nil
	}
	if ctx.Err() != nil {
		// The caller gave up waiting; the shared refresh may still succeed.
		return "", Normalize(ctx.Err())
	}

	c.logger.Warn().Err(err).Msg("access token refresh failed, logging out")
	c.resetSession()
	return "", refreshFailure(err)
}

func (c *Client) resetSession() {
	if err := c.store.Logout(); err != nil {
		c.logger.Error().Err(err).Msg("clear stored session")
	}
	if c.jar != nil {
		c.jar.Reset()
	}
}

func refreshFailure(err error) *APIError {
	apiErr := Normalize(err)
	wrapped := *apiErr
	wrapped.cause = errors.Join(ErrRefreshFailed, apiErr.cause)
	return &wrapped
}

// requestAccessToken exchanges the refresh cookie for a new access token and
// stores it. It runs inside the refresh single-flight.
func (c *Client) requestAccessToken(ctx context.Context) (string, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   pathAccessToken,
		Body:   struct{}{},
		Kind:   KindRefresh,
		NoAuth: true,
	}
	var auth domain.AuthResponse
	if err := c.Send(ctx, req, &auth); err != nil {
		return "", err
	}
	if auth.AccessToken == "" {
		e := newAPIError(http.StatusOK)
		e.Path = pathAccessToken
		e.Detail = "refresh response carried no access token"
		e.Message = e.Detail
		return "", e
	}
	if err := c.store.SetAccessToken(auth.AccessToken); err != nil {
		// The token is still usable for the retry; it just will not survive a restart.
		c.logger.Error().Err(err).Msg("persist refreshed access token")
	}
	return auth.AccessToken, nil
}

// refreshable reports whether a 401 on req may be recovered by a refresh.
// Authentication endpoints never are, so a failing refresh cannot recurse.
func refreshable(req Request) bool {
	if req.Kind != KindAPI {
		return false
	}
	switch strings.TrimRight(req.Path, "/") {
	case pathLogin, pathRegister, pathAccessToken:
		return false
	}
	return true
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// decode unwraps the success envelope into out.
func (r response) decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	var env domain.Envelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		return decodeFailure(r.status, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return decodeFailure(r.status, err)
	}
	return nil
}

func decodeFailure(status int, err error) *APIError {
	e := Normalize(fmt.Errorf("decode response: %w", err))
	e.StatusCode = status
	return e
}

// attempt performs one HTTP round trip. The returned error is a transport
// failure; HTTP error statuses are reported through response.
func (c *Client) attempt(ctx context.Context, req Request, payload []byte, contentType, token string, n int) (response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else {
		httpReq.Header.Del("Authorization")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).
			Int("attempt", n).Dur("elapsed", time.Since(start)).
			Msg("request failed")
		return response{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).
		Str("kind", req.Kind.String()).Int("attempt", n).Int("status", resp.StatusCode).
		Bool("authenticated", token != "").Dur("elapsed", time.Since(start)).
		Msg("request")
	return response{status: resp.StatusCode, body: data}, nil
}

func (r Request) encode() ([]byte, string, error) {
	if r.RawBody != nil {
		return r.RawBody, r.ContentType, nil
	}
	if r.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	return data, "application/json", nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Send(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.Send(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}
