package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ErrNilRequest is returned by Do, Dispatch and Send when there is no request to send.
var ErrNilRequest = errors.New("apiclient: nil request")

// Client is the authenticated HTTP client core. Every backend call made through Do passes the
// request ID, logging, refresh-on-401 and bearer stages before reaching the transport.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokens       TokenStore
	refresher    Refresher
	navigator    Navigator
	middleware   []Middleware
	refreshGroup singleflight.Group
	handler      Handler
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (timeouts, transport).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRefresher replaces the default refresh endpoint caller.
func WithRefresher(r Refresher) ClientOption {
	return func(c *Client) {
		c.refresher = r
	}
}

// WithNavigator sets where the client goes when credentials cannot be recovered.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithMiddleware adds stages that run outside the built-in ones.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

// New creates a client for the backend at baseURL (e.g. "http://localhost:8000/api").
func New(baseURL string, tokens TokenStore, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if tokens == nil {
		return nil, errors.New("[apiclient.New] token store is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		tokens:     tokens,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = &EndpointRefresher{URL: c.URL(RouteAuthRefresh), HTTPClient: c.httpClient}
	}
	if c.navigator == nil {
		c.navigator = NewLoginRedirector("/login", nil)
	}

	stages := append([]Middleware{}, c.middleware...)
	stages = append(stages,
		RequestIDMiddleware,
		LoggingMiddleware,
		c.refreshMiddleware,
		BearerMiddleware(c.tokens),
	)
	c.handler = Chain(c.send, stages...)
	return c, nil
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Do sends req through the full pipeline.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.Dispatch(ctx, &Call{Request: req})
}

// Dispatch sends an already prepared call through the full pipeline.
func (c *Client) Dispatch(ctx context.Context, call *Call) (*Response, error) {
	if call == nil || call.Request == nil {
		return nil, ErrNilRequest
	}
	return c.handler(ctx, call)
}

// Send bypasses the token stages: no stored bearer is attached and a 401 is returned as is.
// Callers that already hold a token pass it in req.Header.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	return Chain(c.send, RequestIDMiddleware, LoggingMiddleware)(ctx, &Call{Request: req})
}

// send is the transport stage. It builds a fresh *http.Request per attempt so a retry never
// reuses headers from the rejected one.
func (c *Client) send(ctx context.Context, call *Call) (*Response, error) {
	req := call.Request

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.URL(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if call.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", call.RequestID)
	}
	if call.sentToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+call.sentToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// DoJSON sends req through the pipeline and decodes the response into T.
func DoJSON[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// SendJSON is DoJSON without the token stages.
func SendJSON[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	resp, err := c.Send(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
