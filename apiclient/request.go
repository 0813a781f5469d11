package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one backend call. It is never mutated by the pipeline; per-dispatch
// state lives on Call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

func NewRequest(method, path string, body any) *Request {
	return &Request{Method: method, Path: path, Body: body}
}

// Response is a fully read backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode %d response: %w", r.Status, err)
	}
	return nil
}

// Call is a single logical request travelling through the middleware chain.
type Call struct {
	Request   *Request
	RequestID string

	// Retried is set once the refresh stage has re-dispatched this call. A retried call
	// is never refreshed again.
	Retried bool

	// BearerToken overrides the stored access token for this dispatch.
	BearerToken string

	// sentToken is the access token actually attached on the last attempt.
	sentToken string
}
