package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
)

// APIError is a non-2xx backend response normalized to a single message.
type APIError struct {
	Status     int
	StatusText string
	Message    string
	Fields     map[string][]string
	Body       []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match a 404 with errors.Is(err, errors.ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == apierrors.ErrNotFound && e.Status == http.StatusNotFound
}

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return apierrors.ErrNetwork.Error()
}

func (e *NetworkError) Unwrap() []error {
	return []error{apierrors.ErrNetwork, e.Err}
}

// RefreshError is returned to the original caller when the access token could not be renewed.
// Credentials have been cleared by the time it is seen.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: %s", apierrors.ErrRefreshFailed, Message(e.Err))
}

func (e *RefreshError) Unwrap() []error {
	return []error{apierrors.ErrRefreshFailed, e.Err}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if apierrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// Message returns the user facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if apierrors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *NetworkError
	if apierrors.As(err, &netErr) {
		return netErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return apierrors.ErrUnexpected.Error()
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{
		Status:     status,
		StatusText: http.StatusText(status),
		Body:       body,
	}
	e.Message, e.Fields = messageFromBody(body)
	if e.Message == "" {
		e.Message = fmt.Sprintf("Error: %d %s", status, e.StatusText)
	}
	return e
}

// messageFromBody picks the message the backend meant to show: a plain string body, then
// "message", "detail" and "error", then "field: msg, msg; field2: msg" built from field errors.
// A list body is joined as is.
func messageFromBody(body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return trimmed, nil
	}

	switch v := data.(type) {
	case string:
		return v, nil
	case map[string]any:
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s, nil
			}
		}
		fields := fieldErrors(v)
		if len(fields) == 0 {
			return "", nil
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(fields[name], ", ")))
		}
		return strings.Join(parts, "; "), fields
	case []any:
		// non-field errors arrive as a bare list of messages
		msgs := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, ", "), nil
	}
	return "", nil
}

func fieldErrors(data map[string]any) map[string][]string {
	fields := make(map[string][]string)
	for key, raw := range data {
		switch v := raw.(type) {
		case string:
			fields[key] = []string{v}
		case []any:
			msgs := make([]string, 0, len(v))
			for _, m := range v {
				msgs = append(msgs, fmt.Sprint(m))
			}
			fields[key] = msgs
		}
	}
	return fields
}
