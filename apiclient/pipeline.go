package apiclient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler dispatches a call and returns the backend response.
type Handler func(ctx context.Context, call *Call) (*Response, error)

// Middleware wraps a Handler with pre and post processing.
type Middleware func(next Handler) Handler

// Chain applies middleware so that mw[0] is the outermost stage.
func Chain(h Handler, mw ...Middleware) Handler {
	chained := h
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// RequestIDMiddleware gives every logical call one id, shared by its retry.
func RequestIDMiddleware(next Handler) Handler {
	return func(ctx context.Context, call *Call) (*Response, error) {
		if call.RequestID == "" {
			call.RequestID = uuid.New().String()
		}
		return next(ctx, call)
	}
}

// LoggingMiddleware logs each logical call once, at debug level or at warn level on failure.
// It sits outside the refresh stage, so a rejected first attempt is not logged on its own;
// "retried" tells whether the call was re-sent after a refresh.
func LoggingMiddleware(next Handler) Handler {
	return func(ctx context.Context, call *Call) (*Response, error) {
		start := time.Now()
		resp, err := next(ctx, call)

		evt := log.Debug()
		if err != nil {
			evt = log.Warn().Err(err)
		}
		if resp != nil {
			evt = evt.Int("status", resp.Status)
		} else if status := StatusCode(err); status != 0 {
			evt = evt.Int("status", status)
		}
		evt.Str("method", call.Request.Method).
			Str("path", call.Request.Path).
			Str("request_id", call.RequestID).
			Bool("retried", call.Retried).
			Dur("elapsed", time.Since(start)).
			Msg("api call")
		return resp, err
	}
}

// BearerMiddleware attaches the access token. Without a stored token the request goes out
// unauthenticated.
func BearerMiddleware(tokens TokenStore) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (*Response, error) {
			token := call.BearerToken
			if token == "" {
				stored, err := tokens.AccessToken(ctx)
				if err != nil {
					log.Err(err).Str("request_id", call.RequestID).Msg("Failed to read access token")
				}
				token = stored
			}
			call.sentToken = token
			return next(ctx, call)
		}
	}
}
