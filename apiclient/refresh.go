package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// TokenStore is the part of the credential store the client core needs.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SaveAccessToken(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// EndpointRefresher calls the backend refresh endpoint directly, outside the middleware chain.
type EndpointRefresher struct {
	URL        string
	HTTPClient *http.Client
}

var _ Refresher = (*EndpointRefresher)(nil)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func (r *EndpointRefresher) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := r.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	var out refreshResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apierrors.Wrapf(apierrors.ErrInvalidResponse, "refresh response: %s", err)
	}
	if out.Access == "" {
		return nil, apierrors.Wrapf(apierrors.ErrInvalidResponse, "refresh response has no access token")
	}

	token := &oauth2.Token{
		AccessToken:  out.Access,
		RefreshToken: out.Refresh,
		TokenType:    "Bearer",
	}
	if exp, ok := TokenExpiry(out.Access); ok {
		token.Expiry = exp
	}
	return token, nil
}

// refreshMiddleware handles a 401 on a call that has not been retried yet: renew the access token
// once and re-dispatch the call exactly once. Concurrent 401s share one refresh.
func (c *Client) refreshMiddleware(next Handler) Handler {
	return func(ctx context.Context, call *Call) (*Response, error) {
		resp, err := next(ctx, call)
		if err == nil || call.Retried || !IsUnauthorized(err) {
			return resp, err
		}
		call.Retried = true

		refreshToken, readErr := c.tokens.RefreshToken(ctx)
		if readErr != nil {
			log.Err(readErr).Str("request_id", call.RequestID).Msg("Failed to read refresh token")
		}
		if refreshToken == "" {
			c.navigator.ToLogin(ctx, apierrors.ErrNoRefreshToken)
			return nil, err
		}

		access, refreshErr := c.refresh(ctx, refreshToken, call.sentToken)
		if refreshErr != nil {
			return nil, refreshErr
		}

		call.BearerToken = access
		return next(ctx, call)
	}
}

// refresh renews the access token, coalescing concurrent callers holding the same refresh token.
// rejected is the access token the server just refused; if the store already holds a different
// one, a previous flight rotated it and no new refresh is issued.
func (c *Client) refresh(ctx context.Context, refreshToken, rejected string) (string, error) {
	v, err, shared := c.refreshGroup.Do(refreshToken, func() (any, error) {
		// The shared flight must not die with whichever caller happened to start it.
		flightCtx := context.WithoutCancel(ctx)

		if current, err := c.tokens.AccessToken(flightCtx); err == nil && current != "" && current != rejected {
			return current, nil
		}

		token, err := c.refresher.RefreshToken(flightCtx, refreshToken)
		if err != nil {
			if clearErr := c.tokens.Clear(flightCtx); clearErr != nil {
				log.Err(clearErr).Msg("Failed to clear credentials after refresh failure")
			}
			refreshErr := &RefreshError{Err: err}
			c.navigator.ToLogin(flightCtx, refreshErr)
			return nil, refreshErr
		}

		if err := c.tokens.SaveAccessToken(flightCtx, token.AccessToken); err != nil {
			log.Err(err).Msg("Failed to persist refreshed access token")
		}
		if token.RefreshToken != "" && token.RefreshToken != refreshToken {
			if rotating, ok := c.tokens.(refreshTokenSaver); ok {
				if err := rotating.SaveRefreshToken(flightCtx, token.RefreshToken); err != nil {
					log.Err(err).Msg("Failed to persist rotated refresh token")
				}
			}
		}
		log.Debug().Time("expiry", token.Expiry).Msg("Access token refreshed")
		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Debug().Msg("Joined in-flight token refresh")
	}
	return v.(string), nil
}

// refreshTokenSaver is implemented by stores that can keep a rotated refresh token.
type refreshTokenSaver interface {
	SaveRefreshToken(ctx context.Context, refresh string) error
}
