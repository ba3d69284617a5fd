package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
)

type ctxKey int

const skipAuthKey ctxKey = iota

// WithoutAuth marks the request context so the transport neither attaches a
// bearer token nor attempts a refresh on 401. Used for login, token refresh
// and public catalog reads.
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthKey, true)
}

func skipAuth(ctx context.Context) bool {
	v, _ := ctx.Value(skipAuthKey).(bool)
	return v
}

// RefreshFunc exchanges a refresh token for a fresh token pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (auth.TokenPair, error)

// RefreshTransport attaches the session's bearer token to outgoing requests
// and, on a 401, performs exactly one refresh-and-retry. An exhausted refresh
// clears the session tokens, publishes a signed-out event and surfaces the
// original 401 unchanged.
type RefreshTransport struct {
	Base      http.RoundTripper
	Tokens    auth.TokenStore
	Refresh   RefreshFunc
	Bus       *auth.Bus
	SessionID string

	sfg singleflight.Group
}

func (t *RefreshTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if skipAuth(req.Context()) {
		return t.base().RoundTrip(req)
	}

	pair := t.Tokens.Tokens()
	resp, err := t.base().RoundTrip(withBearer(req, pair.Access))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || pair.Refresh == "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// body already consumed and not replayable, cannot retry
		return resp, nil
	}

	// Concurrent 401s from the same session share one refresh call.
	v, refreshErr, _ := t.sfg.Do("refresh", func() (interface{}, error) {
		if current := t.Tokens.Tokens(); current.Access != pair.Access && current.Access != "" {
			return current, nil // another request refreshed already
		}
		return t.Refresh(req.Context(), pair.Refresh)
	})
	if refreshErr != nil {
		t.Tokens.Clear()
		if t.Bus != nil {
			t.Bus.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: t.SessionID})
		}
		return resp, nil
	}

	fresh := v.(auth.TokenPair)
	t.Tokens.Set(fresh)
	if t.Bus != nil {
		t.Bus.Publish(auth.Event{Kind: auth.EventTokenRefreshed, SessionID: t.SessionID})
	}

	drain(resp)
	retry := withBearer(req, fresh.Access)
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("replay request body: %w", bodyErr)
		}
		retry.Body = body
	}
	return t.base().RoundTrip(retry)
}

func withBearer(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	return clone
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}

// NewRefreshFunc returns the default refresh-token grant against the
// backend's token endpoint, issued outside the refresh transport itself.
func NewRefreshFunc(baseURL string, client *http.Client) RefreshFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return auth.TokenPair{}, fmt.Errorf("marshal refresh request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/auth/token", bytes.NewReader(payload))
		if err != nil {
			return auth.TokenPair{}, fmt.Errorf("build refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return auth.TokenPair{}, fmt.Errorf("refresh token: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return auth.TokenPair{}, fmt.Errorf("read refresh response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return auth.TokenPair{}, newError(resp.StatusCode, body)
		}

		var out struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return auth.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
		}
		pair := auth.TokenPair{Access: out.AccessToken, Refresh: out.RefreshToken}
		if pair.Refresh == "" {
			pair.Refresh = refreshToken
		}
		return pair, nil
	}
}
