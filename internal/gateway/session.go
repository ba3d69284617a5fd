package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
)

const (
	cookieSession = "sid"
	cookieAccess  = "accessToken"
	cookieRefresh = "refreshToken"
	cookieGuest   = "guestToken"
)

type sessionKey struct{}

// session is the per-request view of the caller: a stable session id, the
// auth tokens read from cookies, and the guest cart token when present.
type session struct {
	id         string
	tokens     *cookieTokenStore
	guestToken string
}

func (s *session) authenticated() bool {
	return s.tokens.Tokens().Access != ""
}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

// SessionMiddleware resolves the caller's session from cookies, issuing a
// session id on first contact.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := cookieValue(r, cookieSession)
		if sid == "" {
			sid = uuid.NewString()
			setCookie(w, cookieSession, sid, 0)
		}

		s := &session{
			id: sid,
			tokens: newCookieTokenStore(w, auth.TokenPair{
				Access:  cookieValue(r, cookieAccess),
				Refresh: cookieValue(r, cookieRefresh),
			}),
			guestToken: cookieValue(r, cookieGuest),
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cookieTokenStore backs auth.TokenStore with request/response cookies, so a
// mid-request token refresh is persisted to the browser.
type cookieTokenStore struct {
	mu   sync.Mutex
	w    http.ResponseWriter
	pair auth.TokenPair
}

func newCookieTokenStore(w http.ResponseWriter, pair auth.TokenPair) *cookieTokenStore {
	return &cookieTokenStore{w: w, pair: pair}
}

func (s *cookieTokenStore) Tokens() auth.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

func (s *cookieTokenStore) Set(pair auth.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	setCookie(s.w, cookieAccess, pair.Access, 0)
	setCookie(s.w, cookieRefresh, pair.Refresh, 0)
}

func (s *cookieTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = auth.TokenPair{}
	expireCookie(s.w, cookieAccess)
	expireCookie(s.w, cookieRefresh)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
