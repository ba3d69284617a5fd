package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
)

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend, stores the tokens as cookies and
// folds any guest cart into the account cart. The merge completes before the
// response so the next cart read cannot miss the merged state.
func (g *Gateway) Login(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	authAPI := commerce.NewAuthAPI(g.base)
	pair, user, err := authAPI.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}
	s.tokens.Set(pair)

	if s.guestToken != "" {
		client := g.sessionClient(s)
		store := g.cartStore(s, client)
		if err := store.MergeGuest(r.Context(), s.guestToken); err != nil {
			g.log.Warn("guest cart merge failed", "session_id", s.id, "err", err)
		} else {
			s.guestToken = ""
			expireCookie(w, cookieGuest)
		}
	}

	g.bus.Publish(auth.Event{Kind: auth.EventSignedIn, SessionID: s.id})
	respondJSON(w, http.StatusOK, user)
}

func (g *Gateway) Logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	if s.authenticated() {
		client := g.sessionClient(s)
		if err := commerce.NewAuthAPI(client).Logout(r.Context()); err != nil {
			g.log.Warn("backend logout failed", "session_id", s.id, "err", err)
		}
	}

	s.tokens.Clear()
	g.bus.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: s.id})
	w.WriteHeader(http.StatusNoContent)
}
