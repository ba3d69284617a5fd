package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/cart"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/checkout"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
)

// Gateway is the storefront-facing HTTP surface. Sessions are resolved from
// cookies; every backend call goes through a session-scoped client so the
// 401 refresh-and-retry and guest-token plumbing stay out of the handlers.
type Gateway struct {
	base      *api.Client
	bus       *auth.Bus
	cache     cart.Cache
	attempts  checkout.AttemptStore
	publisher events.Publisher

	successURL string
	failURL    string

	log *slog.Logger
}

type Options struct {
	Base      *api.Client
	Bus       *auth.Bus
	Cache     cart.Cache // optional
	Attempts  checkout.AttemptStore
	Publisher events.Publisher

	SuccessReturnURL string
	FailReturnURL    string

	Logger *slog.Logger
}

func New(opts Options) *Gateway {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Gateway{
		base:       opts.Base,
		bus:        opts.Bus,
		cache:      opts.Cache,
		attempts:   opts.Attempts,
		publisher:  publisher,
		successURL: opts.SuccessReturnURL,
		failURL:    opts.FailReturnURL,
		log:        log,
	}
}

func (g *Gateway) Routes(requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", g.Login)
			r.Post("/logout", g.Logout)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", g.GetCart)
			r.Post("/items", g.AddItem)
			r.Patch("/items/{cart_item_id}/quantity", g.UpdateQuantity)
			r.Patch("/items/{cart_item_id}/selection", g.UpdateSelection)
			r.Patch("/selection", g.UpdateAllSelection)
			r.Delete("/items/{cart_item_id}", g.RemoveItem)
			r.Delete("/items", g.RemoveSelected)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/coupons", g.UsableCoupons)
			r.Get("/points", g.PointBalance)
			r.Post("/", g.BeginCheckout)
			r.Get("/return/success", g.PaymentSuccess)
			r.Get("/return/fail", g.PaymentFail)
		})
	})

	return r
}

// WatchAuthEvents evicts a session's cached cart when its refresh is
// exhausted and the session is signed out. Runs until ctx is cancelled.
func (g *Gateway) WatchAuthEvents(ctx context.Context) {
	ch, cancel := g.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Kind != auth.EventSignedOut || g.cache == nil {
				continue
			}
			evictCtx, cancelEvict := context.WithTimeout(context.Background(), time.Second)
			if err := g.cache.Delete(evictCtx, ev.SessionID); err != nil {
				g.log.Warn("cart cache eviction failed", "session_id", ev.SessionID, "err", err)
			}
			cancelEvict()
		}
	}
}

func (g *Gateway) sessionClient(s *session) *api.Client {
	return g.base.WithSession(s.tokens, s.id, g.bus)
}

func (g *Gateway) cartStore(s *session, client *api.Client) *cart.Store {
	guest := ""
	if !s.authenticated() {
		guest = s.guestToken
	}
	return cart.NewStore(commerce.NewCartAPI(client, guest), g.cache, s.id, g.log)
}

func (g *Gateway) orchestrator(client *api.Client) *checkout.Orchestrator {
	return checkout.NewOrchestrator(
		commerce.NewOrderAPI(client),
		commerce.NewCouponAPI(client),
		commerce.NewPointsAPI(client),
		commerce.NewPaymentAPI(client),
		g.attempts,
		g.publisher,
		g.log,
	)
}

// ensureGuestToken issues a guest cart token on the first guest cart call so
// the cart survives reloads.
func (g *Gateway) ensureGuestToken(w http.ResponseWriter, s *session) {
	if s.authenticated() || s.guestToken != "" {
		return
	}
	s.guestToken = uuid.NewString()
	setCookie(w, cookieGuest, s.guestToken, 60*60*24*30)
}
