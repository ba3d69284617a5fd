package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/checkout"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
)

type BeginCheckoutRequestDTO struct {
	Address      *commerce.Address `json:"address"`
	UserCouponID int64             `json:"userCouponId,omitempty"`
	PointsToUse  int64             `json:"pointsToUse,omitempty"`
	MethodCode   string            `json:"methodCode"`
}

type BeginCheckoutResponseDTO struct {
	checkout.Handoff
	SuccessURL string `json:"successUrl"`
	FailURL    string `json:"failUrl"`
}

// BeginCheckout runs the pre-redirect checkout steps over the currently
// selected cart lines and returns the provider hand-off.
func (g *Gateway) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	if !s.authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to checkout")
		return
	}

	var req BeginCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	client := g.sessionClient(s)
	user, err := commerce.NewUserAPI(client).Me(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	// Coupon selection is validated against the user's usable list rather
	// than trusting an amount from the request body.
	var coupon *commerce.Coupon
	if req.UserCouponID != 0 {
		usable, err := commerce.NewCouponAPI(client).Usable(r.Context(), user.ID)
		if err != nil {
			handleError(w, err)
			return
		}
		for i := range usable {
			if usable[i].UserCouponID == req.UserCouponID {
				coupon = &usable[i]
				break
			}
		}
		if coupon == nil {
			respondError(w, http.StatusBadRequest, "invalid_coupon", "coupon is not usable")
			return
		}
	}

	store := g.cartStore(s, client)
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}

	handoff, err := g.orchestrator(client).Begin(r.Context(), checkout.BeginRequest{
		UserID:      user.ID,
		SessionID:   s.id,
		Lines:       store.SelectedLines(),
		Address:     req.Address,
		Coupon:      coupon,
		PointsToUse: req.PointsToUse,
		MethodCode:  req.MethodCode,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, BeginCheckoutResponseDTO{
		Handoff:    *handoff,
		SuccessURL: g.successURL,
		FailURL:    g.failURL,
	})
}

// PaymentSuccess is the provider's success-return leg. The query parameters
// are untrusted; the orchestrator validates them against the stored attempt
// and the backend order before confirming.
func (g *Gateway) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	q := r.URL.Query()
	amount, err := strconv.ParseInt(q.Get("amount"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be an integer")
		return
	}
	ret := checkout.ProviderReturn{
		PaymentKey:       q.Get("paymentKey"),
		ExternalOrderKey: q.Get("orderId"),
		Amount:           amount,
	}
	if ret.PaymentKey == "" || ret.ExternalOrderKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "paymentKey and orderId are required")
		return
	}

	client := g.sessionClient(s)
	store := g.cartStore(s, client)
	receipt, err := g.orchestrator(client).Complete(r.Context(), store, ret)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// PaymentFail is the provider's fail-return leg: report the failure and
// compensate points/coupon exactly once.
func (g *Gateway) PaymentFail(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	q := r.URL.Query()
	ret := checkout.ProviderReturn{
		ExternalOrderKey: q.Get("orderId"),
		ErrorCode:        q.Get("code"),
		ErrorMessage:     q.Get("message"),
	}
	if ret.ExternalOrderKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "orderId is required")
		return
	}

	client := g.sessionClient(s)
	if err := g.orchestrator(client).Abort(r.Context(), ret); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "failed",
		"code":    ret.ErrorCode,
		"message": ret.ErrorMessage,
	})
}

func (g *Gateway) UsableCoupons(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	if !s.authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}

	client := g.sessionClient(s)
	user, err := commerce.NewUserAPI(client).Me(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	coupons, err := commerce.NewCouponAPI(client).Usable(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, coupons)
}

func (g *Gateway) PointBalance(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	if !s.authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}

	client := g.sessionClient(s)
	user, err := commerce.NewUserAPI(client).Me(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	balance, err := commerce.NewPointsAPI(client).Balance(r.Context(), user.ID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balance)
}
