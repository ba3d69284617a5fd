package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/cart"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
)

type AddItemRequestDTO struct {
	ProductVariantID int64 `json:"productVariantId"`
	Quantity         int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type UpdateSelectionRequestDTO struct {
	Selected bool `json:"isSelected"`
}

type CartResponseDTO struct {
	Lines   []commerce.CartLine `json:"lines"`
	Summary cart.Summary        `json:"summary"`
}

func (g *Gateway) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	g.ensureGuestToken(w, s)

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func (g *Gateway) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	g.ensureGuestToken(w, s)

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductVariantID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "productVariantId must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.AddItem(r.Context(), req.ProductVariantID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusCreated, store)
}

func (g *Gateway) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	cartItemID, ok := cartItemIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	if err := store.UpdateQuantity(r.Context(), cartItemID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func (g *Gateway) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	cartItemID, ok := cartItemIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateSelectionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	if err := store.UpdateSelection(r.Context(), cartItemID, req.Selected); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func (g *Gateway) UpdateAllSelection(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	var req UpdateSelectionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.UpdateAllSelection(r.Context(), req.Selected); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func (g *Gateway) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	cartItemID, ok := cartItemIDParam(w, r)
	if !ok {
		return
	}

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	if err := store.RemoveItem(r.Context(), cartItemID); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func (g *Gateway) RemoveSelected(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())

	store := g.cartStore(s, g.sessionClient(s))
	if err := store.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	if err := store.RemoveSelected(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	respondCart(w, http.StatusOK, store)
}

func respondCart(w http.ResponseWriter, status int, store *cart.Store) {
	respondJSON(w, status, CartResponseDTO{
		Lines:   store.Lines(),
		Summary: store.Summary(),
	})
}

func cartItemIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "cart_item_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_cart_item_id", "cart_item_id must be a positive integer")
		return 0, false
	}
	return id, true
}
