package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
)

// CartAPI wraps the backend cart endpoints. Guest sessions attach their
// opaque token to every call so an unauthenticated cart survives reloads.
type CartAPI struct {
	client     *api.Client
	guestToken string
}

func NewCartAPI(client *api.Client, guestToken string) *CartAPI {
	return &CartAPI{client: client, guestToken: guestToken}
}

func (a *CartAPI) Fetch(ctx context.Context) ([]CartLine, error) {
	var lines []CartLine
	err := a.client.Do(ctx, api.Request{
		Resource:   "cart.fetch",
		Method:     http.MethodGet,
		Path:       "/api/carts",
		GuestToken: a.guestToken,
	}, &lines)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (a *CartAPI) AddItem(ctx context.Context, productVariantID int64, quantity int) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.add",
		Method:     http.MethodPost,
		Path:       "/api/carts/items",
		Body:       map[string]any{"productVariantId": productVariantID, "quantity": quantity},
		GuestToken: a.guestToken,
	}, nil)
}

func (a *CartAPI) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.update_quantity",
		Method:     http.MethodPatch,
		Path:       fmt.Sprintf("/api/carts/items/%d/quantity", cartItemID),
		Body:       map[string]any{"quantity": quantity},
		GuestToken: a.guestToken,
	}, nil)
}

func (a *CartAPI) UpdateSelection(ctx context.Context, cartItemID int64, selected bool) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.update_selection",
		Method:     http.MethodPatch,
		Path:       fmt.Sprintf("/api/carts/items/%d/selection", cartItemID),
		Body:       map[string]any{"isSelected": selected},
		GuestToken: a.guestToken,
	}, nil)
}

func (a *CartAPI) UpdateAllSelection(ctx context.Context, selected bool) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.update_all_selection",
		Method:     http.MethodPatch,
		Path:       "/api/carts/items/selection",
		Body:       map[string]any{"isSelected": selected},
		GuestToken: a.guestToken,
	}, nil)
}

func (a *CartAPI) RemoveItem(ctx context.Context, cartItemID int64) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.remove",
		Method:     http.MethodDelete,
		Path:       fmt.Sprintf("/api/carts/items/%d", cartItemID),
		GuestToken: a.guestToken,
	}, nil)
}

// RemoveItems deletes a set of lines in one call; used by post-purchase
// cleanup and remove-selected.
func (a *CartAPI) RemoveItems(ctx context.Context, cartItemIDs []int64) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.remove_items",
		Method:     http.MethodDelete,
		Path:       "/api/carts/items",
		Body:       map[string]any{"cartItemIds": cartItemIDs},
		GuestToken: a.guestToken,
	}, nil)
}

// Merge folds a guest cart into the authenticated user's cart. Callers must
// let this complete before any subsequent cart read.
func (a *CartAPI) Merge(ctx context.Context, guestToken string) error {
	return a.client.Do(ctx, api.Request{
		Resource:   "cart.merge",
		Method:     http.MethodPost,
		Path:       "/api/carts/merge",
		GuestToken: guestToken,
	}, nil)
}
