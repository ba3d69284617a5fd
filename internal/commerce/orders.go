package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
)

type OrderAPI struct {
	client *api.Client
}

func NewOrderAPI(client *api.Client) *OrderAPI {
	return &OrderAPI{client: client}
}

// Create submits an OrderDraft. The returned order id is the correlation key
// for every subsequent checkout step.
func (a *OrderAPI) Create(ctx context.Context, draft OrderDraft) (*OrderSummary, error) {
	var summary OrderSummary
	err := a.client.Do(ctx, api.Request{
		Resource: "orders.create",
		Method:   http.MethodPost,
		Path:     "/api/orders",
		Body:     draft,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (a *OrderAPI) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	var detail OrderDetail
	err := a.client.Do(ctx, api.Request{
		Resource: "orders.get",
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/api/orders/%d", orderID),
	}, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
