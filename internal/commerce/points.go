package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
)

type PointsAPI struct {
	client *api.Client
}

func NewPointsAPI(client *api.Client) *PointsAPI {
	return &PointsAPI{client: client}
}

func (a *PointsAPI) Balance(ctx context.Context, userID int64) (*PointsBalance, error) {
	var balance PointsBalance
	err := a.client.Do(ctx, api.Request{
		Resource: "points.balance",
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/api/users/%d/points", userID),
	}, &balance)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// Use debits points from the user's balance, tagged with the order id.
func (a *PointsAPI) Use(ctx context.Context, orderID, userID, amount int64) (*PointsBalance, error) {
	return a.ledgerCall(ctx, "points.use", orderID, userID, amount, "use")
}

// Restore credits back points debited for a failed order. The same
// (orderId, userId, amount) triple is the compensation key.
func (a *PointsAPI) Restore(ctx context.Context, orderID, userID, amount int64) (*PointsBalance, error) {
	return a.ledgerCall(ctx, "points.restore", orderID, userID, amount, "restore")
}

// Grant credits reward points earned by an order.
func (a *PointsAPI) Grant(ctx context.Context, orderID, userID, amount int64) (*PointsBalance, error) {
	return a.ledgerCall(ctx, "points.grant", orderID, userID, amount, "grant")
}

func (a *PointsAPI) ledgerCall(ctx context.Context, resource string, orderID, userID, amount int64, action string) (*PointsBalance, error) {
	var balance PointsBalance
	err := a.client.Do(ctx, api.Request{
		Resource: resource,
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/api/orders/%d/points/%s", orderID, action),
		Body:     map[string]any{"userId": userID, "amount": amount},
	}, &balance)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
