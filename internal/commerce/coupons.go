package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
)

type CouponAPI struct {
	client *api.Client
}

func NewCouponAPI(client *api.Client) *CouponAPI {
	return &CouponAPI{client: client}
}

func (a *CouponAPI) Usable(ctx context.Context, userID int64) ([]Coupon, error) {
	var coupons []Coupon
	err := a.client.Do(ctx, api.Request{
		Resource: "coupons.usable",
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/api/users/%d/coupons/usable", userID),
	}, &coupons)
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// Lock reserves a user coupon against an order until the payment settles.
func (a *CouponAPI) Lock(ctx context.Context, orderID, userCouponID int64) error {
	return a.couponCall(ctx, "coupons.lock", orderID, userCouponID, "lock")
}

// Redeem consumes a locked coupon after payment confirmation.
func (a *CouponAPI) Redeem(ctx context.Context, orderID, userCouponID int64) error {
	return a.couponCall(ctx, "coupons.redeem", orderID, userCouponID, "redeem")
}

// Release returns a locked coupon to the user after a failed attempt.
func (a *CouponAPI) Release(ctx context.Context, orderID, userCouponID int64) error {
	return a.couponCall(ctx, "coupons.release", orderID, userCouponID, "release")
}

func (a *CouponAPI) couponCall(ctx context.Context, resource string, orderID, userCouponID int64, action string) error {
	return a.client.Do(ctx, api.Request{
		Resource: resource,
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/api/orders/%d/coupons/%s", orderID, action),
		Body:     map[string]any{"userCouponId": userCouponID},
	}, nil)
}
