package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
)

type PaymentAPI struct {
	client *api.Client
}

func NewPaymentAPI(client *api.Client) *PaymentAPI {
	return &PaymentAPI{client: client}
}

// PaymentRequest carries the final computed price and the recipient fields
// the provider shows during checkout.
type PaymentRequest struct {
	MethodCodeValue string  `json:"methodCodeValue"`
	PaymentPrice    int64   `json:"paymentPrice"`
	Recipient       Address `json:"recipient"`
}

// Request creates a payment intent against an existing order. The returned
// ExternalOrderKey correlates this attempt with the payment provider.
func (a *PaymentAPI) Request(ctx context.Context, orderID int64, req PaymentRequest) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := a.client.Do(ctx, api.Request{
		Resource: "payments.request",
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/api/orders/%d/payments", orderID),
		Body:     req,
	}, &intent)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// Confirm settles a payment on successful return from the provider. The
// orderId here is the external order key echoed back by the provider.
func (a *PaymentAPI) Confirm(ctx context.Context, paymentKey, externalOrderKey string, amount int64) error {
	return a.client.Do(ctx, api.Request{
		Resource: "payments.confirm",
		Method:   http.MethodPost,
		Path:     "/api/payments/confirm",
		Body: map[string]any{
			"paymentKey": paymentKey,
			"orderId":    externalOrderKey,
			"amount":     amount,
		},
	}, nil)
}

func (a *PaymentAPI) Cancel(ctx context.Context, externalOrderKey, reason string) error {
	return a.client.Do(ctx, api.Request{
		Resource: "payments.cancel",
		Method:   http.MethodPost,
		Path:     "/api/payments/cancel",
		Body:     map[string]any{"orderId": externalOrderKey, "reason": reason},
	}, nil)
}

// Fail records a provider-side failure (user cancelled, card declined) so the
// backend can mark the attempt.
func (a *PaymentAPI) Fail(ctx context.Context, externalOrderKey, code, message string) error {
	return a.client.Do(ctx, api.Request{
		Resource: "payments.fail",
		Method:   http.MethodPost,
		Path:     "/api/payments/fail",
		Body: map[string]any{
			"orderId":      externalOrderKey,
			"errorCode":    code,
			"errorMessage": message,
		},
	}, nil)
}
