package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
)

// ProviderReturn carries the query parameters the payment provider echoes
// back on its success/fail redirect. Treated as untrusted input: everything
// is validated against the stored attempt and the backend order record.
type ProviderReturn struct {
	PaymentKey       string
	ExternalOrderKey string
	Amount           int64
	ErrorCode        string
	ErrorMessage     string
}

type Receipt struct {
	OrderID      int64   `json:"orderId"`
	Amount       int64   `json:"amount"`
	ClearedItems []int64 `json:"clearedItems"`
}

// Complete finishes a checkout after a successful provider return: confirm
// the payment, redeem the coupon, clear the purchased cart lines. A repeat
// return for an already-completed attempt yields the same receipt.
func (o *Orchestrator) Complete(ctx context.Context, cart CartStore, ret ProviderReturn) (*Receipt, error) {
	attempt, err := o.attempts.Get(ctx, ret.ExternalOrderKey)
	if err != nil {
		return nil, err
	}
	if attempt.Status == StatusCompleted {
		return receiptOf(attempt), nil
	}
	if !CanTransitionTo(attempt.Status, StatusConfirming) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalTransition, attempt.Status)
	}

	// The redirect payload can be tampered with; the attempt and the
	// backend order are the authority on the amount.
	if ret.Amount != attempt.Amount {
		return nil, ErrAmountMismatch
	}
	order, err := o.orders.Get(ctx, attempt.OrderID)
	if err != nil {
		return nil, fmt.Errorf("verify order: %w", err)
	}
	if order.TotalPrice != attempt.Amount {
		return nil, ErrOrderMismatch
	}

	attempt.Status = StatusConfirming
	o.persist(ctx, attempt)

	if err := o.payments.Confirm(ctx, ret.PaymentKey, ret.ExternalOrderKey, attempt.Amount); err != nil {
		o.compensate(ctx, attempt, err)
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	// Payment is settled; the remaining steps must not fail the checkout.
	if attempt.UserCouponID != 0 {
		if err := o.coupons.Redeem(ctx, attempt.OrderID, attempt.UserCouponID); err != nil {
			o.log.WarnContext(ctx, "coupon redeem failed after settled payment",
				"order_id", attempt.OrderID, "user_coupon_id", attempt.UserCouponID, "err", err)
		}
	}
	if cart != nil {
		if err := cart.RemovePurchased(ctx, attempt.CartItemIDs); err != nil {
			o.log.WarnContext(ctx, "purchased cart lines not cleared",
				"order_id", attempt.OrderID, "err", err)
		}
	}

	attempt.Status = StatusCompleted
	o.persist(ctx, attempt)

	o.publish(ctx, events.Event{
		Type:             events.TypeCheckoutCompleted,
		OrderID:          attempt.OrderID,
		ExternalOrderKey: attempt.ExternalOrderKey,
		UserID:           attempt.UserID,
		Amount:           attempt.Amount,
		OccurredAt:       time.Now(),
	})
	o.log.InfoContext(ctx, "checkout completed",
		"order_id", attempt.OrderID, "external_order_key", attempt.ExternalOrderKey, "amount", attempt.Amount)

	return receiptOf(attempt), nil
}

// Abort handles the provider's fail redirect (user cancelled, card refused).
// Points and coupon are compensated exactly once; a second call is a no-op.
func (o *Orchestrator) Abort(ctx context.Context, ret ProviderReturn) error {
	attempt, err := o.attempts.Get(ctx, ret.ExternalOrderKey)
	if err != nil {
		return err
	}
	if attempt.Status.IsTerminal() {
		return nil
	}

	if err := o.payments.Fail(ctx, ret.ExternalOrderKey, ret.ErrorCode, ret.ErrorMessage); err != nil {
		o.log.WarnContext(ctx, "payment fail report rejected",
			"external_order_key", ret.ExternalOrderKey, "err", err)
	}

	reason := ret.ErrorMessage
	if reason == "" {
		reason = "payment provider returned failure"
	}
	o.compensate(ctx, attempt, errors.New(reason))
	return nil
}

func receiptOf(a *Attempt) *Receipt {
	return &Receipt{
		OrderID:      a.OrderID,
		Amount:       a.Amount,
		ClearedItems: a.CartItemIDs,
	}
}
