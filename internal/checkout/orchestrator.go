package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/pricing"
)

type OrderClient interface {
	Create(ctx context.Context, draft commerce.OrderDraft) (*commerce.OrderSummary, error)
	Get(ctx context.Context, orderID int64) (*commerce.OrderDetail, error)
}

type CouponClient interface {
	Lock(ctx context.Context, orderID, userCouponID int64) error
	Redeem(ctx context.Context, orderID, userCouponID int64) error
	Release(ctx context.Context, orderID, userCouponID int64) error
}

type PointsClient interface {
	Balance(ctx context.Context, userID int64) (*commerce.PointsBalance, error)
	Use(ctx context.Context, orderID, userID, amount int64) (*commerce.PointsBalance, error)
	Restore(ctx context.Context, orderID, userID, amount int64) (*commerce.PointsBalance, error)
}

type PaymentClient interface {
	Request(ctx context.Context, orderID int64, req commerce.PaymentRequest) (*commerce.PaymentIntent, error)
	Confirm(ctx context.Context, paymentKey, externalOrderKey string, amount int64) error
	Fail(ctx context.Context, externalOrderKey, code, message string) error
}

// CartStore is the post-payment cleanup surface of the session cart.
type CartStore interface {
	RemovePurchased(ctx context.Context, cartItemIDs []int64) error
	Refresh(ctx context.Context) error
}

// Orchestrator runs the checkout workflow: create order → lock coupon →
// use points → request payment, hand off to the provider, and on return
// confirm the payment and clear the purchased lines. Earlier side effects
// are compensated when a later step fails, driven by the attempt status.
type Orchestrator struct {
	orders   OrderClient
	coupons  CouponClient
	points   PointsClient
	payments PaymentClient
	attempts AttemptStore
	events   events.Publisher
	log      *slog.Logger
}

func NewOrchestrator(
	orders OrderClient,
	coupons CouponClient,
	points PointsClient,
	payments PaymentClient,
	attempts AttemptStore,
	publisher events.Publisher,
	log *slog.Logger,
) *Orchestrator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		orders:   orders,
		coupons:  coupons,
		points:   points,
		payments: payments,
		attempts: attempts,
		events:   publisher,
		log:      log,
	}
}

type BeginRequest struct {
	UserID      int64
	SessionID   string
	Lines       []commerce.CartLine // the selected cart lines
	Address     *commerce.Address
	Coupon      *commerce.Coupon // optional, at most one
	PointsToUse int64
	MethodCode  string
}

// Handoff is what the frontend needs to invoke the payment provider.
type Handoff struct {
	OrderID          int64  `json:"orderId"`
	PaymentID        int64  `json:"paymentId"`
	ExternalOrderKey string `json:"externalOrderKey"`
	Amount           int64  `json:"amount"`
	RecipientName    string `json:"recipientName"`
	RecipientPhone   string `json:"recipientPhone"`
}

// Begin executes the pre-redirect half of the checkout. On failure after a
// compensable step, points are restored and the coupon lock released before
// the error is surfaced; the created order itself stays pending server-side.
func (o *Orchestrator) Begin(ctx context.Context, req BeginRequest) (*Handoff, error) {
	selected := selectedLines(req.Lines)
	if len(selected) == 0 {
		return nil, ErrNoItemsSelected
	}
	if req.Address == nil {
		return nil, ErrNoAddress
	}

	subtotal := subtotalOf(selected)
	hasDiscount := req.Coupon != nil || req.PointsToUse > 0
	if hasDiscount && subtotal < pricing.MinOrderAmount {
		return nil, ErrBelowMinimumOrder
	}

	fee := pricing.DeliveryFee(subtotal)
	var couponDiscount int64
	if req.Coupon != nil {
		couponDiscount = pricing.CouponDiscount(subtotal, req.Coupon.Amount)
	}

	if req.PointsToUse > 0 {
		balance, err := o.points.Balance(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("fetch point balance: %w", err)
		}
		limit := pricing.MaxUsablePoints(balance.Balance, subtotal, fee, couponDiscount)
		if req.PointsToUse > limit {
			return nil, ErrPointsExceedLimit
		}
	}

	total := pricing.OrderTotal(subtotal, fee, couponDiscount, req.PointsToUse)

	order, err := o.orders.Create(ctx, buildDraft(selected, fee, couponDiscount+req.PointsToUse))
	if err != nil {
		// nothing to compensate yet
		return nil, err
	}

	attempt := &Attempt{
		OrderID:     order.ID,
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Amount:      total,
		PointsUsed:  req.PointsToUse,
		CartItemIDs: cartItemIDs(selected),
		Status:      StatusOrderCreated,
		CreatedAt:   time.Now(),
	}

	if req.Coupon != nil {
		if err := o.coupons.Lock(ctx, order.ID, req.Coupon.UserCouponID); err != nil {
			o.compensate(ctx, attempt, err)
			return nil, fmt.Errorf("lock coupon: %w", err)
		}
		attempt.UserCouponID = req.Coupon.UserCouponID
		attempt.Status = StatusCouponLocked
	}

	if req.PointsToUse > 0 {
		if _, err := o.points.Use(ctx, order.ID, req.UserID, req.PointsToUse); err != nil {
			o.compensate(ctx, attempt, err)
			return nil, fmt.Errorf("use points: %w", err)
		}
		attempt.Status = StatusPointsApplied
	}

	intent, err := o.payments.Request(ctx, order.ID, commerce.PaymentRequest{
		MethodCodeValue: req.MethodCode,
		PaymentPrice:    total,
		Recipient:       *req.Address,
	})
	if err != nil {
		o.compensate(ctx, attempt, err)
		return nil, fmt.Errorf("request payment: %w", err)
	}
	attempt.Status = StatusPaymentRequested
	attempt.ExternalOrderKey = intent.ExternalOrderKey

	attempt.Status = StatusAwaitingReturn
	if err := o.attempts.Save(ctx, attempt); err != nil {
		// without a stored attempt the return leg cannot be validated
		o.compensate(ctx, attempt, err)
		return nil, fmt.Errorf("persist checkout attempt: %w", err)
	}

	o.log.InfoContext(ctx, "checkout handed off to payment provider",
		"order_id", order.ID, "external_order_key", intent.ExternalOrderKey, "amount", total)

	return &Handoff{
		OrderID:          order.ID,
		PaymentID:        intent.PaymentID,
		ExternalOrderKey: intent.ExternalOrderKey,
		Amount:           total,
		RecipientName:    req.Address.RecipientName,
		RecipientPhone:   req.Address.Phone,
	}, nil
}

// compensate undoes the side effects recorded in the attempt status, exactly
// once: a second call finds the attempt already COMPENSATING or FAILED and
// the transition guard refuses it.
func (o *Orchestrator) compensate(ctx context.Context, a *Attempt, cause error) {
	if !CanTransitionTo(a.Status, StatusCompensating) {
		return
	}
	prev := a.Status
	a.Status = StatusCompensating
	a.FailReason = cause.Error()
	o.persist(ctx, a)

	if prev.pointsRestorable() && a.PointsUsed > 0 {
		if _, err := o.points.Restore(ctx, a.OrderID, a.UserID, a.PointsUsed); err != nil {
			o.log.ErrorContext(ctx, "point restore failed, ledger left to backend reconciliation",
				"order_id", a.OrderID, "user_id", a.UserID, "amount", a.PointsUsed, "err", err)
		}
	}
	if prev.couponReleasable() && a.UserCouponID != 0 {
		if err := o.coupons.Release(ctx, a.OrderID, a.UserCouponID); err != nil {
			o.log.ErrorContext(ctx, "coupon release failed",
				"order_id", a.OrderID, "user_coupon_id", a.UserCouponID, "err", err)
		}
	}

	a.Status = StatusFailed
	o.persist(ctx, a)

	o.publish(ctx, events.Event{
		Type:             events.TypeCheckoutFailed,
		OrderID:          a.OrderID,
		ExternalOrderKey: a.ExternalOrderKey,
		UserID:           a.UserID,
		Amount:           a.Amount,
		Reason:           a.FailReason,
		OccurredAt:       time.Now(),
	})
}

// persist saves attempts that already have a provider correlation key.
// Attempts that fail before the payment request never get one and exist only
// in-process.
func (o *Orchestrator) persist(ctx context.Context, a *Attempt) {
	if a.ExternalOrderKey == "" {
		return
	}
	if err := o.attempts.Save(ctx, a); err != nil {
		o.log.ErrorContext(ctx, "attempt save failed",
			"external_order_key", a.ExternalOrderKey, "status", a.Status, "err", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, ev events.Event) {
	if err := o.events.Publish(ctx, ev); err != nil {
		o.log.WarnContext(ctx, "checkout event publish failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
	}
}

func selectedLines(lines []commerce.CartLine) []commerce.CartLine {
	var out []commerce.CartLine
	for _, l := range lines {
		if l.Selected {
			out = append(out, l)
		}
	}
	return out
}

func subtotalOf(lines []commerce.CartLine) int64 {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}
	return subtotal
}

func cartItemIDs(lines []commerce.CartLine) []int64 {
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.CartItemID
	}
	return ids
}

func buildDraft(lines []commerce.CartLine, deliveryFee, discount int64) commerce.OrderDraft {
	items := make([]commerce.OrderDraftItem, len(lines))
	for i, l := range lines {
		items[i] = commerce.OrderDraftItem{
			ProductVariantID: l.ProductVariantID,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			RegularPrice:     l.UnitPrice,
		}
	}
	return commerce.OrderDraft{
		DeliveryFee: deliveryFee,
		Discount:    discount,
		Items:       items,
	}
}
