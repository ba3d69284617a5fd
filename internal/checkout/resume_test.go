package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
)

func storedAttempt(t *testing.T, f *fixture, status Status) *Attempt {
	t.Helper()
	a := &Attempt{
		ExternalOrderKey: "ord-abc",
		OrderID:          42,
		UserID:           9,
		Amount:           55000,
		PointsUsed:       5000,
		UserCouponID:     5,
		CartItemIDs:      []int64{1, 2},
		Status:           status,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, f.attempts.Save(context.Background(), a))
	return a
}

func successReturn() ProviderReturn {
	return ProviderReturn{
		PaymentKey:       "pay-key-1",
		ExternalOrderKey: "ord-abc",
		Amount:           55000,
	}
}

func TestComplete_Success(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 55000}}
	storedAttempt(t, f, StatusAwaitingReturn)
	cart := &MockCart{}

	receipt, err := f.orch.Complete(context.Background(), cart, successReturn())

	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.OrderID)
	assert.Equal(t, []int64{1, 2}, receipt.ClearedItems)

	require.Len(t, f.payments.ConfirmCalls, 1)
	assert.Equal(t, confirmCall{PaymentKey: "pay-key-1", ExternalOrderKey: "ord-abc", Amount: 55000}, f.payments.ConfirmCalls[0])

	require.Len(t, f.coupons.RedeemCalls, 1)
	require.Len(t, cart.Removed, 1)
	assert.Equal(t, []int64{1, 2}, cart.Removed[0])

	saved, err := f.attempts.Get(context.Background(), "ord-abc")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, saved.Status)
	require.Len(t, f.publisher.ByType(events.TypeCheckoutCompleted), 1)
}

func TestComplete_DuplicateReturn_IsIdempotent(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 55000}}
	storedAttempt(t, f, StatusAwaitingReturn)
	cart := &MockCart{}

	first, err := f.orch.Complete(context.Background(), cart, successReturn())
	require.NoError(t, err)

	second, err := f.orch.Complete(context.Background(), cart, successReturn())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.payments.ConfirmCalls, 1) // not confirmed twice
	assert.Len(t, cart.Removed, 1)
}

func TestComplete_AmountMismatch_RefusesToConfirm(t *testing.T) {
	f := newFixture()
	storedAttempt(t, f, StatusAwaitingReturn)

	ret := successReturn()
	ret.Amount = 1

	_, err := f.orch.Complete(context.Background(), &MockCart{}, ret)

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Empty(t, f.payments.ConfirmCalls)
	// no compensation either: the payment outcome is unknown
	assert.Empty(t, f.points.RestoreCalls)

	saved, getErr := f.attempts.Get(context.Background(), "ord-abc")
	require.NoError(t, getErr)
	assert.Equal(t, StatusAwaitingReturn, saved.Status)
}

func TestComplete_BackendOrderMismatch(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 99999}}
	storedAttempt(t, f, StatusAwaitingReturn)

	_, err := f.orch.Complete(context.Background(), &MockCart{}, successReturn())

	assert.ErrorIs(t, err, ErrOrderMismatch)
	assert.Empty(t, f.payments.ConfirmCalls)
}

func TestComplete_UnknownAttempt(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Complete(context.Background(), &MockCart{}, successReturn())

	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestComplete_ConfirmFails_CompensatesOnce(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 55000}}
	f.payments.ConfirmErr = errors.New("confirmation rejected")
	storedAttempt(t, f, StatusAwaitingReturn)

	_, err := f.orch.Complete(context.Background(), &MockCart{}, successReturn())

	require.Error(t, err)
	require.Len(t, f.points.RestoreCalls, 1)
	assert.Equal(t, ledgerCall{OrderID: 42, UserID: 9, Amount: 5000}, f.points.RestoreCalls[0])
	require.Len(t, f.coupons.ReleaseCalls, 1)

	saved, getErr := f.attempts.Get(context.Background(), "ord-abc")
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, saved.Status)
}

func TestComplete_CouponRedeemFailure_DoesNotFailCheckout(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 55000}}
	f.coupons.RedeemErr = errors.New("redeem unavailable")
	storedAttempt(t, f, StatusAwaitingReturn)

	receipt, err := f.orch.Complete(context.Background(), &MockCart{}, successReturn())

	require.NoError(t, err)
	assert.NotNil(t, receipt)
	saved, _ := f.attempts.Get(context.Background(), "ord-abc")
	assert.Equal(t, StatusCompleted, saved.Status)
}

func TestAbort_CompensatesExactlyOnce(t *testing.T) {
	f := newFixture()
	storedAttempt(t, f, StatusAwaitingReturn)

	ret := ProviderReturn{ExternalOrderKey: "ord-abc", ErrorCode: "USER_CANCEL", ErrorMessage: "user cancelled"}

	require.NoError(t, f.orch.Abort(context.Background(), ret))
	// the fail handler running again must not restore twice
	require.NoError(t, f.orch.Abort(context.Background(), ret))

	require.Len(t, f.points.RestoreCalls, 1)
	assert.Equal(t, ledgerCall{OrderID: 42, UserID: 9, Amount: 5000}, f.points.RestoreCalls[0])
	require.Len(t, f.coupons.ReleaseCalls, 1)
	require.Len(t, f.payments.FailCalls, 1)
	assert.Equal(t, failCall{ExternalOrderKey: "ord-abc", Code: "USER_CANCEL", Message: "user cancelled"}, f.payments.FailCalls[0])

	failed := f.publisher.ByType(events.TypeCheckoutFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "user cancelled", failed[0].Reason)
}

func TestAbort_AfterComplete_IsNoOp(t *testing.T) {
	f := newFixture()
	f.orders.Detail = &commerce.OrderDetail{OrderSummary: commerce.OrderSummary{ID: 42, TotalPrice: 55000}}
	storedAttempt(t, f, StatusAwaitingReturn)

	_, err := f.orch.Complete(context.Background(), &MockCart{}, successReturn())
	require.NoError(t, err)

	require.NoError(t, f.orch.Abort(context.Background(), ProviderReturn{ExternalOrderKey: "ord-abc"}))

	assert.Empty(t, f.points.RestoreCalls)
	assert.Empty(t, f.payments.FailCalls)
}
