package checkout

import (
	"context"
	"sync"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
)

// MockOrders implements OrderClient for testing
type MockOrders struct {
	CreatedDraft *commerce.OrderDraft
	Summary      *commerce.OrderSummary
	CreateErr    error

	Detail *commerce.OrderDetail
	GetErr error
}

func (m *MockOrders) Create(_ context.Context, draft commerce.OrderDraft) (*commerce.OrderSummary, error) {
	m.CreatedDraft = &draft
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Summary, nil
}

func (m *MockOrders) Get(_ context.Context, orderID int64) (*commerce.OrderDetail, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Detail, nil
}

type couponCall struct {
	OrderID      int64
	UserCouponID int64
}

// MockCoupons implements CouponClient for testing
type MockCoupons struct {
	LockCalls    []couponCall
	RedeemCalls  []couponCall
	ReleaseCalls []couponCall

	LockErr    error
	RedeemErr  error
	ReleaseErr error
}

func (m *MockCoupons) Lock(_ context.Context, orderID, userCouponID int64) error {
	m.LockCalls = append(m.LockCalls, couponCall{orderID, userCouponID})
	return m.LockErr
}

func (m *MockCoupons) Redeem(_ context.Context, orderID, userCouponID int64) error {
	m.RedeemCalls = append(m.RedeemCalls, couponCall{orderID, userCouponID})
	return m.RedeemErr
}

func (m *MockCoupons) Release(_ context.Context, orderID, userCouponID int64) error {
	m.ReleaseCalls = append(m.ReleaseCalls, couponCall{orderID, userCouponID})
	return m.ReleaseErr
}

type ledgerCall struct {
	OrderID int64
	UserID  int64
	Amount  int64
}

// MockPoints implements PointsClient for testing
type MockPoints struct {
	BalanceValue int64
	BalanceErr   error

	UseCalls     []ledgerCall
	RestoreCalls []ledgerCall
	UseErr       error
	RestoreErr   error
}

func (m *MockPoints) Balance(_ context.Context, userID int64) (*commerce.PointsBalance, error) {
	if m.BalanceErr != nil {
		return nil, m.BalanceErr
	}
	return &commerce.PointsBalance{Balance: m.BalanceValue}, nil
}

func (m *MockPoints) Use(_ context.Context, orderID, userID, amount int64) (*commerce.PointsBalance, error) {
	m.UseCalls = append(m.UseCalls, ledgerCall{orderID, userID, amount})
	if m.UseErr != nil {
		return nil, m.UseErr
	}
	return &commerce.PointsBalance{Balance: m.BalanceValue - amount}, nil
}

func (m *MockPoints) Restore(_ context.Context, orderID, userID, amount int64) (*commerce.PointsBalance, error) {
	m.RestoreCalls = append(m.RestoreCalls, ledgerCall{orderID, userID, amount})
	if m.RestoreErr != nil {
		return nil, m.RestoreErr
	}
	return &commerce.PointsBalance{Balance: m.BalanceValue}, nil
}

type confirmCall struct {
	PaymentKey       string
	ExternalOrderKey string
	Amount           int64
}

type failCall struct {
	ExternalOrderKey string
	Code             string
	Message          string
}

// MockPayments implements PaymentClient for testing
type MockPayments struct {
	Intent     *commerce.PaymentIntent
	RequestErr error

	RequestedPrice int64
	ConfirmCalls   []confirmCall
	ConfirmErr     error
	FailCalls      []failCall
	FailErr        error
}

func (m *MockPayments) Request(_ context.Context, orderID int64, req commerce.PaymentRequest) (*commerce.PaymentIntent, error) {
	m.RequestedPrice = req.PaymentPrice
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	return m.Intent, nil
}

func (m *MockPayments) Confirm(_ context.Context, paymentKey, externalOrderKey string, amount int64) error {
	m.ConfirmCalls = append(m.ConfirmCalls, confirmCall{paymentKey, externalOrderKey, amount})
	return m.ConfirmErr
}

func (m *MockPayments) Fail(_ context.Context, externalOrderKey, code, message string) error {
	m.FailCalls = append(m.FailCalls, failCall{externalOrderKey, code, message})
	return m.FailErr
}

// MockCart implements CartStore for testing
type MockCart struct {
	Removed   [][]int64
	RemoveErr error
	Refreshes int
}

func (m *MockCart) RemovePurchased(_ context.Context, cartItemIDs []int64) error {
	m.Removed = append(m.Removed, cartItemIDs)
	return m.RemoveErr
}

func (m *MockCart) Refresh(_ context.Context) error {
	m.Refreshes++
	return nil
}

// MockPublisher records checkout events
type MockPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (m *MockPublisher) Publish(_ context.Context, ev events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

func (m *MockPublisher) ByType(eventType string) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Event
	for _, ev := range m.Events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
