package checkout

// Status is the tagged state of one checkout attempt. Compensation decisions
// are pattern-matched on it instead of on ad-hoc nullable fields.
type Status string

const (
	StatusOrderCreated     Status = "ORDER_CREATED"
	StatusCouponLocked     Status = "COUPON_LOCKED"
	StatusPointsApplied    Status = "POINTS_APPLIED"
	StatusPaymentRequested Status = "PAYMENT_REQUESTED"
	StatusAwaitingReturn   Status = "AWAITING_RETURN"
	StatusConfirming       Status = "CONFIRMING"
	StatusCompleted        Status = "COMPLETED"
	StatusCompensating     Status = "COMPENSATING"
	StatusFailed           Status = "FAILED"
)

var transitions = map[Status][]Status{
	StatusOrderCreated:     {StatusCouponLocked, StatusPointsApplied, StatusPaymentRequested, StatusCompensating},
	StatusCouponLocked:     {StatusPointsApplied, StatusPaymentRequested, StatusCompensating},
	StatusPointsApplied:    {StatusPaymentRequested, StatusCompensating},
	StatusPaymentRequested: {StatusAwaitingReturn, StatusCompensating},
	StatusAwaitingReturn:   {StatusConfirming, StatusCompensating},
	StatusConfirming:       {StatusCompleted, StatusCompensating},
	StatusCompensating:     {StatusFailed},
	StatusCompleted:        nil,
	StatusFailed:           nil,
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// pointsRestorable reports whether points were debited in this state and a
// restore is still owed if the attempt fails.
func (s Status) pointsRestorable() bool {
	switch s {
	case StatusPointsApplied, StatusPaymentRequested, StatusAwaitingReturn, StatusConfirming:
		return true
	}
	return false
}

// couponReleasable reports whether a coupon lock is still held in this state.
func (s Status) couponReleasable() bool {
	switch s {
	case StatusCouponLocked, StatusPointsApplied, StatusPaymentRequested, StatusAwaitingReturn, StatusConfirming:
		return true
	}
	return false
}
