package checkout

import "errors"

var (
	ErrNoItemsSelected   = errors.New("no cart items selected, nothing to checkout")
	ErrNoAddress         = errors.New("delivery address not selected")
	ErrBelowMinimumOrder = errors.New("coupon and point discounts require the minimum order amount")
	ErrPointsExceedLimit = errors.New("points exceed the usable limit")
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
	ErrAttemptNotFound   = errors.New("checkout attempt not found")
	ErrAmountMismatch    = errors.New("returned amount does not match the checkout attempt")
	ErrOrderMismatch     = errors.New("backend order does not match the checkout attempt")
)
