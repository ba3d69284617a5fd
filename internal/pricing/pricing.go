// Package pricing holds the storefront's order-total arithmetic. The backend
// recomputes all of this authoritatively at order creation; these values are
// the preview shown before submission and the inputs to the payment request.
package pricing

import "math"

const (
	// MinOrderAmount is the subtotal floor for free delivery and for
	// applying any coupon or point discount.
	MinOrderAmount int64 = 50000

	// BaseDeliveryFee is charged below the free-delivery threshold.
	BaseDeliveryFee int64 = 2500
)

// CouponDiscount resolves a coupon amount against a subtotal. An amount >= 1
// is a fixed currency discount; 0 < amount < 1 is a fractional-percentage
// discount, floored.
func CouponDiscount(subtotal int64, amount float64) int64 {
	switch {
	case amount <= 0:
		return 0
	case amount >= 1:
		return int64(amount)
	default:
		return int64(math.Floor(float64(subtotal) * amount))
	}
}

func DeliveryFee(subtotal int64) int64 {
	if subtotal >= MinOrderAmount {
		return 0
	}
	return BaseDeliveryFee
}

// MaxUsablePoints caps point usage at what remains payable after the coupon,
// never exceeding the available balance.
func MaxUsablePoints(balance, subtotal, deliveryFee, couponDiscount int64) int64 {
	payable := subtotal + deliveryFee - couponDiscount
	if payable < 0 {
		payable = 0
	}
	if balance < payable {
		return balance
	}
	return payable
}

// ClampPoints re-clamps a requested point amount into the valid range; used
// whenever the coupon selection changes.
func ClampPoints(requested, balance, subtotal, deliveryFee, couponDiscount int64) int64 {
	if requested < 0 {
		return 0
	}
	if limit := MaxUsablePoints(balance, subtotal, deliveryFee, couponDiscount); requested > limit {
		return limit
	}
	return requested
}

// OrderTotal is never negative regardless of the discounts applied.
func OrderTotal(subtotal, deliveryFee, couponDiscount, points int64) int64 {
	total := subtotal + deliveryFee - couponDiscount - points
	if total < 0 {
		return 0
	}
	return total
}
