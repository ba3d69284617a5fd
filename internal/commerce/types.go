package commerce

import "time"

// CartLine is one product-variant entry in a cart, as returned by the
// backend. CartItemID is the server-assigned key for all mutations.
type CartLine struct {
	CartItemID       int64  `json:"cartItemId"`
	ProductVariantID int64  `json:"productVariantId"`
	ProductID        int64  `json:"productId"`
	Name             string `json:"name"`
	BrandName        string `json:"brandName"`
	ImageURL         string `json:"imageUrl"`
	UnitPrice        int64  `json:"unitPrice"`
	Quantity         int    `json:"quantity"`
	Selected         bool   `json:"isSelected"`
	StockQuantity    int    `json:"stockQuantity"`
	OutOfStock       bool   `json:"isOutOfStock"`
}

type OrderDraftItem struct {
	ProductVariantID int64 `json:"productVariantId"`
	Quantity         int   `json:"qty"`
	UnitPrice        int64 `json:"unitPrice"`
	RegularPrice     int64 `json:"regularPrice"`
}

// OrderDraft is the client-built, unsubmitted order. Immutable once built;
// submitted exactly once per checkout attempt.
type OrderDraft struct {
	DeliveryFee int64            `json:"deliveryFee"`
	Discount    int64            `json:"discount"`
	Items       []OrderDraftItem `json:"items"`
	CustomsInfo *CustomsInfo     `json:"customsInfo,omitempty"`
}

type CustomsInfo struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

type OrderSummary struct {
	ID             int64     `json:"id"`
	OrderDate      time.Time `json:"orderDate"`
	Subtotal       int64     `json:"subtotal"`
	DeliveryFee    int64     `json:"deliveryFee"`
	Discount       int64     `json:"discount"`
	TotalPrice     int64     `json:"totalPrice"`
	OrderStatusKey string    `json:"orderStatusKey"`
}

type OrderDetail struct {
	OrderSummary
	Items []OrderDraftItem `json:"items"`
}

// Coupon is a usable user coupon. Amount >= 1 is a fixed currency discount;
// 0 < Amount < 1 is a fractional-percentage discount.
type Coupon struct {
	UserCouponID int64     `json:"userCouponId"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Combinable   bool      `json:"combinable"`
}

type PointsBalance struct {
	Balance int64 `json:"balance"`
}

type PaymentIntent struct {
	PaymentID        int64  `json:"paymentId"`
	OrderID          int64  `json:"orderId"`
	PaymentPrice     int64  `json:"paymentPrice"`
	PaymentStatusKey string `json:"paymentStatusKey"`
	PaymentMethodKey string `json:"paymentMethodKey"`
	ExternalOrderKey string `json:"externalOrderKey"`
}

// Address carries the recipient fields handed to the payment request.
type Address struct {
	RecipientName  string `json:"recipientName"`
	Phone          string `json:"phone"`
	ZipCode        string `json:"zipCode"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2"`
	DeliveryMemo   string `json:"deliveryMemo,omitempty"`
	CustomsClearID string `json:"customsClearId,omitempty"`
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
