package domain

import (
	"errors"
	"sort"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

var (
	// ErrInvalidTransition is returned when a status change does not follow the lifecycle.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrInvalidDiscount is returned when a coupon discount is non-positive or exceeds the order total.
	ErrInvalidDiscount = errors.New("invalid coupon discount")
	// ErrMalformedOrder is returned when order input lists disagree in length or content.
	ErrMalformedOrder = errors.New("malformed order request")
)

// transitions enumerates the allowed lifecycle edges. Anything absent is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// Valid reports whether the value is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal indicates whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// OrderItem is a line of an order. Amount snapshots price times quantity at
// order time and does not track later price changes.
type OrderItem struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Order represents a purchase request. Items are owned exclusively by the
// order and are kept sorted by ascending product id; per-product work during
// placement and expiry follows that order so overlapping orders acquire
// product rows in the same sequence.
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	CouponID    *int64      `json:"coupon_id,omitempty"`
	TotalAmount int64       `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Items       []OrderItem `json:"items"`
}

// NewOrder starts a pending order with a zero total.
func NewOrder(userID int64, couponID *int64) *Order {
	now := time.Now().UTC()
	return &Order{
		UserID:    userID,
		CouponID:  couponID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends a line and folds its amount into the total. Items must be
// added in ascending product-id order; out-of-order or duplicate products are
// rejected so the sorted invariant cannot be broken silently.
func (o *Order) AddItem(productID, quantity, amount int64) error {
	if productID <= 0 || quantity <= 0 || amount < 0 {
		return ErrMalformedOrder
	}
	if n := len(o.Items); n > 0 && o.Items[n-1].ProductID >= productID {
		return ErrMalformedOrder
	}
	o.Items = append(o.Items, OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	})
	o.TotalAmount += amount
	return nil
}

// ApplyDiscount subtracts a coupon discount from the total. Discounts that
// are non-positive or would push the total negative are rejected.
func (o *Order) ApplyDiscount(discount int64) error {
	if discount <= 0 || discount > o.TotalAmount {
		return ErrInvalidDiscount
	}
	o.TotalAmount -= discount
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// TransitionTo moves the order along an allowed lifecycle edge.
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.Valid() || !o.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate ensures the order adheres to business constraints.
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return errors.New("user_id must be positive")
	}
	if !o.Status.Valid() {
		return errors.New("unknown order status")
	}
	if len(o.Items) == 0 {
		return errors.New("order requires at least one item")
	}
	var sum int64
	for _, item := range o.Items {
		sum += item.Amount
	}
	if o.TotalAmount < 0 || o.TotalAmount > sum {
		return errors.New("total_amount out of range")
	}
	return nil
}

// SortItemsByProduct orders items by ascending product id in place.
func SortItemsByProduct(items []OrderItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})
}
