package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts render as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus is an order's lifecycle state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// DefaultCurrency is used when an order is created without one.
const DefaultCurrency = "USD"

// ParseOrderStatus accepts the three known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderCompleted, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("models: unknown order status %q", s)
}

// Order is a purchase owned by one user.
type Order struct {
	ID          uint            `gorm:"primaryKey"                                   json:"id"`
	OrderNumber string          `gorm:"size:12;not null;index"                       json:"orderNumber"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"                  json:"amount"`
	Currency    string          `gorm:"size:3;not null;default:USD"                  json:"currency"`
	Item        string          `gorm:"size:255;not null"                            json:"item"`
	Status      OrderStatus     `gorm:"size:20;not null;default:PENDING;index"       json:"status"`
	UserID      uint            `gorm:"not null;index"                               json:"userId"`
	User        *User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewOrder builds a pending order for userID with a fresh order number.
func NewOrder(userID uint, amount decimal.Decimal, currency, item string) *Order {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Order{
		OrderNumber: NewOrderNumber(),
		Amount:      amount.Round(2),
		Currency:    currency,
		Item:        item,
		Status:      OrderPending,
		UserID:      userID,
	}
}

// NewOrderNumber returns "ORD-" followed by 8 lowercase hex characters
// taken from a random UUID. Numbers are not guaranteed unique.
func NewOrderNumber() string {
	return "ORD-" + uuid.NewString()[:8]
}
