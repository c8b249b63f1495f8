package domain

import "time"

// Order lifecycle: pending -> paid -> fulfilled, or cancelled from pending.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFulfilled = "fulfilled"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Number     string      `gorm:"uniqueIndex;size:64;not null" json:"number"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	Status     string      `gorm:"size:32;not null;default:pending;index:idx_orders_status" json:"status"`
	Total      float64     `gorm:"not null" json:"total"`
	PaymentRef string      `gorm:"size:255" json:"payment_ref,omitempty"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Name      string  `gorm:"size:120;not null" json:"name"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}
