package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Order is a customer sales order. TotalAmount always equals the sum of its
// items' subtotals; every non-cancelled order holds a stock reservation for
// each of its items.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	OrderDate     time.Time           `gorm:"column:order_date;not null" json:"order_date"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null" json:"customer_id"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'other'" json:"payment_method"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null;default:0" json:"total_amount"`
	Notes         *string             `gorm:"column:notes" json:"notes,omitempty"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
