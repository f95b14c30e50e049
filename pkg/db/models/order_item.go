package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one product line on an order. Subtotal = Quantity * UnitPrice.
// Items live and die with their parent order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null" json:"subtotal"`
}
