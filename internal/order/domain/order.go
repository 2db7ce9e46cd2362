// Package domain contains the order aggregate: an order placed by a user
// and the line items that belong to it.
package domain

import (
	"errors"
	"fmt"
	"time"

	catalogdomain "github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	userdomain "github.com/wyfcoding/shopbackoffice/internal/user/domain"
)

var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderItemNotFound is returned when a line item does not exist
	// or belongs to a different order than the one addressed.
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrInvalidCount is returned when a line item count is zero or negative.
	ErrInvalidCount = errors.New("order item count must be positive")
)

// Order is a purchase recorded against a user. Its total is always derived
// from the current line items and product prices, never stored.
type Order struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	UserID    uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	User      userdomain.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName overrides the gorm table name.
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order for the given user.
func NewOrder(userID uint) *Order {
	return &Order{UserID: userID}
}

// TotalAmount sums count x current product price over the loaded line items,
// in minor currency units. Removing a product or an item lowers the total on
// the next read; nothing is cached.
func (o *Order) TotalAmount() int64 {
	var total int64
	for i := range o.Items {
		total += o.Items[i].Subtotal()
	}
	return total
}

// ItemCount sums the quantities over the loaded line items.
func (o *Order) ItemCount() int64 {
	var count int64
	for i := range o.Items {
		count += o.Items[i].Count
	}
	return count
}

// Label renders the order as "username created-date". Requires the User
// association to be loaded.
func (o *Order) Label() string {
	return fmt.Sprintf("%s %s", o.User.Username, o.CreatedAt.Format("2006-01-02"))
}

// OrderItem is one product line inside an order.
type OrderItem struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	OrderID   uint                  `gorm:"column:order_id;not null;index" json:"order_id"`
	Order     *Order                `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ProductID uint                  `gorm:"column:product_id;not null;index" json:"product_id"`
	Product   catalogdomain.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Count     int64                 `gorm:"column:count;not null" json:"count"`
}

// TableName overrides the gorm table name.
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a line item, rejecting non-positive counts.
func NewOrderItem(orderID, productID uint, count int64) (*OrderItem, error) {
	item := &OrderItem{OrderID: orderID, ProductID: productID, Count: count}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the line item invariants.
func (i *OrderItem) Validate() error {
	if i.Count <= 0 {
		return ErrInvalidCount
	}
	return nil
}

// Subtotal is count x current product price in minor currency units.
// Requires the Product association to be loaded.
func (i *OrderItem) Subtotal() int64 {
	return i.Count * i.Product.Price
}

// Label renders the line as "title xN". Requires the Product association
// to be loaded.
func (i *OrderItem) Label() string {
	return fmt.Sprintf("%s x%d", i.Product.Title, i.Count)
}
