package application

import (
	"time"

	"github.com/wyfcoding/shopbackoffice/internal/order/domain"
)

// OrderSummaryDTO is one row of the order list.
type OrderSummaryDTO struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ItemCount int64     `json:"item_count"`
	Total     int64     `json:"total"`
	DetailURL string    `json:"detail_url,omitempty"`
}

// OrderItemDTO is one line item, with its product resolved.
type OrderItemDTO struct {
	ID           uint   `json:"id"`
	OrderID      uint   `json:"order_id"`
	OrderLabel   string `json:"order_label,omitempty"`
	ProductID    uint   `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Label        string `json:"label"`
	Count        int64  `json:"count"`
	UnitPrice    int64  `json:"unit_price"`
	Subtotal     int64  `json:"subtotal"`
}

// OrderDTO is a full order with its line items and derived total.
type OrderDTO struct {
	ID        uint           `json:"id"`
	Label     string         `json:"label"`
	UserID    uint           `json:"user_id"`
	Username  string         `json:"username"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Items     []OrderItemDTO `json:"items"`
	ItemCount int64          `json:"item_count"`
	Total     int64          `json:"total"`
}

// SalesSummaryDTO aggregates the whole ledger for the reporting endpoint.
// Monetary figures are rendered in major units with two decimals.
type SalesSummaryDTO struct {
	Orders            int64  `json:"orders"`
	Items             int64  `json:"items"`
	Revenue           string `json:"revenue"`
	AverageOrderValue string `json:"average_order_value"`
}

func toOrderItemDTO(item *domain.OrderItem) OrderItemDTO {
	dto := OrderItemDTO{
		ID:           item.ID,
		OrderID:      item.OrderID,
		ProductID:    item.ProductID,
		ProductTitle: item.Product.Title,
		Label:        item.Label(),
		Count:        item.Count,
		UnitPrice:    item.Product.Price,
		Subtotal:     item.Subtotal(),
	}
	if item.Order != nil {
		dto.OrderLabel = item.Order.Label()
	}
	return dto
}

func toOrderDTO(order *domain.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:        order.ID,
		Label:     order.Label(),
		UserID:    order.UserID,
		Username:  order.User.Username,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
		ItemCount: order.ItemCount(),
		Total:     order.TotalAmount(),
	}
	for i := range order.Items {
		dto.Items = append(dto.Items, toOrderItemDTO(&order.Items[i]))
	}
	return dto
}

func toOrderSummaryDTO(order *domain.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:        order.ID,
		Label:     order.Label(),
		UserID:    order.UserID,
		Username:  order.User.Username,
		CreatedAt: order.CreatedAt,
		ItemCount: order.ItemCount(),
		Total:     order.TotalAmount(),
	}
}
