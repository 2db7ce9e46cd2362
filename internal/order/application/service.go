// Package application coordinates order use cases over the domain ports.
package application

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	"github.com/wyfcoding/shopbackoffice/internal/order/domain"
	userdomain "github.com/wyfcoding/shopbackoffice/internal/user/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
)

// minorUnitsPerMajor converts stored prices to display currency.
var minorUnitsPerMajor = decimal.NewFromInt(100)

// OrderItemSpec describes one requested line: a product and a quantity.
type OrderItemSpec struct {
	ProductID uint
	Count     int64
}

type CreateOrderCommand struct {
	UserID uint
	Items  []OrderItemSpec
}

type UpdateOrderCommand struct {
	ID     uint
	UserID uint
}

type AddItemCommand struct {
	OrderID   uint
	ProductID uint
	Count     int64
}

type UpdateItemCommand struct {
	OrderID   uint
	ItemID    uint
	ProductID uint
	Count     int64
}

type ReplaceItemsCommand struct {
	OrderID uint
	Items   []OrderItemSpec
}

// OrderApplicationService wires the order repository with the user and
// product lookups needed to validate references before writing.
type OrderApplicationService struct {
	repo      domain.OrderRepository
	users     userdomain.UserRepository
	products  catalogdomain.ProductRepository
	publisher domain.EventPublisher
}

func NewOrderApplicationService(
	repo domain.OrderRepository,
	users userdomain.UserRepository,
	products catalogdomain.ProductRepository,
	publisher domain.EventPublisher,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:      repo,
		users:     users,
		products:  products,
		publisher: publisher,
	}
}

func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (uint, error) {
	if _, err := s.users.GetByID(ctx, cmd.UserID); err != nil {
		return 0, err
	}

	order := domain.NewOrder(cmd.UserID)
	var total int64
	for _, spec := range cmd.Items {
		product, err := s.products.GetByID(ctx, spec.ProductID)
		if err != nil {
			return 0, err
		}
		item, err := domain.NewOrderItem(0, spec.ProductID, spec.Count)
		if err != nil {
			return 0, err
		}
		total += spec.Count * product.Price
		order.Items = append(order.Items, *item)
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return 0, err
	}

	event := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		ItemCount: order.ItemCount(),
		Total:     total,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicOrderCreated, orderKey(order.ID), event); err != nil {
		logger.Warn(ctx, "failed to publish order created event", "order_id", order.ID, "error", err)
	}

	return order.ID, nil
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, id uint) (*OrderDTO, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// ListOrders returns summary rows newest first; userID zero lists all users.
func (s *OrderApplicationService) ListOrders(ctx context.Context, userID uint, page, size int) ([]OrderSummaryDTO, int64, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}

	orders, total, err := s.repo.List(ctx, userID, offset, size)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]OrderSummaryDTO, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, toOrderSummaryDTO(order))
	}
	return summaries, total, nil
}

// UpdateOrder reassigns the order to another user.
func (s *OrderApplicationService) UpdateOrder(ctx context.Context, cmd UpdateOrderCommand) error {
	order, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, cmd.UserID); err != nil {
		return err
	}

	order.UserID = cmd.UserID
	if err := s.repo.Save(ctx, order); err != nil {
		return err
	}

	event := domain.OrderUpdatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		ItemCount: order.ItemCount(),
		Total:     order.TotalAmount(),
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicOrderUpdated, orderKey(order.ID), event); err != nil {
		logger.Warn(ctx, "failed to publish order updated event", "order_id", order.ID, "error", err)
	}
	return nil
}

func (s *OrderApplicationService) DeleteOrder(ctx context.Context, id uint) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event := domain.OrderDeletedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicOrderDeleted, orderKey(order.ID), event); err != nil {
		logger.Warn(ctx, "failed to publish order deleted event", "order_id", order.ID, "error", err)
	}
	return nil
}

// AddItem appends a line to an existing order and returns the new item id.
func (s *OrderApplicationService) AddItem(ctx context.Context, cmd AddItemCommand) (uint, error) {
	if _, err := s.repo.GetByID(ctx, cmd.OrderID); err != nil {
		return 0, err
	}
	if _, err := s.products.GetByID(ctx, cmd.ProductID); err != nil {
		return 0, err
	}

	item, err := domain.NewOrderItem(cmd.OrderID, cmd.ProductID, cmd.Count)
	if err != nil {
		return 0, err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return 0, err
	}

	s.publishOrderUpdated(ctx, cmd.OrderID)
	return item.ID, nil
}

// UpdateItem edits one line of an order in place.
func (s *OrderApplicationService) UpdateItem(ctx context.Context, cmd UpdateItemCommand) error {
	item, err := s.repo.GetItem(ctx, cmd.ItemID)
	if err != nil {
		return err
	}
	if item.OrderID != cmd.OrderID {
		return domain.ErrOrderItemNotFound
	}

	if cmd.ProductID != item.ProductID {
		if _, err := s.products.GetByID(ctx, cmd.ProductID); err != nil {
			return err
		}
		item.ProductID = cmd.ProductID
	}
	item.Count = cmd.Count
	if err := item.Validate(); err != nil {
		return err
	}

	if err := s.repo.SaveItem(ctx, item); err != nil {
		return err
	}

	s.publishOrderUpdated(ctx, cmd.OrderID)
	return nil
}

// RemoveItem deletes one line; the order total drops on the next read.
func (s *OrderApplicationService) RemoveItem(ctx context.Context, orderID, itemID uint) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OrderID != orderID {
		return domain.ErrOrderItemNotFound
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.publishOrderUpdated(ctx, orderID)
	return nil
}

// ReplaceItems swaps the order's lines wholesale, the way an admin inline
// form submits the whole set at once.
func (s *OrderApplicationService) ReplaceItems(ctx context.Context, cmd ReplaceItemsCommand) error {
	if _, err := s.repo.GetByID(ctx, cmd.OrderID); err != nil {
		return err
	}

	items := make([]*domain.OrderItem, 0, len(cmd.Items))
	for _, spec := range cmd.Items {
		if _, err := s.products.GetByID(ctx, spec.ProductID); err != nil {
			return err
		}
		item, err := domain.NewOrderItem(cmd.OrderID, spec.ProductID, spec.Count)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	if err := s.repo.ReplaceItems(ctx, cmd.OrderID, items); err != nil {
		return err
	}

	s.publishOrderUpdated(ctx, cmd.OrderID)
	return nil
}

// ListItems returns line items across all orders, newest first.
func (s *OrderApplicationService) ListItems(ctx context.Context, page, size int) ([]OrderItemDTO, int64, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.ListItems(ctx, offset, size)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]OrderItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toOrderItemDTO(item))
	}
	return dtos, total, nil
}

// SalesSummary aggregates the ledger, optionally bounded to a created-at
// window, and renders the money figures in major units.
func (s *OrderApplicationService) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummaryDTO, error) {
	totals, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	revenue := decimal.NewFromInt(totals.Revenue).Div(minorUnitsPerMajor)
	summary := &SalesSummaryDTO{
		Orders:            totals.Orders,
		Items:             totals.Items,
		Revenue:           revenue.StringFixed(2),
		AverageOrderValue: "0.00",
	}
	if totals.Orders > 0 {
		summary.AverageOrderValue = revenue.Div(decimal.NewFromInt(totals.Orders)).StringFixed(2)
	}
	return summary, nil
}

func (s *OrderApplicationService) publishOrderUpdated(ctx context.Context, orderID uint) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		logger.Warn(ctx, "failed to load order for updated event", "order_id", orderID, "error", err)
		return
	}

	event := domain.OrderUpdatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		ItemCount: order.ItemCount(),
		Total:     order.TotalAmount(),
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicOrderUpdated, orderKey(order.ID), event); err != nil {
		logger.Warn(ctx, "failed to publish order updated event", "order_id", order.ID, "error", err)
	}
}

func orderKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
