// Package mysql implements the order repository on GORM.
package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/shopbackoffice/internal/order/domain"
)

type orderRepository struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

// Save inserts the order together with any attached line items, or updates
// the user assignment of an existing one.
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == 0 {
		return r.db.WithContext(ctx).Omit("User").Create(order).Error
	}

	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Update("user_id", order.UserID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Product").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, userID uint, offset, limit int) ([]*domain.Order, int64, error) {
	var orders []*domain.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").
		Preload("Items.Product").
		Order("id desc").Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// Delete removes the order and its line items in one transaction. The
// explicit item delete keeps the behavior identical on schemas migrated
// without foreign key support.
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

func (r *orderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	return r.db.WithContext(ctx).Omit("Product", "Order").Create(item).Error
}

func (r *orderRepository) GetItem(ctx context.Context, id uint) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Order.User").
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepository) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	res := r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{"product_id": item.ProductID, "count": item.Count})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}

func (r *orderRepository) DeleteItem(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.OrderItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}

func (r *orderRepository) ReplaceItems(ctx context.Context, orderID uint, items []*domain.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = orderID
			if err := tx.Omit("Product", "Order").Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) ListItems(ctx context.Context, offset, limit int) ([]*domain.OrderItem, int64, error) {
	var items []*domain.OrderItem
	var total int64

	q := r.db.WithContext(ctx).Model(&domain.OrderItem{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Product").
		Preload("Order.User").
		Order("id desc").Offset(offset).Limit(limit).
		Find(&items).Error
	return items, total, err
}

// SalesTotals aggregates the ledger with one grouped query; revenue comes
// from joining line items to the live product prices.
func (r *orderRepository) SalesTotals(ctx context.Context, from, to time.Time) (*domain.SalesTotals, error) {
	q := r.db.WithContext(ctx).
		Table("orders o").
		Select("COUNT(DISTINCT o.id) AS orders, COALESCE(SUM(oi.count), 0) AS items, COALESCE(SUM(oi.count * p.price), 0) AS revenue").
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id")
	if !from.IsZero() {
		q = q.Where("o.created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("o.created_at < ?", to)
	}

	var totals domain.SalesTotals
	if err := q.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}
