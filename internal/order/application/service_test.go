package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	"github.com/wyfcoding/shopbackoffice/internal/order/domain"
	userdomain "github.com/wyfcoding/shopbackoffice/internal/user/domain"
)

// fakeStore backs the repository fakes with one in-memory dataset so the
// order repository can hydrate items the way the real preloads do.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uint]*userdomain.User
	products map[uint]*catalogdomain.Product
	orders   map[uint]*domain.Order
	items    map[uint]*domain.OrderItem
	nextID   uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uint]*userdomain.User),
		products: make(map[uint]*catalogdomain.Product),
		orders:   make(map[uint]*domain.Order),
		items:    make(map[uint]*domain.OrderItem),
	}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addUser(username string) *userdomain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &userdomain.User{ID: s.id(), Username: username}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addProduct(title string, price int64) *catalogdomain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &catalogdomain.Product{ID: s.id(), Title: title, Price: price}
	s.products[p.ID] = p
	return p
}

func (s *fakeStore) setPrice(productID uint, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productID].Price = price
}

// removeProduct mimics the foreign key cascade: referencing items go too.
func (s *fakeStore) removeProduct(productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, productID)
	for id, item := range s.items {
		if item.ProductID == productID {
			delete(s.items, id)
		}
	}
}

// removeUser mimics the foreign key chain: the user's orders go, and each
// order's items go with it.
func (s *fakeStore) removeUser(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	for orderID, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		delete(s.orders, orderID)
		for itemID, item := range s.items {
			if item.OrderID == orderID {
				delete(s.items, itemID)
			}
		}
	}
}

// hydrate resolves the product and order associations of a stored item.
func (s *fakeStore) hydrate(item *domain.OrderItem) *domain.OrderItem {
	out := *item
	if p, ok := s.products[item.ProductID]; ok {
		out.Product = *p
	}
	return &out
}

type fakeOrderRepo struct{ store *fakeStore }

func (r *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.id()
		order.CreatedAt = time.Now()
		for i := range order.Items {
			item := order.Items[i]
			item.ID = s.id()
			item.OrderID = order.ID
			s.items[item.ID] = &item
		}
	}
	stored := *order
	stored.Items = nil
	s.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	order := *stored
	if u, ok := s.users[order.UserID]; ok {
		order.User = *u
	}
	for _, item := range s.items {
		if item.OrderID == id {
			order.Items = append(order.Items, *s.hydrate(item))
		}
	}
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ID < order.Items[j].ID })
	return &order, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, userID uint, offset, limit int) ([]*domain.Order, int64, error) {
	s := r.store
	s.mu.Lock()
	ids := make([]uint, 0, len(s.orders))
	for id, o := range s.orders {
		if userID == 0 || o.UserID == userID {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var orders []*domain.Order
	for _, id := range ids {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, int64(len(orders)), nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	for itemID, item := range s.items {
		if item.OrderID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (r *fakeOrderRepo) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.id()
	stored := *item
	s.items[item.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetItem(ctx context.Context, id uint) (*domain.OrderItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrOrderItemNotFound
	}
	return s.hydrate(item), nil
}

func (r *fakeOrderRepo) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.ID]
	if !ok {
		return domain.ErrOrderItemNotFound
	}
	stored.ProductID = item.ProductID
	stored.Count = item.Count
	return nil
}

func (r *fakeOrderRepo) DeleteItem(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrOrderItemNotFound
	}
	delete(s.items, id)
	return nil
}

func (r *fakeOrderRepo) ReplaceItems(ctx context.Context, orderID uint, items []*domain.OrderItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if item.OrderID == orderID {
			delete(s.items, id)
		}
	}
	for _, item := range items {
		item.ID = s.id()
		item.OrderID = orderID
		stored := *item
		s.items[item.ID] = &stored
	}
	return nil
}

func (r *fakeOrderRepo) ListItems(ctx context.Context, offset, limit int) ([]*domain.OrderItem, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*domain.OrderItem
	for _, item := range s.items {
		items = append(items, s.hydrate(item))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, int64(len(items)), nil
}

func (r *fakeOrderRepo) SalesTotals(ctx context.Context, from, to time.Time) (*domain.SalesTotals, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := &domain.SalesTotals{}
	for id, order := range s.orders {
		if !from.IsZero() && order.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !order.CreatedAt.Before(to) {
			continue
		}
		totals.Orders++
		for _, item := range s.items {
			if item.OrderID != id {
				continue
			}
			totals.Items += item.Count
			if p, ok := s.products[item.ProductID]; ok {
				totals.Revenue += item.Count * p.Price
			}
		}
	}
	return totals, nil
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Save(ctx context.Context, user *userdomain.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*userdomain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*userdomain.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error { return nil }

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) Save(ctx context.Context, product *catalogdomain.Product) error {
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(ctx context.Context, offset, limit int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uint) error { return nil }

type recordedEvent struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

func newTestService(store *fakeStore) (*OrderApplicationService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	svc := NewOrderApplicationService(
		&fakeOrderRepo{store: store},
		&fakeUserRepo{store: store},
		&fakeProductRepo{store: store},
		publisher,
	)
	return svc, publisher
}

func TestCreateOrderComputesTotal(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	sticker := store.addProduct("Sticker", 20)
	svc, publisher := newTestService(store)

	id, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		UserID: user.ID,
		Items: []OrderItemSpec{
			{ProductID: mug.ID, Count: 2},
			{ProductID: sticker.ID, Count: 5},
		},
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), order.Total)
	assert.Equal(t, int64(7), order.ItemCount)
	assert.Equal(t, "alice", order.Username)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "Mug x2", order.Items[0].Label)
	assert.Equal(t, int64(200), order.Items[0].Subtotal)

	assert.Equal(t, []string{domain.TopicOrderCreated}, publisher.topics())
}

func TestCreateOrderRejectsBadReferences(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	widget := store.addProduct("Widget", 500)
	svc, _ := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderCommand{UserID: 999})
	assert.ErrorIs(t, err, userdomain.ErrUserNotFound)

	_, err = svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: 999, Count: 1}},
	})
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)

	_, err = svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: widget.ID, Count: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCount)
}

// The total is recomputed from current catalog prices on every read, so a
// later price edit changes what a historical order reports.
func TestOrderTotalIsLive(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	widget := store.addProduct("Widget", 500)
	svc, _ := newTestService(store)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: widget.ID, Count: 3}},
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), order.Total)

	store.setPrice(widget.ID, 400)

	order, err = svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), order.Total)
}

func TestDeletedProductDropsOutOfTotals(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	sticker := store.addProduct("Sticker", 20)
	svc, _ := newTestService(store)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items: []OrderItemSpec{
			{ProductID: mug.ID, Count: 2},
			{ProductID: sticker.ID, Count: 5},
		},
	})
	require.NoError(t, err)

	store.removeProduct(sticker.ID)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(200), order.Total)
	assert.Len(t, order.Items, 1)
}

// Deleting a user cascades through their orders down to the line items;
// other users' orders and the catalog are untouched.
func TestDeletedUserTakesOrdersAndItemsAlong(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	mug := store.addProduct("Mug", 100)
	svc, _ := newTestService(store)
	ctx := context.Background()

	aliceOrder, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: alice.ID,
		Items:  []OrderItemSpec{{ProductID: mug.ID, Count: 2}},
	})
	require.NoError(t, err)
	bobOrder, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: bob.ID,
		Items:  []OrderItemSpec{{ProductID: mug.ID, Count: 1}},
	})
	require.NoError(t, err)

	store.removeUser(alice.ID)

	_, err = svc.GetOrder(ctx, aliceOrder)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// Only bob's line item survives.
	items, total, err := svc.ListItems(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, bobOrder, items[0].OrderID)

	order, err := svc.GetOrder(ctx, bobOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.Total)

	// Products survive the cascade.
	_, err = (&fakeProductRepo{store: store}).GetByID(ctx, mug.ID)
	assert.NoError(t, err)
}

func TestItemEditing(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	sticker := store.addProduct("Sticker", 20)
	svc, publisher := newTestService(store)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, CreateOrderCommand{UserID: user.ID})
	require.NoError(t, err)

	itemID, err := svc.AddItem(ctx, AddItemCommand{OrderID: id, ProductID: mug.ID, Count: 2})
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(200), order.Total)

	err = svc.UpdateItem(ctx, UpdateItemCommand{OrderID: id, ItemID: itemID, ProductID: sticker.ID, Count: 5})
	require.NoError(t, err)

	order, err = svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.Total)

	// Addressing the item through some other order is a not found.
	err = svc.UpdateItem(ctx, UpdateItemCommand{OrderID: id + 1, ItemID: itemID, ProductID: sticker.ID, Count: 1})
	assert.ErrorIs(t, err, domain.ErrOrderItemNotFound)
	err = svc.RemoveItem(ctx, id+1, itemID)
	assert.ErrorIs(t, err, domain.ErrOrderItemNotFound)

	err = svc.RemoveItem(ctx, id, itemID)
	require.NoError(t, err)

	order, err = svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.Total)
	assert.Empty(t, order.Items)

	topics := publisher.topics()
	assert.Equal(t, domain.TopicOrderCreated, topics[0])
	for _, topic := range topics[1:] {
		assert.Equal(t, domain.TopicOrderUpdated, topic)
	}
}

func TestReplaceItems(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	sticker := store.addProduct("Sticker", 20)
	svc, _ := newTestService(store)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: mug.ID, Count: 1}},
	})
	require.NoError(t, err)

	err = svc.ReplaceItems(ctx, ReplaceItemsCommand{
		OrderID: id,
		Items: []OrderItemSpec{
			{ProductID: sticker.ID, Count: 5},
			{ProductID: mug.ID, Count: 2},
		},
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), order.Total)
	assert.Len(t, order.Items, 2)

	// An empty submission clears the order.
	err = svc.ReplaceItems(ctx, ReplaceItemsCommand{OrderID: id})
	require.NoError(t, err)

	order, err = svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.Equal(t, int64(0), order.Total)
}

func TestDeleteOrder(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	svc, publisher := newTestService(store)
	ctx := context.Background()

	id, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: mug.ID, Count: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, id))

	_, err = svc.GetOrder(ctx, id)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Contains(t, publisher.topics(), domain.TopicOrderDeleted)

	// The product it referenced is untouched.
	_, err = (&fakeProductRepo{store: store}).GetByID(ctx, mug.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, id), domain.ErrOrderNotFound)
}

func TestSalesSummary(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	mug := store.addProduct("Mug", 100)
	sticker := store.addProduct("Sticker", 20)
	svc, _ := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: mug.ID, Count: 2}},
	})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, CreateOrderCommand{
		UserID: user.ID,
		Items:  []OrderItemSpec{{ProductID: sticker.ID, Count: 5}},
	})
	require.NoError(t, err)

	summary, err := svc.SalesSummary(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Orders)
	assert.Equal(t, int64(7), summary.Items)
	assert.Equal(t, "3.00", summary.Revenue)
	assert.Equal(t, "1.50", summary.AverageOrderValue)
}

func TestSalesSummaryEmptyWindow(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	summary, err := svc.SalesSummary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Orders)
	assert.Equal(t, "0.00", summary.Revenue)
	assert.Equal(t, "0.00", summary.AverageOrderValue)
}
