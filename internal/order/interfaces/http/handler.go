// Package http exposes the order admin endpoints.
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	"github.com/wyfcoding/shopbackoffice/internal/order/application"
	"github.com/wyfcoding/shopbackoffice/internal/order/domain"
	userdomain "github.com/wyfcoding/shopbackoffice/internal/user/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
	"github.com/wyfcoding/shopbackoffice/pkg/metrics"
	"github.com/wyfcoding/shopbackoffice/pkg/utils"
)

type OrderHandler struct {
	app     *application.OrderApplicationService
	metrics *metrics.Metrics
}

func NewOrderHandler(app *application.OrderApplicationService, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{app: app, metrics: m}
}

// RegisterRoutes mounts the order surface. detailGate guards the order
// detail view and runs before the handler touches any data.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, detailGate gin.HandlerFunc) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.GET("/:id/detail", detailGate, h.OrderDetail)
		orders.POST("/:id/items", h.AddItem)
		orders.PUT("/:id/items", h.ReplaceItems)
		orders.PUT("/:id/items/:item_id", h.UpdateItem)
		orders.DELETE("/:id/items/:item_id", h.RemoveItem)
	}
	router.GET("/order-items", h.ListItems)
	router.GET("/reports/sales", h.SalesSummary)
}

type OrderItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Count     int64 `json:"count" binding:"required"`
}

type CreateOrderRequest struct {
	UserID uint               `json:"user_id" binding:"required"`
	Items  []OrderItemRequest `json:"items" binding:"dive"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.CreateOrderCommand{UserID: req.UserID}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, application.OrderItemSpec{
			ProductID: item.ProductID,
			Count:     item.Count,
		})
	}

	id, err := h.app.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersTotal.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.app.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// OrderDetail renders the full breakdown: labels, per-line subtotals and
// the derived total. Reached only through the permission gate.
func (h *OrderHandler) OrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.app.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	userID, _ := strconv.ParseUint(c.DefaultQuery("user_id", "0"), 10, 32)
	p := utils.NewPagination(page, size, 0)

	orders, total, err := h.app.ListOrders(c.Request.Context(), uint(userID), p.Page, p.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	for i := range orders {
		orders[i].DetailURL = fmt.Sprintf("%s/%d/detail", c.Request.URL.Path, orders[i].ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": utils.NewPagination(p.Page, p.PageSize, total),
	})
}

type UpdateOrderRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.app.UpdateOrder(c.Request.Context(), application.UpdateOrderCommand{
		ID:     id,
		UserID: req.UserID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.app.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemID, err := h.app.AddItem(c.Request.Context(), application.AddItemCommand{
		OrderID:   id,
		ProductID: req.ProductID,
		Count:     req.Count,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": itemID, "order_id": id})
}

type ReplaceItemsRequest struct {
	// An empty list clears the order.
	Items []OrderItemRequest `json:"items" binding:"dive"`
}

func (h *OrderHandler) ReplaceItems(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.ReplaceItemsCommand{OrderID: id}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, application.OrderItemSpec{
			ProductID: item.ProductID,
			Count:     item.Count,
		})
	}

	if err := h.app.ReplaceItems(c.Request.Context(), cmd); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": id})
}

func (h *OrderHandler) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	var req OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.app.UpdateItem(c.Request.Context(), application.UpdateItemCommand{
		OrderID:   id,
		ItemID:    itemID,
		ProductID: req.ProductID,
		Count:     req.Count,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": itemID, "order_id": id})
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	if err := h.app.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": itemID, "order_id": id})
}

func (h *OrderHandler) ListItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := utils.NewPagination(page, size, 0)

	items, total, err := h.app.ListItems(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": utils.NewPagination(p.Page, p.PageSize, total),
	})
}

// SalesSummary reports ledger totals, optionally bounded by from/to query
// params (date or RFC3339; a date-only "to" is inclusive of that day).
func (h *OrderHandler) SalesSummary(c *gin.Context) {
	from, ok := timeParam(c, "from", false)
	if !ok {
		return
	}
	to, ok := timeParam(c, "to", true)
	if !ok {
		return
	}

	summary, err := h.app.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrOrderItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "order request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func timeParam(c *gin.Context, name string, endOfDay bool) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
	return time.Time{}, false
}
