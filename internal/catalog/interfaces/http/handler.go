// Package http exposes the catalog admin endpoints.
package http

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/shopbackoffice/internal/catalog/application"
	"github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
	"github.com/wyfcoding/shopbackoffice/pkg/metrics"
	"github.com/wyfcoding/shopbackoffice/pkg/utils"
)

// maxImageSize bounds product image uploads to 10 MiB.
const maxImageSize = 10 << 20

type ProductHandler struct {
	app     *application.CatalogApplicationService
	metrics *metrics.Metrics
}

func NewProductHandler(app *application.CatalogApplicationService, m *metrics.Metrics) *ProductHandler {
	return &ProductHandler{app: app, metrics: m}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/image", h.UploadImage)
	}
}

type CreateProductRequest struct {
	Title string `json:"title" binding:"required"`
	Price *int64 `json:"price" binding:"required"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.app.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Title: req.Title,
		Price: *req.Price,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ProductsTotal.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.app.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := utils.NewPagination(page, size, 0)

	products, total, err := h.app.ListProducts(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": utils.NewPagination(p.Page, p.PageSize, total),
	})
}

type UpdateProductRequest struct {
	Title string `json:"title" binding:"required"`
	Price *int64 `json:"price" binding:"required"`
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.app.UpdateProduct(c.Request.Context(), application.UpdateProductCommand{
		ID:    id,
		Title: req.Title,
		Price: *req.Price,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.app.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds maximum size"})
		return
	}

	key, err := h.app.UploadImage(c.Request.Context(), id, header.Filename, file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ImageUploadsTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "image": key, "url": "/media/" + key})
}

// ServeImage streams a stored product image. Registered on the root router
// so image URLs work without admin credentials.
func (h *ProductHandler) ServeImage(c *gin.Context) {
	key := c.Param("key")

	rc, err := h.app.OpenImage(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *ProductHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "catalog request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
