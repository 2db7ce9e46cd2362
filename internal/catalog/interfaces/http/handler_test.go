package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/shopbackoffice/internal/catalog/application"
	"github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[uint]*domain.Product
	nextID   uint
}

func (r *memProductRepo) Save(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (r *memProductRepo) List(ctx context.Context, offset, limit int) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var products []*domain.Product
	for _, p := range r.products {
		out := *p
		products = append(products, &out)
	}
	return products, int64(len(products)), nil
}

func (r *memProductRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

type memImageStore struct {
	mu     sync.Mutex
	images map[string][]byte
	nextID int
}

func (s *memImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".png") &&
		!strings.HasSuffix(strings.ToLower(filename), ".jpg") {
		return "", domain.ErrUnsupportedImageType
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	key := fmt.Sprintf("img-%d.png", s.nextID)
	s.images[key] = data
	return key, nil
}

func (s *memImageStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.images[key]
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memImageStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
	return nil
}

type quietPublisher struct{}

func (quietPublisher) Publish(ctx context.Context, topic, key string, event any) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memProductRepo{products: make(map[uint]*domain.Product)}
	images := &memImageStore{images: make(map[string][]byte)}
	svc := application.NewCatalogApplicationService(repo, images, quietPublisher{})
	handler := NewProductHandler(svc, nil)

	router := gin.New()
	router.GET("/media/:key", handler.ServeImage)
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProductCRUD(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Widget","price":500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodGet, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, "Widget", product.Title)
	assert.Equal(t, int64(500), product.Price)

	rec = doJSON(router, http.MethodPut, "/api/v1/products/1", `{"title":"Widget","price":400}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/products/1", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, int64(400), product.Price)

	rec = doJSON(router, http.MethodDelete, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	// A zero price is valid and must pass the required binding.
	rec := doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Flyer","price":0}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodPost, "/api/v1/products", `{"price":500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Widget"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Widget","price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must not be negative")
}

func TestUploadAndServeImage(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Widget","price":500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/1/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var uploaded struct {
		Image string `json:"image"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &uploaded))
	assert.Equal(t, "/media/"+uploaded.Image, uploaded.URL)

	rec = doJSON(router, http.MethodGet, uploaded.URL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestServeImageNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/media/missing.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImageRequiresFile(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/v1/products", `{"title":"Widget","price":500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/products/1/image", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
