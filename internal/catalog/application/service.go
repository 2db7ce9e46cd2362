// Package application coordinates catalog use cases over the domain ports.
package application

import (
	"context"
	"io"
	"time"

	"github.com/wyfcoding/shopbackoffice/internal/catalog/domain"
	"github.com/wyfcoding/shopbackoffice/pkg/logger"
)

type CreateProductCommand struct {
	Title string
	Price int64
}

type UpdateProductCommand struct {
	ID    uint
	Title string
	Price int64
}

type CatalogApplicationService struct {
	repo      domain.ProductRepository
	images    domain.ImageStore
	publisher domain.EventPublisher
}

func NewCatalogApplicationService(
	repo domain.ProductRepository,
	images domain.ImageStore,
	publisher domain.EventPublisher,
) *CatalogApplicationService {
	return &CatalogApplicationService{
		repo:      repo,
		images:    images,
		publisher: publisher,
	}
}

func (s *CatalogApplicationService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (uint, error) {
	product, err := domain.NewProduct(cmd.Title, cmd.Price)
	if err != nil {
		return 0, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return 0, err
	}

	event := domain.ProductCreatedEvent{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicProductCreated, product.Title, event); err != nil {
		logger.Warn(ctx, "failed to publish product created event", "product_id", product.ID, "error", err)
	}

	return product.ID, nil
}

func (s *CatalogApplicationService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) error {
	product, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	product.Title = cmd.Title
	product.Price = cmd.Price
	if err := product.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return err
	}

	s.publishUpdated(ctx, product)
	return nil
}

func (s *CatalogApplicationService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogApplicationService) ListProducts(ctx context.Context, page, size int) ([]*domain.Product, int64, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, size)
}

// DeleteProduct removes the product; order items referencing it are removed
// by the database cascade, which in turn lowers the affected order totals.
func (s *CatalogApplicationService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if product.Image != "" {
		if err := s.images.Remove(ctx, product.Image); err != nil {
			logger.Warn(ctx, "failed to remove product image", "key", product.Image, "error", err)
		}
	}

	event := domain.ProductDeletedEvent{
		ProductID: product.ID,
		Title:     product.Title,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicProductDeleted, product.Title, event); err != nil {
		logger.Warn(ctx, "failed to publish product deleted event", "product_id", product.ID, "error", err)
	}

	return nil
}

// UploadImage stores a new image for the product and replaces the previous
// one, returning the new storage key.
func (s *CatalogApplicationService) UploadImage(ctx context.Context, id uint, filename string, r io.Reader) (string, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	key, err := s.images.Save(ctx, filename, r)
	if err != nil {
		return "", err
	}

	previous := product.Image
	product.Image = key
	if err := s.repo.Save(ctx, product); err != nil {
		if rmErr := s.images.Remove(ctx, key); rmErr != nil {
			logger.Warn(ctx, "failed to remove orphaned image", "key", key, "error", rmErr)
		}
		return "", err
	}

	if previous != "" && previous != key {
		if err := s.images.Remove(ctx, previous); err != nil {
			logger.Warn(ctx, "failed to remove replaced image", "key", previous, "error", err)
		}
	}

	s.publishUpdated(ctx, product)
	return key, nil
}

// OpenImage streams a stored image by key for the media route.
func (s *CatalogApplicationService) OpenImage(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.images.Open(ctx, key)
}

func (s *CatalogApplicationService) publishUpdated(ctx context.Context, product *domain.Product) {
	event := domain.ProductUpdatedEvent{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Image:     product.Image,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicProductUpdated, product.Title, event); err != nil {
		logger.Warn(ctx, "failed to publish product updated event", "product_id", product.ID, "error", err)
	}
}
