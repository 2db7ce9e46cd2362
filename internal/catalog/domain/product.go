// Package domain holds the product catalog model and its ports.
package domain

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrEmptyTitle           = errors.New("product title is required")
	ErrNegativePrice        = errors.New("product price must not be negative")
	ErrImageNotFound        = errors.New("product image not found")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// Product is a catalog entry. Price is stored in minor currency units so
// order totals stay exact integer arithmetic.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Price     int64     `gorm:"column:price;not null" json:"price"`
	// Image is the storage key of the uploaded asset, empty when none was
	// uploaded yet. Served under /media/{key}.
	Image string `gorm:"column:image;type:varchar(255)" json:"image"`
}

func (Product) TableName() string { return "products" }

func NewProduct(title string, price int64) (*Product, error) {
	p := &Product{Title: title, Price: price}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Label is the display name used in admin listings and order item labels.
func (p *Product) Label() string { return p.Title }
