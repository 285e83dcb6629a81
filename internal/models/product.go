package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultVariantOption is used when a product has no color/size differentiation.
const DefaultVariantOption = "Único"

// Product represents a catalog entry
type Product struct {
	ID          int64          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name" validate:"required"`
	Price       *float64       `json:"price,omitempty" db:"price" validate:"omitempty,gt=0"`
	Description *string        `json:"description,omitempty" db:"description"`
	Category    *string        `json:"category,omitempty" db:"category"`
	Quantity    int            `json:"quantity" db:"quantity"`
	Size        *string        `json:"size,omitempty" db:"size"`
	Image       *string        `json:"image,omitempty" db:"image"`
	Images      []string       `json:"images" db:"images"`
	Stock       map[string]int `json:"stock" db:"stock"`
	IsFeatured  *bool          `json:"is_featured,omitempty" db:"is_featured"`
	Color       *string        `json:"color,omitempty" db:"color"`
	Material    *string        `json:"material,omitempty" db:"material"`
	Pattern     *string        `json:"pattern,omitempty" db:"pattern"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`

	// Variants is populated on detail reads; not a column.
	Variants []*ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant represents per-color/size stock for a product
type ProductVariant struct {
	ID            int64  `json:"id" db:"id"`
	ProductID     int64  `json:"product_id" db:"product_id"`
	Color         string `json:"color" db:"color"`
	Size          string `json:"size" db:"size"`
	StockQuantity int    `json:"stock_quantity" db:"stock_quantity"`
}

// NewProduct creates a new product with timestamps
func NewProduct(name string, price float64) *Product {
	now := time.Now()
	return &Product{
		Name:      name,
		Price:     &price,
		Images:    []string{},
		Stock:     map[string]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the product data
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if p.Price != nil && *p.Price <= 0 {
		return fmt.Errorf("product price must be positive")
	}

	if p.Quantity < 0 {
		return fmt.Errorf("product quantity cannot be negative")
	}

	for size, qty := range p.Stock {
		if qty < 0 {
			return fmt.Errorf("stock for size %s cannot be negative", size)
		}
	}

	return nil
}

// TotalStock returns the sum of the stock map quantities
func (p *Product) TotalStock() int {
	total := 0
	for _, qty := range p.Stock {
		total += qty
	}
	return total
}

// AllImages returns the image list, falling back to the single image field.
func (p *Product) AllImages() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Image != nil && *p.Image != "" {
		return []string{*p.Image}
	}
	return nil
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (p *Product) UpdateTimestamp() {
	p.UpdatedAt = time.Now()
}

// NormalizeOption trims a variant option and falls back to the default.
func NormalizeOption(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultVariantOption
	}
	return v
}
