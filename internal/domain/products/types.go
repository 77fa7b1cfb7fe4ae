package products

import (
	"time"

	"atelier/internal/catalog"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Node converts the row into the shape the hierarchy resolver works on.
func (c *Category) Node() catalog.Node {
	return catalog.Node{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID, ImageURL: c.ImageURL}
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductVariant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Spec strips the row down to its size/colour combination.
func (v *ProductVariant) Spec() catalog.VariantSpec {
	return catalog.VariantSpec{Size: v.Size, Color: v.Color, Stock: v.Stock}
}

type ProductImage struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Lightweight “card” for lists
type ProductCard struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Price           decimal.Decimal `json:"price"`
	CategoryID      int64           `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	CategorySlug    string          `json:"category_slug"`
	PrimaryImageURL *string         `json:"primary_image_url,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

type AdminProductCard struct {
	ProductCard
	VariantsCount int `json:"variants_count"`
	ImagesCount   int `json:"images_count"`
}

type ProductDetail struct {
	Product  *Product          `json:"product"`
	Category *Category         `json:"category,omitempty"`
	Variants []*ProductVariant `json:"variants"`
	Images   []*ProductImage   `json:"images"`
}

// Sort orders accepted by ListProductCards.
const (
	SortNewest    = "new"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductFilter narrows a product listing. CategoryIDs only applies when
// Restricted is set; a restricted filter with no ids matches nothing.
type ProductFilter struct {
	CategoryIDs []int64
	Restricted  bool
	ActiveOnly  bool
	Sort        string
	Limit       int
	Offset      int
}

// SaveProductInput is the full admin form for a product. ID 0 creates.
// Variants and ImageURLs replace whatever the product had before.
type SaveProductInput struct {
	ID          int64
	Name        string
	Slug        string
	Description *string
	Price       decimal.Decimal
	CategoryID  int64
	IsActive    bool
	Variants    []catalog.VariantSpec
	ImageURLs   []string
}

type SaveResult struct {
	Product  *Product          `json:"product"`
	Variants []*ProductVariant `json:"variants"`
	Images   []*ProductImage   `json:"images"`
	// RemovedImageURLs were attached before the save and are no longer used.
	RemovedImageURLs []string `json:"-"`
}
