package repositories

import (
	"context"

	"store-backend-api/internal/models"
)

// ProfileRepository defines operations on user profiles
type ProfileRepository interface {
	// Create creates a new profile
	Create(ctx context.Context, profile *models.Profile) error

	// GetByID retrieves a profile by its ID
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// GetRole retrieves only the role of a profile
	GetRole(ctx context.Context, id string) (models.Role, error)

	// List retrieves profiles with filters, pagination and ordering,
	// returning the page of rows and the total filtered count
	List(ctx context.Context, filters *ProfileFilters) ([]*models.Profile, int64, error)

	// Update applies the provided non-nil fields to a profile
	Update(ctx context.Context, id string, email *string, role *models.Role) (*models.Profile, error)

	// Delete removes a profile by ID
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines operations on the product catalog
type ProductRepository interface {
	// Create creates a new product and assigns its ID
	Create(ctx context.Context, product *models.Product) error

	// GetByID retrieves a product by ID (without variants)
	GetByID(ctx context.Context, id int64) (*models.Product, error)

	// List retrieves products with filters, pagination and ordering,
	// returning the page of rows and the total filtered count
	List(ctx context.Context, filters *ProductFilters) ([]*models.Product, int64, error)

	// ListAll retrieves every product, newest first (CSV export)
	ListAll(ctx context.Context) ([]*models.Product, error)

	// Update persists the product fields
	Update(ctx context.Context, product *models.Product) error

	// Delete removes a product by ID
	Delete(ctx context.Context, id int64) error

	// GetVariants retrieves all variants for a product
	GetVariants(ctx context.Context, productID int64) ([]*models.ProductVariant, error)

	// GetVariant retrieves one variant by product, color and size
	GetVariant(ctx context.Context, productID int64, color, size string) (*models.ProductVariant, error)

	// ReplaceVariants deletes and re-inserts the variants of a product
	ReplaceVariants(ctx context.Context, productID int64, variants []*models.ProductVariant) error

	// UpdateVariantStock sets the stock quantity of a variant
	UpdateVariantStock(ctx context.Context, variantID int64, quantity int) error

	// SumVariantStock returns the total stock across a product's variants
	SumVariantStock(ctx context.Context, productID int64) (int, error)

	// SetQuantity sets the denormalized total quantity of a product
	SetQuantity(ctx context.Context, productID int64, quantity int) error

	// SetStockMap persists the legacy per-size stock map and total quantity
	SetStockMap(ctx context.Context, productID int64, stock map[string]int, quantity int) error

	// ImageRefs returns every image path referenced by any product
	ImageRefs(ctx context.Context) ([]string, error)
}

// OrderRepository defines operations on orders and their items
type OrderRepository interface {
	// Create inserts the order and its items in one transaction
	Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error

	// GetByID retrieves an order. A non-empty userID restricts the lookup
	// to orders owned by that user.
	GetByID(ctx context.Context, orderID, userID string) (*models.Order, error)

	// GetWithItems retrieves an order and populates its items
	GetWithItems(ctx context.Context, orderID, userID string) (*models.Order, error)

	// ListByUser retrieves a user's orders newest first with the total count
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Order, int64, error)

	// ListAll retrieves all orders newest first with the owner's email joined in
	ListAll(ctx context.Context, page, limit int) ([]*models.Order, int64, error)

	// GetItemsByIDs retrieves order items by ID, scoped to one order
	GetItemsByIDs(ctx context.Context, orderID string, itemIDs []string) ([]*models.OrderItem, error)

	// UpdateStatus sets the order status and bumps updated_at
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)

	// Delete removes an order; items and refunds cascade, vouchers are unlinked
	Delete(ctx context.Context, orderID string) error

	// GetByMelhorEnvioID retrieves an order by its carrier order ID
	GetByMelhorEnvioID(ctx context.Context, meOrderID string) (*models.Order, error)

	// SetMelhorEnvioOrderID stores the carrier order ID on the order
	SetMelhorEnvioOrderID(ctx context.Context, orderID, meOrderID string) error

	// UpdateTracking stores the tracking code and optionally a new status
	UpdateTracking(ctx context.Context, orderID, trackingCode string, status *models.OrderStatus) error
}

// VoucherRepository defines operations on vouchers
type VoucherRepository interface {
	// Create inserts a voucher
	Create(ctx context.Context, voucher *models.Voucher) error

	// GetByCode retrieves a voucher by its code
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)

	// GetByOrderID retrieves vouchers linked to an order
	GetByOrderID(ctx context.Context, orderID string) ([]*models.Voucher, error)
}

// RefundRepository defines operations on order refund requests
type RefundRepository interface {
	// Create inserts a refund request
	Create(ctx context.Context, refund *models.OrderRefund) error

	// GetByID retrieves a refund request by ID
	GetByID(ctx context.Context, id string) (*models.OrderRefund, error)

	// ListByOrder retrieves refund requests for an order, newest first
	ListByOrder(ctx context.Context, orderID string) ([]*models.OrderRefund, error)

	// Update persists the refund request's mutable fields
	Update(ctx context.Context, refund *models.OrderRefund) error
}

// RepositoryContainer bundles all repositories for dependency injection
type RepositoryContainer struct {
	ProfileRepo ProfileRepository
	ProductRepo ProductRepository
	OrderRepo   OrderRepository
	VoucherRepo VoucherRepository
	RefundRepo  RefundRepository
}
