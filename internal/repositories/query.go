package repositories

import "store-backend-api/internal/models"

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Profile sort options
const (
	ProfileSortNewest   = "newest"
	ProfileSortRoleAsc  = "role_asc"
	ProfileSortRoleDesc = "role_desc"
)

// Product sort options
const (
	ProductSortNewest  = "newest"
	ProductSortOldest  = "oldest"
	ProductSortQtyAsc  = "qty_asc"
	ProductSortQtyDesc = "qty_desc"
)

// ProfileFilters holds listing filters for profiles
type ProfileFilters struct {
	Page  int
	Limit int
	Email string       // partial, case-insensitive
	Role  *models.Role // exact
	Sort  string       // newest | role_asc | role_desc
}

// ProductFilters holds listing filters for products
type ProductFilters struct {
	Page     int
	Limit    int
	Name     string // partial, case-insensitive
	Category string
	MinPrice *float64
	MaxPrice *float64
	Size     string // only products with stock for this size
	Sort     string // newest | oldest | qty_asc | qty_desc
}

// Normalize clamps page and limit to sane bounds.
func (f *ProfileFilters) Normalize() {
	f.Page, f.Limit = clampPage(f.Page, f.Limit)
}

// Normalize clamps page and limit to sane bounds.
func (f *ProductFilters) Normalize() {
	f.Page, f.Limit = clampPage(f.Page, f.Limit)
}

// Offset returns the row offset for the current page.
func (f *ProfileFilters) Offset() int { return (f.Page - 1) * f.Limit }

// Offset returns the row offset for the current page.
func (f *ProductFilters) Offset() int { return (f.Page - 1) * f.Limit }

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
