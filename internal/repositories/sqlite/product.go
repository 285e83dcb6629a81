package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductRepository implements repositories.ProductRepository using SQLite
type ProductRepository struct {
	*BaseRepository
}

// NewProductRepository creates a new SQLite product repository
func NewProductRepository(db *sql.DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository(db, "products", logger),
	}
}

const productColumns = `id, name, price, description, category, quantity, size,
	image, images, stock, is_featured, color, material, pattern, created_at, updated_at`

// Create creates a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", "", err)
	}

	imagesJSON, stockJSON, err := marshalProductJSON(product)
	if err != nil {
		return repositories.NewRepositoryError("create", "product", "", err)
	}

	query := `INSERT INTO products (name, price, description, category, quantity, size,
	              image, images, stock, is_featured, color, material, pattern, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.executeExec(ctx, "create", query,
		product.Name, product.Price, product.Description, product.Category,
		product.Quantity, product.Size, product.Image, imagesJSON, stockJSON,
		boolToInt(product.IsFeatured), product.Color, product.Material, product.Pattern,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return repositories.NewRepositoryError("create", "product", "", err)
	}
	product.ID = id

	return nil
}

// GetByID retrieves a product by ID (without variants)
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = ?", productColumns)

	row := r.executeQueryRow(ctx, "get", query, id)
	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("product", fmt.Sprintf("%d", id))
		}
		return nil, repositories.NewRepositoryError("get", "product", fmt.Sprintf("%d", id), err)
	}

	return product, nil
}

// List retrieves products with filters, pagination and ordering
func (r *ProductRepository) List(ctx context.Context, filters *repositories.ProductFilters) ([]*models.Product, int64, error) {
	if filters == nil {
		filters = &repositories.ProductFilters{}
	}
	filters.Normalize()

	var conditions []string
	var args []interface{}

	if filters.Name != "" {
		conditions = append(conditions, "name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filters.Name+"%")
	}
	if filters.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filters.Category)
	}
	if filters.MinPrice != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *filters.MaxPrice)
	}
	if filters.Size != "" {
		// products with stock for the requested size, via the legacy
		// stock map or a variant row
		conditions = append(conditions, `(COALESCE(json_extract(stock, '$.' || ?), 0) > 0
			OR EXISTS (SELECT 1 FROM product_variants pv
			           WHERE pv.product_id = products.id AND pv.size = ? AND pv.stock_quantity > 0))`)
		args = append(args, filters.Size, filters.Size)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	total, err := r.countRows(ctx, "list", whereClause, args...)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch filters.Sort {
	case repositories.ProductSortOldest:
		orderBy = "created_at ASC"
	case repositories.ProductSortQtyAsc:
		orderBy = "quantity ASC, created_at DESC"
	case repositories.ProductSortQtyDesc:
		orderBy = "quantity DESC, created_at DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY %s LIMIT ? OFFSET ?",
		productColumns, whereClause, orderBy)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, repositories.NewRepositoryError("list", "product", "", err)
	}

	return products, total, nil
}

// ListAll retrieves every product, newest first
func (r *ProductRepository) ListAll(ctx context.Context) ([]*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products ORDER BY created_at DESC", productColumns)

	rows, err := r.executeQuery(ctx, "list_all", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, repositories.NewRepositoryError("list_all", "product", "", err)
	}

	return products, nil
}

// Update persists the product fields
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", fmt.Sprintf("%d", product.ID), err)
	}

	imagesJSON, stockJSON, err := marshalProductJSON(product)
	if err != nil {
		return repositories.NewRepositoryError("update", "product", fmt.Sprintf("%d", product.ID), err)
	}

	query := `UPDATE products SET name = ?, price = ?, description = ?, category = ?,
	              quantity = ?, size = ?, image = ?, images = ?, stock = ?, is_featured = ?,
	              color = ?, material = ?, pattern = ?, updated_at = CURRENT_TIMESTAMP
	          WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		product.Name, product.Price, product.Description, product.Category,
		product.Quantity, product.Size, product.Image, imagesJSON, stockJSON,
		boolToInt(product.IsFeatured), product.Color, product.Material, product.Pattern,
		product.ID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update", fmt.Sprintf("%d", product.ID))
}

// Delete removes a product by ID
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.executeExec(ctx, "delete", "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", fmt.Sprintf("%d", id))
}

// GetVariants retrieves all variants for a product
func (r *ProductRepository) GetVariants(ctx context.Context, productID int64) ([]*models.ProductVariant, error) {
	query := `SELECT id, product_id, color, size, stock_quantity
	          FROM product_variants WHERE product_id = ? ORDER BY color, size`

	rows, err := r.executeQuery(ctx, "get_variants", query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*models.ProductVariant
	for rows.Next() {
		var v models.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.StockQuantity); err != nil {
			return nil, repositories.NewRepositoryError("get_variants", "product_variant", "", err)
		}
		variants = append(variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_variants", "product_variant", "", err)
	}

	return variants, nil
}

// GetVariant retrieves one variant by product, color and size
func (r *ProductRepository) GetVariant(ctx context.Context, productID int64, color, size string) (*models.ProductVariant, error) {
	color = models.NormalizeOption(color)
	size = models.NormalizeOption(size)

	query := `SELECT id, product_id, color, size, stock_quantity
	          FROM product_variants WHERE product_id = ? AND color = ? AND size = ?`

	var v models.ProductVariant
	row := r.executeQueryRow(ctx, "get_variant", query, productID, color, size)
	if err := row.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.StockQuantity); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("product_variant",
				fmt.Sprintf("%d/%s/%s", productID, color, size))
		}
		return nil, repositories.NewRepositoryError("get_variant", "product_variant", "", err)
	}

	return &v, nil
}

// ReplaceVariants deletes and re-inserts the variants of a product
func (r *ProductRepository) ReplaceVariants(ctx context.Context, productID int64, variants []*models.ProductVariant) error {
	return r.withTx(ctx, "replace_variants", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM product_variants WHERE product_id = ?", productID); err != nil {
			return repositories.NewRepositoryError("replace_variants", "product_variant", "", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO product_variants (product_id, color, size, stock_quantity) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return repositories.NewRepositoryError("replace_variants", "product_variant", "", err)
		}
		defer stmt.Close()

		for _, v := range variants {
			color := models.NormalizeOption(v.Color)
			size := models.NormalizeOption(v.Size)
			if v.StockQuantity < 0 {
				return repositories.ValidationError("product_variant", "",
					fmt.Errorf("variant stock cannot be negative"))
			}
			result, err := stmt.ExecContext(ctx, productID, color, size, v.StockQuantity)
			if err != nil {
				if strings.Contains(err.Error(), "UNIQUE constraint failed") {
					return repositories.DuplicateError("product_variant", "color/size",
						fmt.Sprintf("%s/%s", color, size))
				}
				return repositories.NewRepositoryError("replace_variants", "product_variant", "", err)
			}
			if id, err := result.LastInsertId(); err == nil {
				v.ID = id
			}
			v.ProductID = productID
		}

		return nil
	})
}

// UpdateVariantStock sets the stock quantity of a variant
func (r *ProductRepository) UpdateVariantStock(ctx context.Context, variantID int64, quantity int) error {
	if quantity < 0 {
		return repositories.ValidationError("product_variant", fmt.Sprintf("%d", variantID),
			fmt.Errorf("variant stock cannot be negative"))
	}

	result, err := r.executeExec(ctx, "update_variant_stock",
		"UPDATE product_variants SET stock_quantity = ? WHERE id = ?", quantity, variantID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "update_variant_stock", fmt.Sprintf("%d", variantID))
}

// SumVariantStock returns the total stock across a product's variants
func (r *ProductRepository) SumVariantStock(ctx context.Context, productID int64) (int, error) {
	var total int
	row := r.executeQueryRow(ctx, "sum_variant_stock",
		"SELECT COALESCE(SUM(stock_quantity), 0) FROM product_variants WHERE product_id = ?", productID)
	if err := row.Scan(&total); err != nil {
		return 0, repositories.NewRepositoryError("sum_variant_stock", "product_variant", "", err)
	}

	return total, nil
}

// SetQuantity sets the denormalized total quantity of a product
func (r *ProductRepository) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	result, err := r.executeExec(ctx, "set_quantity",
		"UPDATE products SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		quantity, productID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "set_quantity", fmt.Sprintf("%d", productID))
}

// SetStockMap persists the legacy per-size stock map and total quantity
func (r *ProductRepository) SetStockMap(ctx context.Context, productID int64, stock map[string]int, quantity int) error {
	if stock == nil {
		stock = map[string]int{}
	}
	stockJSON, err := json.Marshal(stock)
	if err != nil {
		return repositories.NewRepositoryError("set_stock_map", "product", fmt.Sprintf("%d", productID), err)
	}

	result, err := r.executeExec(ctx, "set_stock_map",
		"UPDATE products SET stock = ?, quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(stockJSON), quantity, productID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "set_stock_map", fmt.Sprintf("%d", productID))
}

// ImageRefs returns every image path referenced by any product
func (r *ProductRepository) ImageRefs(ctx context.Context) ([]string, error) {
	rows, err := r.executeQuery(ctx, "image_refs", "SELECT image, images FROM products")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var refs []string
	for rows.Next() {
		var image sql.NullString
		var imagesJSON string
		if err := rows.Scan(&image, &imagesJSON); err != nil {
			return nil, repositories.NewRepositoryError("image_refs", "product", "", err)
		}

		var images []string
		if imagesJSON != "" {
			if err := json.Unmarshal([]byte(imagesJSON), &images); err != nil {
				return nil, repositories.NewRepositoryError("image_refs", "product", "", err)
			}
		}
		if image.Valid && image.String != "" {
			images = append(images, image.String)
		}

		for _, ref := range images {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("image_refs", "product", "", err)
	}

	return refs, nil
}

func marshalProductJSON(product *models.Product) (string, string, error) {
	images := product.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return "", "", err
	}

	stock := product.Stock
	if stock == nil {
		stock = map[string]int{}
	}
	stockJSON, err := json.Marshal(stock)
	if err != nil {
		return "", "", err
	}

	return string(imagesJSON), string(stockJSON), nil
}

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	var price sql.NullFloat64
	var description, category, size, image, color, material, pattern sql.NullString
	var imagesJSON, stockJSON string
	var isFeatured int

	err := s.Scan(&p.ID, &p.Name, &price, &description, &category, &p.Quantity, &size,
		&image, &imagesJSON, &stockJSON, &isFeatured, &color, &material, &pattern,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		p.Price = &price.Float64
	}
	p.Description = nullableString(description)
	p.Category = nullableString(category)
	p.Size = nullableString(size)
	p.Image = nullableString(image)
	p.Color = nullableString(color)
	p.Material = nullableString(material)
	p.Pattern = nullableString(pattern)

	featured := isFeatured != 0
	p.IsFeatured = &featured

	if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	if err := json.Unmarshal([]byte(stockJSON), &p.Stock); err != nil {
		return nil, fmt.Errorf("decoding stock: %w", err)
	}

	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func boolToInt(b *bool) int {
	if b != nil && *b {
		return 1
	}
	return 0
}
