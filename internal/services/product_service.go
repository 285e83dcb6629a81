package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/catalog"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
	"store-backend-api/internal/storage"
)

// productService implements the ProductService interface
type productService struct {
	productRepo repositories.ProductRepository
	mirror      *catalog.Mirror
	files       storage.FileStorage
	logger      *logrus.Logger
}

// NewProductService creates a new product service instance
func NewProductService(
	productRepo repositories.ProductRepository,
	mirror *catalog.Mirror,
	files storage.FileStorage,
	logger *logrus.Logger,
) ProductService {
	if logger == nil {
		logger = logrus.New()
	}
	return &productService{
		productRepo: productRepo,
		mirror:      mirror,
		files:       files,
		logger:      logger,
	}
}

// ListProducts lists products with filters and pagination
func (s *productService) ListProducts(ctx context.Context, filters *repositories.ProductFilters) (*ProductList, error) {
	if filters == nil {
		filters = &repositories.ProductFilters{}
	}
	filters.Normalize()

	products, total, err := s.productRepo.List(ctx, filters)
	if err != nil {
		return nil, wrapRepoErr("falha ao listar produtos", err)
	}
	if products == nil {
		products = []*models.Product{}
	}

	// single-image products expose it through images too
	for _, p := range products {
		if len(p.Images) == 0 && p.Image != nil && *p.Image != "" {
			p.Images = []string{*p.Image}
		}
	}

	meta := ListMeta{Total: total, Page: filters.Page, Limit: filters.Limit}
	if int64(filters.Page*filters.Limit) < total {
		next := filters.Page + 1
		meta.NextPage = &next
	}

	return &ProductList{Data: products, Meta: meta}, nil
}

// GetProduct returns a product with its variants
func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("produto não encontrado", err)
	}

	variants, err := s.productRepo.GetVariants(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("falha ao buscar variantes", err)
	}
	product.Variants = variants

	return product, nil
}

// CreateProduct creates a product (and variants) and mirrors it
func (s *productService) CreateProduct(ctx context.Context, input *ProductInput) (*models.Product, error) {
	if input == nil {
		return nil, invalidf("product input cannot be nil")
	}
	if input.Name == "" {
		return nil, invalidf("nome do produto é obrigatório")
	}

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		Size:        input.Size,
		Image:       input.Image,
		Images:      input.Images,
		Stock:       input.Stock,
		IsFeatured:  input.IsFeatured,
		Color:       input.Color,
		Material:    input.Material,
		Pattern:     input.Pattern,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}

	// variants take over stock accounting from the legacy map
	if len(input.Variants) > 0 {
		product.Quantity = variantTotal(input.Variants)
		product.Stock = map[string]int{}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, wrapRepoErr("falha ao criar produto", err)
	}

	if len(input.Variants) > 0 {
		if err := s.productRepo.ReplaceVariants(ctx, product.ID, input.Variants); err != nil {
			return nil, wrapRepoErr("falha ao criar variantes", err)
		}
	}

	s.syncMirror(ctx, product.ID)

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct updates a product, replaces variants when provided, drops
// the replaced cover image from storage and re-mirrors.
func (s *productService) UpdateProduct(ctx context.Context, id int64, input *ProductInput) (*models.Product, error) {
	if input == nil {
		return nil, invalidf("product input cannot be nil")
	}

	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("produto não encontrado", err)
	}

	// replaced cover images become garbage in storage
	if current.Image != nil && *current.Image != "" &&
		input.Image != nil && *input.Image != *current.Image {
		s.deleteStoredImage(ctx, *current.Image)
	}

	applyProductInput(current, input)

	if input.Variants != nil {
		if err := s.productRepo.ReplaceVariants(ctx, id, input.Variants); err != nil {
			return nil, wrapRepoErr("falha ao atualizar variantes", err)
		}
		current.Quantity = variantTotal(input.Variants)
		current.Stock = map[string]int{}
	}

	current.UpdateTimestamp()
	if err := s.productRepo.Update(ctx, current); err != nil {
		return nil, wrapRepoErr("falha ao atualizar produto", err)
	}

	s.syncMirror(ctx, id)

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product, its storage image and mirror entry
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return wrapRepoErr("produto não encontrado", err)
	}

	if current.Image != nil && *current.Image != "" {
		s.deleteStoredImage(ctx, *current.Image)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return wrapRepoErr("falha ao remover produto", err)
	}

	if s.mirror != nil {
		if err := s.mirror.DeleteProduct(ctx, id); err != nil {
			s.logger.WithError(err).WithField("product_id", id).Error("Catalog mirror delete failed")
		}
	}

	return nil
}

// ExportCSV renders the whole catalog as CSV
func (s *productService) ExportCSV(ctx context.Context) ([]byte, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, wrapRepoErr("falha ao exportar produtos", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Nome", "Preco", "Categoria", "Estoque", "Tamanho", "Criado em"}); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for _, p := range products {
		price := 0.0
		if p.Price != nil {
			price = *p.Price
		}
		category := ""
		if p.Category != nil {
			category = *p.Category
		}
		size := ""
		if p.Size != nil {
			size = *p.Size
		}

		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			fmt.Sprintf("%.2f", price),
			category,
			strconv.Itoa(p.Quantity),
			size,
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// syncMirror pushes the consolidated product (with variants) to the
// catalog mirror. Failures are logged only.
func (s *productService) syncMirror(ctx context.Context, productID int64) {
	if s.mirror == nil {
		return
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("Failed to load product for mirror sync")
		return
	}
	variants, err := s.productRepo.GetVariants(ctx, productID)
	if err == nil {
		product.Variants = variants
	}

	if err := s.mirror.SetProduct(ctx, product); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("Catalog mirror sync failed")
	}
}

func (s *productService) deleteStoredImage(ctx context.Context, ref string) {
	if s.files == nil || ref == "" {
		return
	}
	if err := s.files.Delete(ctx, storageKeyFromRef(ref)); err != nil {
		s.logger.WithError(err).WithField("image", ref).Warn("Failed to delete replaced image")
	}
}

func applyProductInput(product *models.Product, input *ProductInput) {
	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Price != nil {
		product.Price = input.Price
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Size != nil {
		product.Size = input.Size
	}
	if input.Image != nil {
		product.Image = input.Image
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Stock != nil {
		product.Stock = input.Stock
	}
	if input.IsFeatured != nil {
		product.IsFeatured = input.IsFeatured
	}
	if input.Color != nil {
		product.Color = input.Color
	}
	if input.Material != nil {
		product.Material = input.Material
	}
	if input.Pattern != nil {
		product.Pattern = input.Pattern
	}
}

func variantTotal(variants []*models.ProductVariant) int {
	total := 0
	for _, v := range variants {
		total += v.StockQuantity
	}
	return total
}
