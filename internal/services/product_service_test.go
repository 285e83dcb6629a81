package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
	"store-backend-api/internal/storage"
)

func newTestFileStorage(t *testing.T) (storage.FileStorage, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-files-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	files, err := storage.NewLocalFileStorage(tmpDir, "http://localhost:8080/files")
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create local storage: %v", err)
	}
	return files, func() { os.RemoveAll(tmpDir) }
}

func TestProductService_CreateProduct_WithVariants(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())
	ctx := context.Background()

	price := 89.90
	input := &ProductInput{
		Name:  "Camisa Social",
		Price: &price,
		Stock: map[string]int{"M": 99}, // ignored once variants exist
		Variants: []*models.ProductVariant{
			{Color: "Azul", Size: "M", StockQuantity: 3},
			{Color: "Azul", Size: "G", StockQuantity: 2},
		},
	}

	product, err := svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	// variants take over stock accounting
	if product.Quantity != 5 {
		t.Errorf("Expected quantity 5 from variants, got %d", product.Quantity)
	}
	if len(product.Stock) != 0 {
		t.Errorf("Expected empty stock map, got %v", product.Stock)
	}
	if len(product.Variants) != 2 {
		t.Errorf("Expected 2 variants, got %d", len(product.Variants))
	}
}

func TestProductService_CreateProduct_RequiresName(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())

	_, err := svc.CreateProduct(context.Background(), &ProductInput{})
	if !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for missing name, got %v", err)
	}
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())

	_, err := svc.GetProduct(context.Background(), 12345)
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestProductService_UpdateProduct_ReplacesImage(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	files, cleanupFiles := newTestFileStorage(t)
	defer cleanupFiles()

	svc := NewProductService(repos.ProductRepo, nil, files, testLogger())
	ctx := context.Background()

	if err := files.Store(ctx, "old.jpg", []byte("old"), nil); err != nil {
		t.Fatalf("Failed to store image: %v", err)
	}

	price := 50.0
	product, err := svc.CreateProduct(ctx, &ProductInput{
		Name:  "Boné",
		Price: &price,
		Image: strPtr("old.jpg"),
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	updated, err := svc.UpdateProduct(ctx, product.ID, &ProductInput{Image: strPtr("new.jpg")})
	if err != nil {
		t.Fatalf("Failed to update product: %v", err)
	}
	if updated.Image == nil || *updated.Image != "new.jpg" {
		t.Errorf("Expected image new.jpg, got %v", updated.Image)
	}

	// the replaced cover image is gone from storage
	exists, err := files.Exists(ctx, "old.jpg")
	if err != nil {
		t.Fatalf("Failed to check file: %v", err)
	}
	if exists {
		t.Error("Expected replaced image to be deleted from storage")
	}
}

func TestProductService_UpdateProduct_PartialFields(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())
	ctx := context.Background()

	price := 30.0
	product, err := svc.CreateProduct(ctx, &ProductInput{
		Name:        "Echarpe",
		Price:       &price,
		Description: strPtr("descrição original"),
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	newPrice := 35.0
	updated, err := svc.UpdateProduct(ctx, product.ID, &ProductInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("Failed to update product: %v", err)
	}

	if updated.Price == nil || *updated.Price != 35.0 {
		t.Errorf("Expected price 35, got %v", updated.Price)
	}
	// untouched fields survive
	if updated.Name != "Echarpe" {
		t.Errorf("Expected name to be kept, got %s", updated.Name)
	}
	if updated.Description == nil || *updated.Description != "descrição original" {
		t.Errorf("Expected description to be kept, got %v", updated.Description)
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	files, cleanupFiles := newTestFileStorage(t)
	defer cleanupFiles()

	svc := NewProductService(repos.ProductRepo, nil, files, testLogger())
	ctx := context.Background()

	if err := files.Store(ctx, "cover.jpg", []byte("img"), nil); err != nil {
		t.Fatalf("Failed to store image: %v", err)
	}

	price := 70.0
	product, err := svc.CreateProduct(ctx, &ProductInput{
		Name:  "Lenço",
		Price: &price,
		Image: strPtr("cover.jpg"),
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	if err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}

	if _, err := svc.GetProduct(ctx, product.ID); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}

	exists, err := files.Exists(ctx, "cover.jpg")
	if err != nil {
		t.Fatalf("Failed to check file: %v", err)
	}
	if exists {
		t.Error("Expected cover image to be removed with the product")
	}
}

func TestProductService_ListProducts_Pagination(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		price := 10.0
		if _, err := svc.CreateProduct(ctx, &ProductInput{Name: "Produto", Price: &price}); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}

	list, err := svc.ListProducts(ctx, &repositories.ProductFilters{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if list.Meta.Total != 15 {
		t.Errorf("Expected total 15, got %d", list.Meta.Total)
	}
	if list.Meta.NextPage == nil || *list.Meta.NextPage != 2 {
		t.Errorf("Expected next page 2, got %v", list.Meta.NextPage)
	}

	list, err = svc.ListProducts(ctx, &repositories.ProductFilters{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if len(list.Data) != 5 {
		t.Errorf("Expected 5 products on page 2, got %d", len(list.Data))
	}
	if list.Meta.NextPage != nil {
		t.Errorf("Expected no next page, got %v", *list.Meta.NextPage)
	}
}

func TestProductService_ExportCSV(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	svc := NewProductService(repos.ProductRepo, nil, nil, testLogger())
	ctx := context.Background()

	price := 149.90
	if _, err := svc.CreateProduct(ctx, &ProductInput{
		Name:     "Vestido Midi",
		Price:    &price,
		Category: strPtr("vestidos"),
	}); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	data, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("Failed to export CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID,Nome,Preco") {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Vestido Midi") || !strings.Contains(lines[1], "149.90") {
		t.Errorf("Unexpected CSV row: %s", lines[1])
	}
}
