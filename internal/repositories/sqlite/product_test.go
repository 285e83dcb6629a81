package sqlite

import (
	"context"
	"testing"

	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

func TestProductRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Vestido Floral", 149.90)
	product.Description = stringPtr("Vestido leve de verão")
	product.Category = stringPtr("vestidos")
	product.Images = []string{"product-images/a.jpg", "product-images/b.jpg"}
	product.Stock = map[string]int{"P": 3, "M": 5}
	product.Quantity = 8

	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	if product.ID == 0 {
		t.Fatal("Expected product ID to be assigned")
	}

	got, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}

	if got.Name != "Vestido Floral" {
		t.Errorf("Expected name Vestido Floral, got %s", got.Name)
	}
	if got.Price == nil || *got.Price != 149.90 {
		t.Errorf("Expected price 149.90, got %v", got.Price)
	}
	if len(got.Images) != 2 {
		t.Errorf("Expected 2 images, got %d", len(got.Images))
	}
	if got.Stock["M"] != 5 {
		t.Errorf("Expected stock M=5, got %d", got.Stock["M"])
	}
	if got.Quantity != 8 {
		t.Errorf("Expected quantity 8, got %d", got.Quantity)
	}
}

func TestProductRepository_Create_InvalidPrice(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())

	product := models.NewProduct("Saia", -10)
	err := repo.Create(context.Background(), product)
	if err == nil {
		t.Fatal("Expected error for negative price")
	}
	if !repositories.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestProductRepository_List_Filters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	cheap := models.NewProduct("Camiseta Básica", 39.90)
	cheap.Category = stringPtr("camisetas")
	mid := models.NewProduct("Camiseta Estampada", 59.90)
	mid.Category = stringPtr("camisetas")
	pricey := models.NewProduct("Vestido Longo", 199.90)
	pricey.Category = stringPtr("vestidos")

	for _, p := range []*models.Product{cheap, mid, pricey} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}

	// partial name, case-insensitive
	_, total, err := repo.List(ctx, &repositories.ProductFilters{Name: "camiseta"})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 camisetas, got %d", total)
	}

	// category
	results, total, err := repo.List(ctx, &repositories.ProductFilters{Category: "vestidos"})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("Expected 1 vestido, got total=%d len=%d", total, len(results))
	}
	if results[0].Name != "Vestido Longo" {
		t.Errorf("Expected Vestido Longo, got %s", results[0].Name)
	}

	// price range
	_, total, err = repo.List(ctx, &repositories.ProductFilters{
		MinPrice: float64Ptr(50),
		MaxPrice: float64Ptr(100),
	})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 product between 50 and 100, got %d", total)
	}
}

func TestProductRepository_List_SizeFilter(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	// size available via the legacy stock map
	mapStock := models.NewProduct("Blusa", 79.90)
	mapStock.Stock = map[string]int{"G": 2}
	if err := repo.Create(ctx, mapStock); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	// size available only via a variant row
	variantStock := models.NewProduct("Calça", 129.90)
	if err := repo.Create(ctx, variantStock); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	variants := []*models.ProductVariant{{Color: "Preto", Size: "G", StockQuantity: 4}}
	if err := repo.ReplaceVariants(ctx, variantStock.ID, variants); err != nil {
		t.Fatalf("Failed to replace variants: %v", err)
	}

	// size sold out
	soldOut := models.NewProduct("Short", 49.90)
	soldOut.Stock = map[string]int{"G": 0}
	if err := repo.Create(ctx, soldOut); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	_, total, err := repo.List(ctx, &repositories.ProductFilters{Size: "G"})
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 products with size G in stock, got %d", total)
	}
}

func TestProductRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Original", 10)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	product.Name = "Renomeado"
	product.Price = float64Ptr(15)
	product.Stock = map[string]int{"U": 7}
	product.Quantity = 7
	if err := repo.Update(ctx, product); err != nil {
		t.Fatalf("Failed to update product: %v", err)
	}

	got, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if got.Name != "Renomeado" {
		t.Errorf("Expected name Renomeado, got %s", got.Name)
	}
	if got.Stock["U"] != 7 {
		t.Errorf("Expected stock U=7, got %d", got.Stock["U"])
	}
}

func TestProductRepository_Variants(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Camisa", 89.90)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	variants := []*models.ProductVariant{
		{Color: "Azul", Size: "M", StockQuantity: 3},
		{Color: "Azul", Size: "G", StockQuantity: 2},
		{Color: "", Size: "", StockQuantity: 5},
	}
	if err := repo.ReplaceVariants(ctx, product.ID, variants); err != nil {
		t.Fatalf("Failed to replace variants: %v", err)
	}

	got, err := repo.GetVariants(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to get variants: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 variants, got %d", len(got))
	}

	// empty options normalize to the default
	v, err := repo.GetVariant(ctx, product.ID, "", "")
	if err != nil {
		t.Fatalf("Failed to get default variant: %v", err)
	}
	if v.Color != models.DefaultVariantOption || v.Size != models.DefaultVariantOption {
		t.Errorf("Expected default options, got %s/%s", v.Color, v.Size)
	}
	if v.StockQuantity != 5 {
		t.Errorf("Expected stock 5, got %d", v.StockQuantity)
	}

	total, err := repo.SumVariantStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to sum variant stock: %v", err)
	}
	if total != 10 {
		t.Errorf("Expected total stock 10, got %d", total)
	}

	if err := repo.UpdateVariantStock(ctx, v.ID, 1); err != nil {
		t.Fatalf("Failed to update variant stock: %v", err)
	}
	total, err = repo.SumVariantStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to sum variant stock: %v", err)
	}
	if total != 6 {
		t.Errorf("Expected total stock 6 after update, got %d", total)
	}
}

func TestProductRepository_ReplaceVariants_Duplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Bermuda", 59.90)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	variants := []*models.ProductVariant{
		{Color: "Azul", Size: "M", StockQuantity: 1},
		{Color: "Azul", Size: "M", StockQuantity: 2},
	}
	err := repo.ReplaceVariants(ctx, product.ID, variants)
	if err == nil {
		t.Fatal("Expected error for duplicate color/size")
	}
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

func TestProductRepository_SetStockMap(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Meia", 19.90)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	if err := repo.SetStockMap(ctx, product.ID, map[string]int{"P": 1, "M": 2}, 3); err != nil {
		t.Fatalf("Failed to set stock map: %v", err)
	}

	got, err := repo.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if got.Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", got.Quantity)
	}
	if got.Stock["P"] != 1 || got.Stock["M"] != 2 {
		t.Errorf("Unexpected stock map: %v", got.Stock)
	}
}

func TestProductRepository_ImageRefs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	p1 := models.NewProduct("A", 10)
	p1.Image = stringPtr("product-images/main.jpg")
	p1.Images = []string{"product-images/main.jpg", "product-images/alt.jpg"}
	p2 := models.NewProduct("B", 20)
	p2.Images = []string{"product-images/other.jpg"}

	for _, p := range []*models.Product{p1, p2} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}

	refs, err := repo.ImageRefs(ctx)
	if err != nil {
		t.Fatalf("Failed to get image refs: %v", err)
	}

	// main.jpg appears in both image and images but must be listed once
	if len(refs) != 3 {
		t.Errorf("Expected 3 distinct refs, got %d: %v", len(refs), refs)
	}
}

func TestProductRepository_Delete_CascadesVariants(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	product := models.NewProduct("Casaco", 249.90)
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	variants := []*models.ProductVariant{{Color: "Cinza", Size: "M", StockQuantity: 2}}
	if err := repo.ReplaceVariants(ctx, product.ID, variants); err != nil {
		t.Fatalf("Failed to replace variants: %v", err)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM product_variants WHERE product_id = ?", product.ID).Scan(&count); err != nil {
		t.Fatalf("Failed to count variants: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected variants to cascade on delete, found %d", count)
	}
}
