package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"store-backend-api/internal/repositories"
	"store-backend-api/internal/services"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// @Summary List products
// @Description Paginated product listing with name/category/price/size filters
// @Tags produtos
// @Accept json
// @Produce json
// @Param nome query string false "Partial product name (case-insensitive)"
// @Param categoria query string false "Exact category"
// @Param preco_min query number false "Minimum price"
// @Param preco_max query number false "Maximum price"
// @Param tamanho query string false "Only products with stock for this size"
// @Param sort query string false "Sort order" Enums(newest, oldest, qty_asc, qty_desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.ProductList
// @Failure 500 {object} ErrorResponse
// @Router /produtos [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := &repositories.ProductFilters{
		Name:     c.Query("nome"),
		Category: c.Query("categoria"),
		Size:     c.Query("tamanho"),
		Sort:     c.Query("sort"),
	}

	if minPrice := c.Query("preco_min"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			filters.MinPrice = &val
		}
	}
	if maxPrice := c.Query("preco_max"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			filters.MaxPrice = &val
		}
	}
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			filters.Page = val
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			filters.Limit = val
		}
	}

	result, err := h.productService.ListProducts(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get a product
// @Description Get a product with its variants by ID
// @Tags produtos
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /produtos/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Create a product
// @Description Create a product (and optional variants) in the catalog
// @Tags produtos
// @Accept json
// @Produce json
// @Param product body services.ProductInput true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /produtos [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// @Summary Update a product
// @Description Update a product; variants are replaced when provided
// @Tags produtos
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body services.ProductInput true "Updated product data"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /produtos/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Delete a product
// @Description Delete a product, its stored image and mirror entry
// @Tags produtos
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /produtos/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Export the catalog as CSV
// @Description Download every product as a CSV file
// @Tags produtos
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Failure 500 {object} ErrorResponse
// @Router /produtos/exportar [get]
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	data, err := h.productService.ExportCSV(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to export products")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="produtos.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid product ID", "Product ID must be a positive integer")
		return 0, false
	}
	return id, true
}
