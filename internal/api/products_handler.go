package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// listProducts returns the tenant's products, optionally scoped to a store.
// GET /api/v1/products?store_id=
func (r *Router) listProducts(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var storeID int64
	if raw := c.Query("store_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Store ID must be a positive integer"})
			return
		}
		storeID = id
	}

	products, err := r.products.List(c.Request.Context(), tenant, storeID)
	if err != nil {
		handleRepositoryError(c, err, "products", "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

type productPayload struct {
	StoreID         int64   `json:"store_id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     *string `json:"description"`
	URL             string  `json:"url" binding:"required"`
	Price           *string `json:"price"`
	Keywords        *string `json:"keywords"`
	IntegrationText *string `json:"integration_text"`
	Priority        int     `json:"priority"`
	IsActive        *bool   `json:"is_active"`
}

// createProduct adds a catalog product used for keyword matching.
// POST /api/v1/products
func (r *Router) createProduct(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	// Reject products pointing at stores the tenant does not own.
	if _, err := r.stores.GetByID(c.Request.Context(), tenant, req.StoreID); err != nil {
		handleRepositoryError(c, err, "store", "load")
		return
	}

	product := req.toModel(tenant)
	id, err := r.products.Insert(c.Request.Context(), product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	product.ID = id

	c.JSON(http.StatusCreated, product)
}

// updateProduct replaces a product's editable fields.
// PUT /api/v1/products/:id
func (r *Router) updateProduct(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req productPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	product := req.toModel(tenant)
	product.ID = productID
	if err := r.products.Update(c.Request.Context(), tenant, product); err != nil {
		handleRepositoryError(c, err, "product", "update")
		return
	}

	c.JSON(http.StatusOK, product)
}

// deleteProduct removes a product.
// DELETE /api/v1/products/:id
func (r *Router) deleteProduct(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	if err := r.products.Delete(c.Request.Context(), tenant, productID); err != nil {
		handleRepositoryError(c, err, "product", "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// productsByKeyword previews which products the matcher would link into
// a blog generated for the given keyword.
// GET /api/v1/products/by-keyword/:keyword?store_id=
func (r *Router) productsByKeyword(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	keyword := c.Param("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword is required"})
		return
	}
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store ID must be a positive integer"})
		return
	}

	m := matcher.New(r.products, r.logger)
	matched, err := m.Match(c.Request.Context(), tenant, storeID, keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to match products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword":  keyword,
		"products": matched,
		"count":    len(matched),
	})
}

func (p productPayload) toModel(tenant int64) *models.Product {
	product := &models.Product{
		TenantID: tenant,
		StoreID:  p.StoreID,
		Name:     p.Name,
		URL:      p.URL,
		Priority: p.Priority,
		IsActive: true,
	}
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
	if p.Description != nil {
		product.Description = sql.NullString{String: *p.Description, Valid: true}
	}
	if p.Price != nil {
		product.Price = sql.NullString{String: *p.Price, Valid: true}
	}
	if p.Keywords != nil {
		product.Keywords = sql.NullString{String: *p.Keywords, Valid: true}
	}
	if p.IntegrationText != nil {
		product.IntegrationText = sql.NullString{String: *p.IntegrationText, Valid: true}
	}
	return product
}
