package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// listStores returns the tenant's Shopify stores. Access tokens are
// never serialized.
// GET /api/v1/stores
func (r *Router) listStores(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	stores, err := r.stores.List(c.Request.Context(), tenant)
	if err != nil {
		handleRepositoryError(c, err, "stores", "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// createStore registers a Shopify store connection.
// POST /api/v1/stores
func (r *Router) createStore(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req struct {
		StoreName              string  `json:"store_name" binding:"required"`
		ShopURL                string  `json:"shop_url" binding:"required"`
		AccessToken            string  `json:"access_token"`
		BlogHandle             string  `json:"blog_handle"`
		CustomDomain           *string `json:"custom_domain"`
		DefaultProductURL      *string `json:"default_product_url"`
		ProductIntegrationText *string `json:"product_integration_text"`
		AutoPublish            bool    `json:"auto_publish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	// Accept either the bare subdomain or a full myshopify URL.
	shopURL := strings.TrimSpace(req.ShopURL)
	shopURL = strings.TrimPrefix(shopURL, "https://")
	shopURL = strings.TrimPrefix(shopURL, "http://")
	shopURL = strings.TrimSuffix(shopURL, "/")
	shopURL = strings.TrimSuffix(shopURL, ".myshopify.com")
	if shopURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shop URL"})
		return
	}

	if req.BlogHandle == "" {
		req.BlogHandle = "news"
	}

	store := &models.ShopifyStore{
		TenantID:    tenant,
		StoreName:   req.StoreName,
		ShopURL:     shopURL,
		AccessToken: req.AccessToken,
		BlogHandle:  req.BlogHandle,
		AutoPublish: req.AutoPublish,
		IsActive:    true,
	}
	if req.CustomDomain != nil {
		store.CustomDomain = sql.NullString{String: *req.CustomDomain, Valid: true}
	}
	if req.DefaultProductURL != nil {
		store.DefaultProductURL = sql.NullString{String: *req.DefaultProductURL, Valid: true}
	}
	if req.ProductIntegrationText != nil {
		store.ProductIntegrationText = sql.NullString{String: *req.ProductIntegrationText, Valid: true}
	}

	id, err := r.stores.Insert(c.Request.Context(), store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}
	store.ID = id

	c.JSON(http.StatusCreated, store)
}
