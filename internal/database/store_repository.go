package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const storeSelectList = `id, tenant_id, store_name, shop_url, access_token,
	blog_handle, custom_domain, default_product_url, product_integration_text,
	auto_publish, is_active, created_at`

// StoreRepository manages Shopify store connections.
type StoreRepository struct {
	db *sqlx.DB
}

// NewStoreRepository creates a new repository.
func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// GetByID fetches one store scoped to the tenant.
func (r *StoreRepository) GetByID(ctx context.Context, tenantID, storeID int64) (*models.ShopifyStore, error) {
	query := `SELECT ` + storeSelectList + ` FROM shopify_stores WHERE id = $1 AND tenant_id = $2`

	var store models.ShopifyStore
	if err := r.db.GetContext(ctx, &store, query, storeID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &store, nil
}

// List returns the tenant's stores.
func (r *StoreRepository) List(ctx context.Context, tenantID int64) ([]models.ShopifyStore, error) {
	query := `SELECT ` + storeSelectList + ` FROM shopify_stores
		WHERE tenant_id = $1 ORDER BY created_at`

	stores := []models.ShopifyStore{}
	if err := r.db.SelectContext(ctx, &stores, query, tenantID); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

// Insert stores a new store connection and returns its id.
func (r *StoreRepository) Insert(ctx context.Context, s *models.ShopifyStore) (int64, error) {
	query := `
		INSERT INTO shopify_stores (tenant_id, store_name, shop_url, access_token,
			blog_handle, custom_domain, default_product_url,
			product_integration_text, auto_publish, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		s.TenantID, s.StoreName, s.ShopURL, s.AccessToken, s.BlogHandle,
		s.CustomDomain, s.DefaultProductURL, s.ProductIntegrationText,
		s.AutoPublish, s.IsActive)
	if err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	return id, nil
}
