package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const productSelectList = `id, tenant_id, store_id, name, description, url, price,
	keywords, integration_text, is_active, priority, created_at`

// ProductRepository provides read/write access to the product catalog. The
// matcher only reads; handlers manage the rows.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindActiveByTag returns up to limit active products whose keyword tags
// contain tag as a case-insensitive substring, highest priority first.
func (r *ProductRepository) FindActiveByTag(ctx context.Context, tenantID, storeID int64, tag string, limit int) ([]models.Product, error) {
	query := `
		SELECT ` + productSelectList + `
		FROM products
		WHERE tenant_id = $1 AND store_id = $2 AND is_active
		  AND keywords ILIKE '%' || $3 || '%'
		ORDER BY priority DESC
		LIMIT $4`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, query, tenantID, storeID, tag, limit); err != nil {
		return nil, fmt.Errorf("find products by tag: %w", err)
	}
	return products, nil
}

// List returns the tenant's products for one store (or all stores when
// storeID is zero).
func (r *ProductRepository) List(ctx context.Context, tenantID, storeID int64) ([]models.Product, error) {
	query := `SELECT ` + productSelectList + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}

	if storeID > 0 {
		args = append(args, storeID)
		query += fmt.Sprintf(" AND store_id = $%d", len(args))
	}
	query += " ORDER BY priority DESC, created_at DESC"

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Insert stores a product and returns its id.
func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) (int64, error) {
	query := `
		INSERT INTO products (tenant_id, store_id, name, description, url, price,
			keywords, integration_text, is_active, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		p.TenantID, p.StoreID, p.Name, p.Description, p.URL, p.Price,
		p.Keywords, p.IntegrationText, p.IsActive, p.Priority)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// Update rewrites the mutable fields of one product owned by the tenant.
func (r *ProductRepository) Update(ctx context.Context, tenantID int64, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, url = $5, price = $6, keywords = $7,
			integration_text = $8, is_active = $9, priority = $10, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, tenantID, p.Name, p.Description, p.URL, p.Price,
		p.Keywords, p.IntegrationText, p.IsActive, p.Priority)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes one product owned by the tenant.
func (r *ProductRepository) Delete(ctx context.Context, tenantID, productID int64) error {
	query := `DELETE FROM products WHERE id = $1 AND tenant_id = $2`

	result, err := r.db.ExecContext(ctx, query, productID, tenantID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID fetches one product scoped to the tenant.
func (r *ProductRepository) GetByID(ctx context.Context, tenantID, productID int64) (*models.Product, error) {
	query := `SELECT ` + productSelectList + ` FROM products WHERE id = $1 AND tenant_id = $2`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, query, productID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
