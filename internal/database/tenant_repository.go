package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// TenantRepository manages tenant records, plan quotas, and usage tracking.
type TenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository creates a new repository.
func NewTenantRepository(db *sqlx.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByID fetches a tenant.
func (r *TenantRepository) GetByID(ctx context.Context, tenantID int64) (*models.Tenant, error) {
	query := `
		SELECT id, name, slug, custom_domain, subscription_plan,
			monthly_blog_limit, monthly_blogs_used, is_active, created_at
		FROM tenants WHERE id = $1`

	var tenant models.Tenant
	if err := r.db.GetContext(ctx, &tenant, query, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &tenant, nil
}

// ReserveQuota atomically claims n blogs from the tenant's monthly budget.
// The conditional update is the quota check: zero rows affected means the
// batch would exceed the limit.
func (r *TenantRepository) ReserveQuota(ctx context.Context, tenantID int64, n int) error {
	query := `
		UPDATE tenants
		SET monthly_blogs_used = monthly_blogs_used + $2
		WHERE id = $1 AND monthly_blogs_used + $2 <= monthly_blog_limit`

	result, err := r.db.ExecContext(ctx, query, tenantID, n)
	if err != nil {
		return fmt.Errorf("reserve quota: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if rows == 0 {
		return models.ErrLimitExceeded
	}
	return nil
}

// ResetMonthlyUsage zeroes every tenant's monthly counter. Invoked by the
// first-of-month schedule.
func (r *TenantRepository) ResetMonthlyUsage(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE tenants SET monthly_blogs_used = 0`)
	if err != nil {
		return 0, fmt.Errorf("reset monthly usage: %w", err)
	}
	return result.RowsAffected()
}

// RecordUsage accumulates daily generation activity for the tenant.
func (r *TenantRepository) RecordUsage(ctx context.Context, tenantID int64, blogs int, tokens int64) error {
	query := `
		INSERT INTO usage_records (tenant_id, date, blogs_generated, tokens_used, api_calls_made)
		VALUES ($1, CURRENT_DATE, $2, $3, 1)
		ON CONFLICT (tenant_id, date) DO UPDATE
		SET blogs_generated = usage_records.blogs_generated + EXCLUDED.blogs_generated,
			tokens_used = usage_records.tokens_used + EXCLUDED.tokens_used,
			api_calls_made = usage_records.api_calls_made + 1`

	if _, err := r.db.ExecContext(ctx, query, tenantID, blogs, tokens); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
