package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// CampaignRepository manages keyword campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Insert stores a campaign and returns its id.
func (r *CampaignRepository) Insert(ctx context.Context, c *models.KeywordCampaign) (int64, error) {
	query := `
		INSERT INTO keyword_campaigns (tenant_id, name, description, template_type,
			min_words, faq_count, auto_generate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		c.TenantID, c.Name, c.Description, c.TemplateType,
		c.MinWords, c.FAQCount, c.AutoGenerate)
	if err != nil {
		return 0, fmt.Errorf("insert campaign: %w", err)
	}
	return id, nil
}

// GetByID fetches one campaign scoped to the tenant.
func (r *CampaignRepository) GetByID(ctx context.Context, tenantID, campaignID int64) (*models.KeywordCampaign, error) {
	query := `
		SELECT id, tenant_id, name, description, template_type, min_words,
			faq_count, auto_generate, created_at
		FROM keyword_campaigns WHERE id = $1 AND tenant_id = $2`

	var c models.KeywordCampaign
	if err := r.db.GetContext(ctx, &c, query, campaignID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

// CampaignWithCount is the list-view projection including the keyword count.
type CampaignWithCount struct {
	models.KeywordCampaign
	KeywordCount int `db:"keyword_count" json:"keyword_count"`
}

// List returns the tenant's campaigns with their keyword counts.
func (r *CampaignRepository) List(ctx context.Context, tenantID int64) ([]CampaignWithCount, error) {
	query := `
		SELECT c.id, c.tenant_id, c.name, c.description, c.template_type,
			c.min_words, c.faq_count, c.auto_generate, c.created_at,
			COUNT(k.id) AS keyword_count
		FROM keyword_campaigns c
		LEFT JOIN keywords k ON k.campaign_id = c.id
		WHERE c.tenant_id = $1
		GROUP BY c.id
		ORDER BY c.created_at DESC`

	campaigns := []CampaignWithCount{}
	if err := r.db.SelectContext(ctx, &campaigns, query, tenantID); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}
