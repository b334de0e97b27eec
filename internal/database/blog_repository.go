package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const blogSelectList = `id, tenant_id, store_id, keyword_id, title, content_html,
	meta_description, word_count, featured_image_url, image_prompt, template_used,
	generation_time, tokens_used, status, published, shopify_article_id,
	shopify_handle, live_url, error_message, created_at, published_at`

// BlogRepository manages generated blog rows.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository creates a new repository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// Insert stores a freshly generated blog as a draft and returns its id.
func (r *BlogRepository) Insert(ctx context.Context, blog *models.GeneratedBlog) (int64, error) {
	query := `
		INSERT INTO generated_blogs (tenant_id, store_id, keyword_id, title,
			content_html, meta_description, word_count, featured_image_url,
			image_prompt, template_used, generation_time, tokens_used, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		blog.TenantID, blog.StoreID, blog.KeywordID, blog.Title,
		blog.ContentHTML, blog.MetaDescription, blog.WordCount,
		blog.FeaturedImageURL, blog.ImagePrompt, blog.TemplateUsed,
		blog.GenerationTime, blog.TokensUsed, blog.Status)
	if err != nil {
		return 0, fmt.Errorf("insert blog: %w", err)
	}
	return id, nil
}

// GetByID fetches one blog scoped to the tenant.
func (r *BlogRepository) GetByID(ctx context.Context, tenantID, blogID int64) (*models.GeneratedBlog, error) {
	query := `SELECT ` + blogSelectList + ` FROM generated_blogs WHERE id = $1 AND tenant_id = $2`

	var blog models.GeneratedBlog
	if err := r.db.GetContext(ctx, &blog, query, blogID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return &blog, nil
}

// BlogListItem is the list-view projection, with the source keyword joined in.
type BlogListItem struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Keyword     sql.NullString `db:"keyword" json:"keyword,omitempty"`
	WordCount   sql.NullInt64  `db:"word_count" json:"word_count,omitempty"`
	Status      string         `db:"status" json:"status"`
	Published   bool           `db:"published" json:"published"`
	LiveURL     sql.NullString `db:"live_url" json:"live_url,omitempty"`
	CreatedAt   sql.NullTime   `db:"created_at" json:"created_at"`
	PublishedAt sql.NullTime   `db:"published_at" json:"published_at,omitempty"`
}

// List returns the tenant's blogs, newest first, optionally filtered by status.
func (r *BlogRepository) List(ctx context.Context, tenantID int64, status string, limit, offset int) ([]BlogListItem, error) {
	query := `
		SELECT b.id, b.title, k.keyword, b.word_count, b.status, b.published,
			b.live_url, b.created_at, b.published_at
		FROM generated_blogs b
		LEFT JOIN keywords k ON k.id = b.keyword_id
		WHERE b.tenant_id = $1`
	args := []any{tenantID}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND b.status = $%d", len(args))
	}

	query += " ORDER BY b.created_at DESC"
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	items := []BlogListItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return items, nil
}

// MarkPublished records a successful publish.
func (r *BlogRepository) MarkPublished(ctx context.Context, tenantID, blogID int64, articleID, handle, liveURL string) error {
	query := `
		UPDATE generated_blogs
		SET status = 'published', published = TRUE, shopify_article_id = $3,
			shopify_handle = $4, live_url = $5, error_message = NULL,
			published_at = NOW()
		WHERE id = $1 AND tenant_id = $2`
	return r.execExpectOneRow(ctx, "mark blog published", query, blogID, tenantID, articleID, handle, liveURL)
}

// MarkPublishFailed records a failed publish attempt. The keyword's own
// status is not touched here; publish failure does not undo generation.
func (r *BlogRepository) MarkPublishFailed(ctx context.Context, tenantID, blogID int64, errorMsg string) error {
	query := `
		UPDATE generated_blogs
		SET status = 'failed', error_message = $3
		WHERE id = $1 AND tenant_id = $2`
	return r.execExpectOneRow(ctx, "mark blog failed", query, blogID, tenantID, errorMsg)
}

// BlogStats summarizes the tenant's generated blogs.
type BlogStats struct {
	Total     int `db:"total" json:"total_blogs"`
	Published int `db:"published" json:"published_blogs"`
	Draft     int `db:"draft" json:"draft_blogs"`
	Failed    int `db:"failed" json:"failed_blogs"`
}

// Stats returns blog status counts for the tenant.
func (r *BlogRepository) Stats(ctx context.Context, tenantID int64) (*BlogStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE published) AS published,
			COUNT(*) FILTER (WHERE status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM generated_blogs
		WHERE tenant_id = $1`

	var stats BlogStats
	if err := r.db.GetContext(ctx, &stats, query, tenantID); err != nil {
		return nil, fmt.Errorf("blog stats: %w", err)
	}
	return &stats, nil
}

func (r *BlogRepository) execExpectOneRow(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
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
