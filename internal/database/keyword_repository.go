package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// keywordSelectList is the column list for keyword SELECTs (single source
// for schema changes).
const keywordSelectList = `id, tenant_id, campaign_id, keyword, search_volume,
	keyword_difficulty, category, status, blog_generated, created_at, processed_at`

// KeywordRepository manages keyword rows and their status lifecycle.
type KeywordRepository struct {
	db *sqlx.DB
}

// NewKeywordRepository creates a new repository.
func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// NewKeyword is the insert payload for one uploaded keyword row.
type NewKeyword struct {
	CampaignID   sql.NullInt64
	Keyword      string
	SearchVolume sql.NullInt64
	Difficulty   sql.NullFloat64
	Category     sql.NullString
}

// Insert stores a keyword for the tenant. A keyword already stored for the
// same tenant is skipped, not inserted twice; the boolean reports whether a
// row was actually added.
func (r *KeywordRepository) Insert(ctx context.Context, tenantID int64, kw NewKeyword) (bool, error) {
	query := `
		INSERT INTO keywords (tenant_id, campaign_id, keyword, search_volume,
			keyword_difficulty, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		ON CONFLICT (tenant_id, keyword) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		tenantID, kw.CampaignID, kw.Keyword, kw.SearchVolume, kw.Difficulty, kw.Category)
	if err != nil {
		return false, fmt.Errorf("insert keyword: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return rows > 0, nil
}

// GetByID fetches one keyword scoped to the tenant.
func (r *KeywordRepository) GetByID(ctx context.Context, tenantID, keywordID int64) (*models.Keyword, error) {
	query := `SELECT ` + keywordSelectList + ` FROM keywords WHERE id = $1 AND tenant_id = $2`

	var kw models.Keyword
	if err := r.db.GetContext(ctx, &kw, query, keywordID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get keyword: %w", err)
	}
	return &kw, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	CampaignID int64
	Status     string
	Limit      int
	Offset     int
}

// List returns the tenant's keywords, newest first.
func (r *KeywordRepository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]models.Keyword, error) {
	query := `SELECT ` + keywordSelectList + ` FROM keywords WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.CampaignID > 0 {
		args = append(args, filter.CampaignID)
		query += fmt.Sprintf(" AND campaign_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	keywords := []models.Keyword{}
	if err := r.db.SelectContext(ctx, &keywords, query, args...); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return keywords, nil
}

// CountPendingByIDs returns how many of the given ids are pending keywords
// owned by the tenant. Batch validation compares this against the requested
// id count.
func (r *KeywordRepository) CountPendingByIDs(ctx context.Context, tenantID int64, ids []int64) (int, error) {
	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM keywords
		WHERE tenant_id = ? AND status = 'pending' AND id IN (?)`, tenantID, ids)
	if err != nil {
		return 0, fmt.Errorf("build pending count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count pending keywords: %w", err)
	}
	return count, nil
}

// ClaimForProcessing atomically moves a pending keyword to processing.
// The conditional update makes the claim safe against concurrent batch
// submissions; a false return means another worker got there first or the
// keyword is no longer pending.
func (r *KeywordRepository) ClaimForProcessing(ctx context.Context, tenantID, keywordID int64) (bool, error) {
	query := `
		UPDATE keywords
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, keywordID, tenantID)
	if err != nil {
		return false, fmt.Errorf("claim keyword: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return rows > 0, nil
}

// MarkCompleted finalizes a successful generation attempt.
func (r *KeywordRepository) MarkCompleted(ctx context.Context, tenantID, keywordID int64) error {
	query := `
		UPDATE keywords
		SET status = 'completed', blog_generated = TRUE, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`
	return r.execExpectOneRow(ctx, "mark completed", query, keywordID, tenantID)
}

// MarkFailed finalizes a failed generation attempt.
func (r *KeywordRepository) MarkFailed(ctx context.Context, tenantID, keywordID int64) error {
	query := `
		UPDATE keywords
		SET status = 'failed', processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`
	return r.execExpectOneRow(ctx, "mark failed", query, keywordID, tenantID)
}

// Reset returns a keyword to pending and removes failed blog attempts for
// it. Blogs in draft or published state are kept. Safe to call repeatedly.
func (r *KeywordRepository) Reset(ctx context.Context, tenantID, keywordID int64) (*models.Keyword, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reset tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		UPDATE keywords
		SET status = 'pending', blog_generated = FALSE, processed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + keywordSelectList

	var kw models.Keyword
	if err := tx.GetContext(ctx, &kw, query, keywordID, tenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("reset keyword: %w", err)
	}

	deleteQuery := `
		DELETE FROM generated_blogs
		WHERE keyword_id = $1 AND tenant_id = $2 AND status = 'failed'`
	if _, err := tx.ExecContext(ctx, deleteQuery, keywordID, tenantID); err != nil {
		return nil, fmt.Errorf("delete failed blogs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reset: %w", err)
	}
	return &kw, nil
}

// Delete removes one keyword owned by the tenant.
func (r *KeywordRepository) Delete(ctx context.Context, tenantID, keywordID int64) error {
	query := `DELETE FROM keywords WHERE id = $1 AND tenant_id = $2`
	return r.execExpectOneRow(ctx, "delete keyword", query, keywordID, tenantID)
}

// BulkDelete removes the given keywords and their blogs. All ids must belong
// to the tenant; a partial match deletes nothing and reports how many ids
// actually matched.
func (r *KeywordRepository) BulkDelete(ctx context.Context, tenantID int64, ids []int64) (int64, error) {
	query, args, err := sqlx.In(`
		SELECT COUNT(*) FROM keywords WHERE tenant_id = ? AND id IN (?)`, tenantID, ids)
	if err != nil {
		return 0, fmt.Errorf("build ownership query: %w", err)
	}

	var owned int64
	if err := r.db.GetContext(ctx, &owned, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("check keyword ownership: %w", err)
	}
	if owned != int64(len(ids)) {
		return owned, models.ErrKeywordsUnavailable
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	blogQuery, blogArgs, err := sqlx.In(`
		DELETE FROM generated_blogs WHERE tenant_id = ? AND keyword_id IN (?)`, tenantID, ids)
	if err != nil {
		return 0, fmt.Errorf("build blog delete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(blogQuery), blogArgs...); err != nil {
		return 0, fmt.Errorf("delete keyword blogs: %w", err)
	}

	kwQuery, kwArgs, err := sqlx.In(`
		DELETE FROM keywords WHERE tenant_id = ? AND id IN (?)`, tenantID, ids)
	if err != nil {
		return 0, fmt.Errorf("build keyword delete query: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(kwQuery), kwArgs...)
	if err != nil {
		return 0, fmt.Errorf("delete keywords: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get affected rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk delete: %w", err)
	}
	return deleted, nil
}

// KeywordStats summarizes the tenant's keyword pipeline.
type KeywordStats struct {
	Total          int `db:"total" json:"total_keywords"`
	Pending        int `db:"pending" json:"pending"`
	Processing     int `db:"processing" json:"processing"`
	Completed      int `db:"completed" json:"completed"`
	Failed         int `db:"failed" json:"failed"`
	BlogsGenerated int `db:"blogs_generated" json:"blogs_generated"`
}

// Stats returns keyword status counts for the tenant.
func (r *KeywordRepository) Stats(ctx context.Context, tenantID int64) (*KeywordStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'processing') AS processing,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE blog_generated) AS blogs_generated
		FROM keywords
		WHERE tenant_id = $1`

	var stats KeywordStats
	if err := r.db.GetContext(ctx, &stats, query, tenantID); err != nil {
		return nil, fmt.Errorf("keyword stats: %w", err)
	}
	return &stats, nil
}

// ResetStaleProcessing marks keywords stuck in processing longer than
// olderThan as failed. Recovers claims orphaned by a crashed worker.
func (r *KeywordRepository) ResetStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE keywords
		SET status = 'failed', processed_at = NOW(), updated_at = NOW()
		WHERE status = 'processing'
		  AND updated_at < NOW() - $1::interval`

	result, err := r.db.ExecContext(ctx, query, olderThan.String())
	if err != nil {
		return 0, fmt.Errorf("reset stale processing: %w", err)
	}
	return result.RowsAffected()
}

func (r *KeywordRepository) execExpectOneRow(ctx context.Context, op, query string, args ...any) error {
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
