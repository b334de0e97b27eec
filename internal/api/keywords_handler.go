package api

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/database"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/generator"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/importer"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const defaultCampaignName = "Uploaded Keywords"

// uploadKeywords ingests a CSV or XLSX keyword file.
// POST /api/v1/keywords/upload (multipart: file, campaign_id?, campaign_name?, template_type?)
func (r *Router) uploadKeywords(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > r.cfg.Limits.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File size exceeds maximum allowed size of %dMB", r.cfg.Limits.MaxUploadBytes/(1024*1024)),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, r.cfg.Limits.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	if int64(len(data)) > r.cfg.Limits.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File size exceeds maximum allowed size of %dMB", r.cfg.Limits.MaxUploadBytes/(1024*1024)),
		})
		return
	}

	parsed, err := importer.ParseUpload(fileHeader.Filename, data, r.cfg.Limits.MaxKeywordsPerUpload)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrTooManyRows) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	campaign, err := r.resolveCampaign(c, tenant)
	if err != nil {
		return // response already written
	}

	processed := 0
	added := 0
	skipped := parsed.Skipped
	for _, row := range parsed.Rows {
		processed++

		kw := database.NewKeyword{
			CampaignID: sql.NullInt64{Int64: campaign.ID, Valid: true},
			Keyword:    row.Keyword,
		}
		if row.SearchVolume != nil {
			kw.SearchVolume = sql.NullInt64{Int64: *row.SearchVolume, Valid: true}
		}
		if row.Difficulty != nil {
			kw.Difficulty = sql.NullFloat64{Float64: *row.Difficulty, Valid: true}
		}
		if row.Category != nil {
			kw.Category = sql.NullString{String: *row.Category, Valid: true}
		}

		wasAdded, err := r.keywords.Insert(ctx, tenant, kw)
		if err != nil {
			r.logger.Error("keyword insert failed",
				logger.String("keyword", row.Keyword),
				logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store keywords"})
			return
		}
		if wasAdded {
			added++
		} else {
			skipped++
		}
	}

	r.metrics.KeywordsUploadedTotal.Add(float64(added))

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            fmt.Sprintf("Successfully processed %d keywords", processed),
		"keywords_processed": processed,
		"keywords_added":     added,
		"keywords_skipped":   skipped,
		"campaign_id":        campaign.ID,
	})
}

// resolveCampaign loads the campaign named in the form, or creates a new
// one when none is given. Writes the error response itself on failure.
func (r *Router) resolveCampaign(c *gin.Context, tenant int64) (*models.KeywordCampaign, error) {
	ctx := c.Request.Context()

	if raw := c.PostForm("campaign_id"); raw != "" {
		campaignID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || campaignID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
			return nil, errInvalidRequest
		}
		campaign, err := r.campaigns.GetByID(ctx, tenant, campaignID)
		if err != nil {
			handleRepositoryError(c, err, "campaign", "load")
			return nil, err
		}
		return campaign, nil
	}

	name := c.DefaultPostForm("campaign_name", defaultCampaignName)
	templateType := c.DefaultPostForm("template_type", generator.DefaultTemplateType)
	if !generator.IsValidTemplateType(templateType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type"})
		return nil, errInvalidRequest
	}
	tmpl := generator.TemplateByType(templateType)

	campaign := &models.KeywordCampaign{
		TenantID:     tenant,
		Name:         name,
		TemplateType: templateType,
		MinWords:     tmpl.MinWords,
		FAQCount:     tmpl.FAQCount,
	}
	id, err := r.campaigns.Insert(ctx, campaign)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return nil, err
	}
	campaign.ID = id
	return campaign, nil
}

var errInvalidRequest = errors.New("invalid request")

// listKeywords returns the tenant's keywords.
// GET /api/v1/keywords?campaign_id=&status=&limit=&offset=
func (r *Router) listKeywords(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	filter := database.ListFilter{Limit: 100}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be between 1 and 1000"})
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Offset must be non-negative"})
			return
		}
		filter.Offset = offset
	}
	if raw := c.Query("campaign_id"); raw != "" {
		campaignID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || campaignID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign ID must be a positive integer"})
			return
		}
		filter.CampaignID = campaignID
	}
	if status := c.Query("status"); status != "" {
		if !validKeywordStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of: pending, processing, completed, failed"})
			return
		}
		filter.Status = status
	}

	keywords, err := r.keywords.List(c.Request.Context(), tenant, filter)
	if err != nil {
		handleRepositoryError(c, err, "keywords", "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keywords": keywords,
		"count":    len(keywords),
	})
}

func validKeywordStatus(status string) bool {
	switch status {
	case models.KeywordStatusPending, models.KeywordStatusProcessing,
		models.KeywordStatusCompleted, models.KeywordStatusFailed:
		return true
	}
	return false
}

// keywordStats returns status counts and the completion rate.
// GET /api/v1/keywords/stats
func (r *Router) keywordStats(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	stats, err := r.keywords.Stats(c.Request.Context(), tenant)
	if err != nil {
		handleRepositoryError(c, err, "keyword stats", "load")
		return
	}

	completionRate := 0.0
	if stats.Total > 0 {
		completionRate = round2(float64(stats.Completed) / float64(stats.Total) * 100)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_keywords":  stats.Total,
		"pending":         stats.Pending,
		"processing":      stats.Processing,
		"completed":       stats.Completed,
		"failed":          stats.Failed,
		"blogs_generated": stats.BlogsGenerated,
		"completion_rate": completionRate,
	})
}

// deleteKeyword removes one keyword.
// DELETE /api/v1/keywords/:id
func (r *Router) deleteKeyword(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	keywordID, ok := parseID(c, "id", "keyword")
	if !ok {
		return
	}

	if err := r.keywords.Delete(c.Request.Context(), tenant, keywordID); err != nil {
		handleRepositoryError(c, err, "keyword", "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Keyword deleted successfully"})
}

// bulkDeleteKeywords removes a set of keywords and their blogs.
// POST /api/v1/keywords/bulk-delete {"keyword_ids": [...]}
func (r *Router) bulkDeleteKeywords(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req struct {
		KeywordIDs []int64 `json:"keyword_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	deleted, err := r.keywords.BulkDelete(c.Request.Context(), tenant, req.KeywordIDs)
	if err != nil {
		if errors.Is(err, models.ErrKeywordsUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Some keywords not found or don't belong to your account"})
			return
		}
		handleRepositoryError(c, err, "keywords", "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully deleted %d keywords", deleted),
		"deleted_count": deleted,
	})
}

// resetKeyword returns a failed keyword to pending and discards its
// failed blogs so it can be regenerated. Resetting a pending keyword is
// a no-op that still succeeds.
// POST /api/v1/keywords/:id/reset
func (r *Router) resetKeyword(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	keywordID, ok := parseID(c, "id", "keyword")
	if !ok {
		return
	}

	keyword, err := r.keywords.Reset(c.Request.Context(), tenant, keywordID)
	if err != nil {
		handleRepositoryError(c, err, "keyword", "reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Keyword reset successfully",
		"keyword": keyword,
	})
}

// createCampaign creates a keyword campaign.
// POST /api/v1/keywords/campaigns
func (r *Router) createCampaign(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req struct {
		Name         string  `json:"name" binding:"required"`
		Description  *string `json:"description"`
		TemplateType string  `json:"template_type"`
		MinWords     int     `json:"min_words"`
		FAQCount     int     `json:"faq_count"`
		AutoGenerate bool    `json:"auto_generate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.TemplateType == "" {
		req.TemplateType = generator.DefaultTemplateType
	}
	if !generator.IsValidTemplateType(req.TemplateType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type"})
		return
	}
	tmpl := generator.TemplateByType(req.TemplateType)
	if req.MinWords <= 0 {
		req.MinWords = tmpl.MinWords
	}
	if req.FAQCount <= 0 {
		req.FAQCount = tmpl.FAQCount
	}

	campaign := &models.KeywordCampaign{
		TenantID:     tenant,
		Name:         req.Name,
		TemplateType: req.TemplateType,
		MinWords:     req.MinWords,
		FAQCount:     req.FAQCount,
		AutoGenerate: req.AutoGenerate,
	}
	if req.Description != nil {
		campaign.Description = sql.NullString{String: *req.Description, Valid: true}
	}

	id, err := r.campaigns.Insert(c.Request.Context(), campaign)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}
	campaign.ID = id

	c.JSON(http.StatusCreated, campaign)
}

// listCampaigns returns the tenant's campaigns with keyword counts.
// GET /api/v1/keywords/campaigns
func (r *Router) listCampaigns(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	campaigns, err := r.campaigns.List(c.Request.Context(), tenant)
	if err != nil {
		handleRepositoryError(c, err, "campaigns", "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"count":     len(campaigns),
	})
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
