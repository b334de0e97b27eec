package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/generator"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/shopify"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/worker"
)

// generateBlogs queues a batch of keywords for background generation.
// POST /api/v1/blogs/generate
func (r *Router) generateBlogs(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req struct {
		KeywordIDs   []int64 `json:"keyword_ids" binding:"required,min=1"`
		StoreID      int64   `json:"store_id" binding:"required"`
		TemplateType string  `json:"template_type"`
		AutoPublish  bool    `json:"auto_publish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if len(req.KeywordIDs) > r.cfg.Limits.MaxBlogsPerBatch {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Maximum %d keywords per batch", r.cfg.Limits.MaxBlogsPerBatch),
		})
		return
	}
	if req.TemplateType == "" {
		req.TemplateType = generator.DefaultTemplateType
	}
	if !generator.IsValidTemplateType(req.TemplateType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template type"})
		return
	}

	result, err := r.enqueuer.EnqueueBatch(c.Request.Context(), tenant, worker.BatchRequest{
		KeywordIDs:   req.KeywordIDs,
		StoreID:      req.StoreID,
		TemplateType: req.TemplateType,
		AutoPublish:  req.AutoPublish,
	})
	if err != nil {
		handleRepositoryError(c, err, "blog generation", "start")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              fmt.Sprintf("Started generation of %d blogs", result.Queued),
		"job_id":               result.JobID,
		"blogs_queued":         result.Queued,
		"estimated_completion": fmt.Sprintf("%d minutes", int(result.EstimatedCompletion.Minutes())),
	})
}

// listBlogs returns blog summaries without the full HTML body.
// GET /api/v1/blogs?status=&limit=&offset=
func (r *Router) listBlogs(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Offset must be non-negative"})
			return
		}
		offset = n
	}
	status := c.Query("status")
	if status != "" && !validBlogStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of: draft, published, failed"})
		return
	}

	blogs, err := r.blogs.List(c.Request.Context(), tenant, status, limit, offset)
	if err != nil {
		handleRepositoryError(c, err, "blogs", "list")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blogs": blogs,
		"count": len(blogs),
	})
}

func validBlogStatus(status string) bool {
	switch status {
	case models.BlogStatusDraft, models.BlogStatusPublished, models.BlogStatusFailed:
		return true
	}
	return false
}

// getBlog returns one blog including its full HTML content.
// GET /api/v1/blogs/:id
func (r *Router) getBlog(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	blogID, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}

	blog, err := r.blogs.GetByID(c.Request.Context(), tenant, blogID)
	if err != nil {
		handleRepositoryError(c, err, "blog", "load")
		return
	}

	c.JSON(http.StatusOK, blog)
}

// publishBlog pushes a stored draft to Shopify. Re-publishing is allowed
// only for demo articles; a blog with a real Shopify article id is final.
// POST /api/v1/blogs/:id/publish
func (r *Router) publishBlog(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	blogID, ok := parseID(c, "id", "blog")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	blog, err := r.blogs.GetByID(ctx, tenant, blogID)
	if err != nil {
		handleRepositoryError(c, err, "blog", "load")
		return
	}
	if blog.Published && blog.ShopifyArticleID.Valid &&
		!strings.HasPrefix(blog.ShopifyArticleID.String, "demo_") {
		handleRepositoryError(c, models.ErrAlreadyPublished, "blog", "publish")
		return
	}
	if !blog.StoreID.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Blog has no associated store"})
		return
	}

	store, err := r.stores.GetByID(ctx, tenant, blog.StoreID.Int64)
	if err != nil {
		handleRepositoryError(c, err, "store", "load")
		return
	}

	article := shopify.Article{
		Title:    blog.Title,
		BodyHTML: blog.ContentHTML,
	}
	if blog.FeaturedImageURL.Valid {
		article.ImageURL = blog.FeaturedImageURL.String
	}
	if blog.KeywordID.Valid {
		if keyword, err := r.keywords.GetByID(ctx, tenant, blog.KeywordID.Int64); err == nil {
			article.Keyword = keyword.Keyword
			article.Handle = shopify.ArticleHandle(keyword.Keyword)
		}
	}
	if article.Handle == "" {
		article.Handle = shopify.FallbackHandle(blog.ID)
	}

	result, err := r.publisher.Publish(ctx, store, article)
	if err != nil {
		r.logger.Error("publish failed",
			logger.Int64("blog_id", blog.ID),
			logger.Error(err))
		if markErr := r.blogs.MarkPublishFailed(ctx, tenant, blog.ID, err.Error()); markErr != nil {
			r.logger.Error("mark publish failed", logger.Int64("blog_id", blog.ID), logger.Error(markErr))
		}
		r.metrics.PublishAttemptsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish blog to Shopify"})
		return
	}

	if err := r.blogs.MarkPublished(ctx, tenant, blog.ID, result.ArticleID, result.Handle, result.LiveURL); err != nil {
		handleRepositoryError(c, err, "blog", "update")
		return
	}
	r.metrics.PublishAttemptsTotal.WithLabelValues("published").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Blog published successfully",
		"live_url":  result.LiveURL,
		"demo_mode": result.DemoMode,
	})
}

// blogStatsOverview returns counts, monthly quota usage and success rate.
// GET /api/v1/blogs/stats/overview
func (r *Router) blogStatsOverview(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	stats, err := r.blogs.Stats(ctx, tenant)
	if err != nil {
		handleRepositoryError(c, err, "blog stats", "load")
		return
	}
	account, err := r.tenants.GetByID(ctx, tenant)
	if err != nil {
		handleRepositoryError(c, err, "tenant", "load")
		return
	}

	usagePct := 0.0
	if account.MonthlyBlogLimit > 0 {
		usagePct = round2(float64(account.MonthlyBlogsUsed) / float64(account.MonthlyBlogLimit) * 100)
	}
	successRate := 0.0
	if stats.Total > 0 {
		successRate = round2(float64(stats.Published) / float64(stats.Total) * 100)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_blogs":     stats.Total,
		"published_blogs": stats.Published,
		"draft_blogs":     stats.Draft,
		"failed_blogs":    stats.Failed,
		"monthly_usage": gin.H{
			"blogs_used":       account.MonthlyBlogsUsed,
			"blogs_limit":      account.MonthlyBlogLimit,
			"usage_percentage": usagePct,
		},
		"success_rate": successRate,
	})
}
