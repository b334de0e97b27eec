// Package worker runs blog generation in the background: one unit of
// work per keyword, dispatched when a batch is enqueued, plus cron jobs
// that recover stuck keywords and reset monthly usage counters.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/generator"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/metrics"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/shopify"
)

const (
	recoverySchedule     = "@every 5m"
	monthlyResetSchedule = "0 0 1 * *"
	secondsPerBlog       = 180
)

// KeywordStore is the keyword persistence the worker depends on.
type KeywordStore interface {
	GetByID(ctx context.Context, tenantID, keywordID int64) (*models.Keyword, error)
	CountPendingByIDs(ctx context.Context, tenantID int64, ids []int64) (int, error)
	ClaimForProcessing(ctx context.Context, tenantID, keywordID int64) (bool, error)
	MarkCompleted(ctx context.Context, tenantID, keywordID int64) error
	MarkFailed(ctx context.Context, tenantID, keywordID int64) error
	ResetStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error)
}

// BlogStore persists generation results.
type BlogStore interface {
	Insert(ctx context.Context, blog *models.GeneratedBlog) (int64, error)
	MarkPublished(ctx context.Context, tenantID, blogID int64, articleID, handle, liveURL string) error
	MarkPublishFailed(ctx context.Context, tenantID, blogID int64, errorMsg string) error
}

// StoreStore resolves tenant-owned Shopify stores.
type StoreStore interface {
	GetByID(ctx context.Context, tenantID, storeID int64) (*models.ShopifyStore, error)
}

// TenantStore enforces quotas and records usage.
type TenantStore interface {
	ReserveQuota(ctx context.Context, tenantID int64, n int) error
	RecordUsage(ctx context.Context, tenantID int64, blogs int, tokens int64) error
	ResetMonthlyUsage(ctx context.Context) (int64, error)
}

// ProductMatcher finds products to integrate into generated content.
type ProductMatcher interface {
	Match(ctx context.Context, tenantID, storeID int64, keyword string) ([]matcher.MatchedProduct, error)
}

// ContentGenerator produces a blog article for a keyword.
type ContentGenerator interface {
	Generate(ctx context.Context, keyword, templateType string, products []matcher.MatchedProduct) (*generator.Result, error)
}

// Publisher pushes articles to the external blogging platform.
type Publisher interface {
	Publish(ctx context.Context, store *models.ShopifyStore, article shopify.Article) (*shopify.PublishResult, error)
}

// BatchRequest asks for blogs for a set of pending keywords.
type BatchRequest struct {
	KeywordIDs   []int64
	StoreID      int64
	TemplateType string
	AutoPublish  bool
}

// BatchResult reports an accepted batch.
type BatchResult struct {
	JobID               string
	Queued              int
	EstimatedCompletion time.Duration
}

// Worker dispatches and runs blog generation units of work.
type Worker struct {
	keywords KeywordStore
	blogs    BlogStore
	stores   StoreStore
	tenants  TenantStore
	matcher  ProductMatcher
	gen      ContentGenerator
	images   generator.ImageGenerator // nil when image generation is disabled
	pub      Publisher
	metrics  *metrics.Metrics
	cfg      config.GeneratorConfig
	logger   logger.Logger
	tracer   trace.Tracer

	cron    *cron.Cron
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// New creates a worker. The image generator may be nil.
func New(
	keywords KeywordStore,
	blogs BlogStore,
	stores StoreStore,
	tenants TenantStore,
	productMatcher ProductMatcher,
	gen ContentGenerator,
	images generator.ImageGenerator,
	pub Publisher,
	m *metrics.Metrics,
	cfg config.GeneratorConfig,
	log logger.Logger,
) *Worker {
	return &Worker{
		keywords: keywords,
		blogs:    blogs,
		stores:   stores,
		tenants:  tenants,
		matcher:  productMatcher,
		gen:      gen,
		images:   images,
		pub:      pub,
		metrics:  m,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer("blog-worker"),
		cron:     cron.New(),
	}
}

// Start schedules the recovery and monthly reset jobs.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	if _, err := w.cron.AddFunc(recoverySchedule, func() { w.recoverStale(ctx) }); err != nil {
		return fmt.Errorf("schedule recovery job: %w", err)
	}
	if _, err := w.cron.AddFunc(monthlyResetSchedule, func() { w.resetMonthlyUsage(ctx) }); err != nil {
		return fmt.Errorf("schedule monthly reset job: %w", err)
	}
	w.cron.Start()
	w.started = true

	w.logger.Info("blog worker started",
		logger.Duration("generation_timeout", w.cfg.GenerationTimeout),
		logger.Duration("stale_claim_age", w.cfg.StaleClaimAge),
	)
	return nil
}

// Stop waits for in-flight units of work and stops the cron jobs.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	<-w.cron.Stop().Done()
	w.wg.Wait()
	w.logger.Info("blog worker stopped")
}

// EnqueueBatch validates a batch synchronously, reserves quota, and
// dispatches one goroutine per keyword. It returns as soon as the work
// is dispatched; progress is observed through keyword and blog state.
func (w *Worker) EnqueueBatch(ctx context.Context, tenantID int64, req BatchRequest) (*BatchResult, error) {
	if len(req.KeywordIDs) == 0 {
		return nil, fmt.Errorf("no keywords given: %w", models.ErrKeywordsUnavailable)
	}

	pending, err := w.keywords.CountPendingByIDs(ctx, tenantID, req.KeywordIDs)
	if err != nil {
		return nil, fmt.Errorf("validate keywords: %w", err)
	}
	if pending != len(req.KeywordIDs) {
		return nil, models.ErrKeywordsUnavailable
	}

	store, err := w.stores.GetByID(ctx, tenantID, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("validate store: %w", err)
	}

	if err := w.tenants.ReserveQuota(ctx, tenantID, len(req.KeywordIDs)); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	for _, keywordID := range req.KeywordIDs {
		w.wg.Add(1)
		go w.processKeyword(jobID, tenantID, keywordID, store, req)
	}

	w.logger.Info("blog generation batch queued",
		logger.String("job_id", jobID),
		logger.Int64("tenant_id", tenantID),
		logger.Int64("store_id", req.StoreID),
		logger.Int("keywords", len(req.KeywordIDs)),
		logger.Bool("auto_publish", req.AutoPublish),
	)

	return &BatchResult{
		JobID:               jobID,
		Queued:              len(req.KeywordIDs),
		EstimatedCompletion: time.Duration(len(req.KeywordIDs)*secondsPerBlog) * time.Second,
	}, nil
}

// processKeyword is one unit of work. It runs on its own context so a
// finished HTTP request cannot cancel it, and it always leaves the
// keyword in a terminal state.
func (w *Worker) processKeyword(jobID string, tenantID, keywordID int64, store *models.ShopifyStore, req BatchRequest) {
	defer w.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.GenerationTimeout)
	defer cancel()

	ctx, span := w.tracer.Start(ctx, "worker.generate_blog",
		trace.WithAttributes(
			attribute.String("job_id", jobID),
			attribute.Int64("tenant_id", tenantID),
			attribute.Int64("keyword_id", keywordID),
			attribute.String("template", req.TemplateType),
		))
	defer span.End()

	w.metrics.BlogsInFlight.Inc()
	defer w.metrics.BlogsInFlight.Dec()

	claimed, err := w.keywords.ClaimForProcessing(ctx, tenantID, keywordID)
	if err != nil {
		w.logger.Error("failed to claim keyword",
			logger.Int64("keyword_id", keywordID),
			logger.Error(err))
		return
	}
	if !claimed {
		// Someone else took it, or it is no longer pending.
		w.logger.Debug("keyword claim skipped", logger.Int64("keyword_id", keywordID))
		return
	}

	if err := w.generateOne(ctx, tenantID, keywordID, store, req); err != nil {
		w.failKeyword(tenantID, keywordID, err)
		return
	}

	if err := w.keywords.MarkCompleted(ctx, tenantID, keywordID); err != nil {
		w.logger.Error("failed to mark keyword completed",
			logger.Int64("keyword_id", keywordID),
			logger.Error(err))
	}
}

func (w *Worker) generateOne(ctx context.Context, tenantID, keywordID int64, store *models.ShopifyStore, req BatchRequest) error {
	kw, err := w.keywords.GetByID(ctx, tenantID, keywordID)
	if err != nil {
		return fmt.Errorf("load keyword: %w", err)
	}

	products, err := w.matcher.Match(ctx, tenantID, req.StoreID, kw.Keyword)
	if err != nil {
		// Product matching is best effort; generate without integrations.
		w.logger.Warn("product matching failed",
			logger.String("keyword", kw.Keyword),
			logger.Error(err))
		products = nil
	}

	result, err := w.gen.Generate(ctx, kw.Keyword, req.TemplateType, products)
	if err != nil {
		w.metrics.BlogsGeneratedTotal.WithLabelValues("failed").Inc()
		return err
	}
	w.metrics.BlogsGeneratedTotal.WithLabelValues("completed").Inc()
	w.metrics.GenerationSeconds.Observe(result.GenerationTime)
	w.metrics.TokensUsedTotal.Add(float64(result.TokensUsed))

	blog := &models.GeneratedBlog{
		TenantID:        tenantID,
		StoreID:         sql.NullInt64{Int64: req.StoreID, Valid: true},
		KeywordID:       sql.NullInt64{Int64: keywordID, Valid: true},
		Title:           result.Title,
		ContentHTML:     result.ContentHTML,
		MetaDescription: sql.NullString{String: result.MetaDescription, Valid: true},
		WordCount:       sql.NullInt64{Int64: int64(result.WordCount), Valid: true},
		TemplateUsed:    sql.NullString{String: result.TemplateUsed, Valid: true},
		GenerationTime:  sql.NullFloat64{Float64: result.GenerationTime, Valid: true},
		TokensUsed:      sql.NullInt64{Int64: int64(result.TokensUsed), Valid: true},
		Status:          models.BlogStatusDraft,
	}

	var image generator.ImageResult
	if w.images != nil {
		image, err = w.images.GenerateImage(ctx, kw.Keyword)
		if err != nil {
			// Non-fatal: the blog simply has no featured image.
			w.logger.Warn("image generation failed",
				logger.String("keyword", kw.Keyword),
				logger.Error(err))
		} else {
			blog.FeaturedImageURL = sql.NullString{String: image.URL, Valid: true}
			blog.ImagePrompt = sql.NullString{String: image.Prompt, Valid: true}
		}
	}

	blogID, err := w.blogs.Insert(ctx, blog)
	if err != nil {
		return fmt.Errorf("persist blog: %w", err)
	}

	if err := w.tenants.RecordUsage(ctx, tenantID, 1, int64(result.TokensUsed)); err != nil {
		w.logger.Warn("failed to record usage", logger.Error(err))
	}

	if req.AutoPublish {
		w.publishBlog(ctx, tenantID, blogID, kw.Keyword, result.Title, result.ContentHTML, image.URL, store)
	}

	return nil
}

// publishBlog pushes the article to Shopify. Publish failure marks the
// blog failed but does not fail the keyword: the content exists and can
// be re-published later.
func (w *Worker) publishBlog(ctx context.Context, tenantID, blogID int64, keyword, title, contentHTML, imageURL string, store *models.ShopifyStore) {
	pubCtx, cancel := context.WithTimeout(ctx, w.cfg.PublishTimeout)
	defer cancel()

	handle := shopify.ArticleHandle(keyword)
	if handle == "" {
		handle = shopify.FallbackHandle(blogID)
	}

	result, err := w.pub.Publish(pubCtx, store, shopify.Article{
		Title:    title,
		BodyHTML: contentHTML,
		Handle:   handle,
		Keyword:  keyword,
		ImageURL: imageURL,
	})
	if err != nil {
		w.metrics.PublishAttemptsTotal.WithLabelValues("failed").Inc()
		w.logger.Error("auto-publish failed",
			logger.Int64("blog_id", blogID),
			logger.Error(err))
		if markErr := w.blogs.MarkPublishFailed(ctx, tenantID, blogID, err.Error()); markErr != nil {
			w.logger.Error("failed to mark blog publish failure",
				logger.Int64("blog_id", blogID),
				logger.Error(markErr))
		}
		return
	}

	w.metrics.PublishAttemptsTotal.WithLabelValues("published").Inc()
	if err := w.blogs.MarkPublished(ctx, tenantID, blogID, result.ArticleID, result.Handle, result.LiveURL); err != nil {
		w.logger.Error("failed to mark blog published",
			logger.Int64("blog_id", blogID),
			logger.Error(err))
	}
}

func (w *Worker) failKeyword(tenantID, keywordID int64, cause error) {
	// Fresh context: the unit's context may already be expired, and a
	// keyword must never be left in processing.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w.logger.Error("blog generation failed",
		logger.Int64("keyword_id", keywordID),
		logger.Error(cause))

	if err := w.keywords.MarkFailed(ctx, tenantID, keywordID); err != nil {
		w.logger.Error("failed to mark keyword failed",
			logger.Int64("keyword_id", keywordID),
			logger.Error(err))
	}
}

// recoverStale resets keywords stuck in processing longer than the
// configured age. Crashed or timed-out units land here.
func (w *Worker) recoverStale(ctx context.Context) {
	reset, err := w.keywords.ResetStaleProcessing(ctx, w.cfg.StaleClaimAge)
	if err != nil {
		w.logger.Error("stale keyword recovery failed", logger.Error(err))
		return
	}
	if reset > 0 {
		w.metrics.StaleKeywordsResetsTotal.Add(float64(reset))
		w.logger.Warn("recovered stale processing keywords", logger.Int64("reset", reset))
	}
}

func (w *Worker) resetMonthlyUsage(ctx context.Context) {
	tenants, err := w.tenants.ResetMonthlyUsage(ctx)
	if err != nil {
		w.logger.Error("monthly usage reset failed", logger.Error(err))
		return
	}
	w.logger.Info("monthly usage counters reset", logger.Int64("tenants", tenants))
}

// IsRunning reports whether the worker has been started.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}
