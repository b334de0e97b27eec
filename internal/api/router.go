// Package api exposes the HTTP surface of the service: keyword uploads,
// blog generation and publishing, product and store management.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/database"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/metrics"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/ratelimit"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/shopify"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/worker"
)

const (
	healthCheckTimeout = 2 * time.Second
	serviceVersion     = "1.0.0"
	serviceName        = "seo-blog-generator"
)

// BatchEnqueuer dispatches blog generation batches.
type BatchEnqueuer interface {
	EnqueueBatch(ctx context.Context, tenantID int64, req worker.BatchRequest) (*worker.BatchResult, error)
}

// ArticlePublisher pushes a stored blog to Shopify on demand.
type ArticlePublisher interface {
	Publish(ctx context.Context, store *models.ShopifyStore, article shopify.Article) (*shopify.PublishResult, error)
}

// Router wires handlers to their dependencies.
type Router struct {
	keywords  *database.KeywordRepository
	blogs     *database.BlogRepository
	products  *database.ProductRepository
	stores    *database.StoreRepository
	tenants   *database.TenantRepository
	campaigns *database.CampaignRepository
	enqueuer  BatchEnqueuer
	publisher ArticlePublisher
	limiter   *ratelimit.Limiter // nil disables rate limiting
	metrics   *metrics.Metrics
	cfg       *config.Config
	db        *sqlx.DB
	redis     *redis.Client
	logger    logger.Logger
}

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	DB        *sqlx.DB
	Redis     *redis.Client
	Enqueuer  BatchEnqueuer
	Publisher ArticlePublisher
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	Config    *config.Config
	Logger    logger.Logger
}

// NewRouter creates the API router and its repositories.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		keywords:  database.NewKeywordRepository(deps.DB),
		blogs:     database.NewBlogRepository(deps.DB),
		products:  database.NewProductRepository(deps.DB),
		stores:    database.NewStoreRepository(deps.DB),
		tenants:   database.NewTenantRepository(deps.DB),
		campaigns: database.NewCampaignRepository(deps.DB),
		enqueuer:  deps.Enqueuer,
		publisher: deps.Publisher,
		limiter:   deps.Limiter,
		metrics:   deps.Metrics,
		cfg:       deps.Config,
		db:        deps.DB,
		redis:     deps.Redis,
		logger:    deps.Logger,
	}
}

// Engine builds the gin engine with all routes and middleware.
func (r *Router) Engine() *gin.Engine {
	if !r.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(r.logger))

	engine.GET("/health", r.healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	v1.Use(authMiddleware(r.cfg.Auth.JWTSecret))
	if r.limiter != nil {
		v1.Use(rateLimitMiddleware(r.limiter, r.logger))
	}

	keywords := v1.Group("/keywords")
	keywords.POST("/upload", r.uploadKeywords)
	keywords.GET("", r.listKeywords)
	keywords.GET("/stats", r.keywordStats)
	keywords.GET("/campaigns", r.listCampaigns)
	keywords.POST("/campaigns", r.createCampaign)
	keywords.POST("/bulk-delete", r.bulkDeleteKeywords)
	keywords.POST("/:id/reset", r.resetKeyword)
	keywords.DELETE("/:id", r.deleteKeyword)

	blogs := v1.Group("/blogs")
	blogs.POST("/generate", r.generateBlogs)
	blogs.GET("", r.listBlogs)
	blogs.GET("/stats/overview", r.blogStatsOverview)
	blogs.GET("/:id", r.getBlog)
	blogs.POST("/:id/publish", r.publishBlog)

	products := v1.Group("/products")
	products.GET("", r.listProducts)
	products.POST("", r.createProduct)
	products.GET("/by-keyword/:keyword", r.productsByKeyword)
	products.PUT("/:id", r.updateProduct)
	products.DELETE("/:id", r.deleteProduct)

	stores := v1.Group("/stores")
	stores.GET("", r.listStores)
	stores.POST("", r.createStore)

	return engine
}

// healthCheck reports service, database, and Redis health.
func (r *Router) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	health := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	}

	dbConnected := r.db.PingContext(ctx) == nil
	health["database"] = gin.H{"connected": dbConnected}
	if !dbConnected {
		health["status"] = "degraded"
	}

	if r.redis != nil {
		redisConnected := r.redis.Ping(ctx).Err() == nil
		health["redis"] = gin.H{"connected": redisConnected}
		if !redisConnected {
			health["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, health)
}
