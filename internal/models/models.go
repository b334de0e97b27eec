// Package models defines the tenant-scoped domain records shared across the
// service. Every table carries a tenant id; repositories filter on it for
// every query.
package models

import (
	"database/sql"
	"time"
)

// Keyword processing lifecycle. A keyword moves pending -> processing ->
// {completed, failed} exactly once per generation attempt. A failed keyword
// can be manually reset back to pending.
const (
	KeywordStatusPending    = "pending"
	KeywordStatusProcessing = "processing"
	KeywordStatusCompleted  = "completed"
	KeywordStatusFailed     = "failed"
)

// Blog publish lifecycle.
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	BlogStatusFailed    = "failed"
)

// Tenant is an isolated customer account.
type Tenant struct {
	ID               int64          `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Slug             string         `db:"slug" json:"slug"`
	CustomDomain     sql.NullString `db:"custom_domain" json:"custom_domain,omitempty"`
	SubscriptionPlan string         `db:"subscription_plan" json:"subscription_plan"`
	MonthlyBlogLimit int            `db:"monthly_blog_limit" json:"monthly_blog_limit"`
	MonthlyBlogsUsed int            `db:"monthly_blogs_used" json:"monthly_blogs_used"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// ShopifyStore holds the connection details for one target store.
type ShopifyStore struct {
	ID                     int64          `db:"id" json:"id"`
	TenantID               int64          `db:"tenant_id" json:"-"`
	StoreName              string         `db:"store_name" json:"store_name"`
	ShopURL                string         `db:"shop_url" json:"shop_url"` // subdomain only, e.g. "mystore"
	AccessToken            string         `db:"access_token" json:"-"`
	BlogHandle             string         `db:"blog_handle" json:"blog_handle"`
	CustomDomain           sql.NullString `db:"custom_domain" json:"custom_domain,omitempty"`
	DefaultProductURL      sql.NullString `db:"default_product_url" json:"default_product_url,omitempty"`
	ProductIntegrationText sql.NullString `db:"product_integration_text" json:"product_integration_text,omitempty"`
	AutoPublish            bool           `db:"auto_publish" json:"auto_publish"`
	IsActive               bool           `db:"is_active" json:"is_active"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
}

// Product is a catalog item whose keyword tags drive blog integration links.
// Read-only from the matcher's point of view.
type Product struct {
	ID              int64          `db:"id" json:"id"`
	TenantID        int64          `db:"tenant_id" json:"-"`
	StoreID         int64          `db:"store_id" json:"store_id"`
	Name            string         `db:"name" json:"name"`
	Description     sql.NullString `db:"description" json:"description,omitempty"`
	URL             string         `db:"url" json:"url"`
	Price           sql.NullString `db:"price" json:"price,omitempty"`
	Keywords        sql.NullString `db:"keywords" json:"keywords,omitempty"` // comma-separated tags
	IntegrationText sql.NullString `db:"integration_text" json:"integration_text,omitempty"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	Priority        int            `db:"priority" json:"priority"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// KeywordCampaign groups keywords that share generation settings.
type KeywordCampaign struct {
	ID           int64          `db:"id" json:"id"`
	TenantID     int64          `db:"tenant_id" json:"-"`
	Name         string         `db:"name" json:"name"`
	Description  sql.NullString `db:"description" json:"description,omitempty"`
	TemplateType string         `db:"template_type" json:"template_type"`
	MinWords     int            `db:"min_words" json:"min_words"`
	FAQCount     int            `db:"faq_count" json:"faq_count"`
	AutoGenerate bool           `db:"auto_generate" json:"auto_generate"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Keyword is a single search term driving one candidate article.
type Keyword struct {
	ID            int64           `db:"id" json:"id"`
	TenantID      int64           `db:"tenant_id" json:"-"`
	CampaignID    sql.NullInt64   `db:"campaign_id" json:"campaign_id,omitempty"`
	Keyword       string          `db:"keyword" json:"keyword"`
	SearchVolume  sql.NullInt64   `db:"search_volume" json:"search_volume,omitempty"`
	Difficulty    sql.NullFloat64 `db:"keyword_difficulty" json:"keyword_difficulty,omitempty"`
	Category      sql.NullString  `db:"category" json:"category,omitempty"`
	Status        string          `db:"status" json:"status"`
	BlogGenerated bool            `db:"blog_generated" json:"blog_generated"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt   sql.NullTime    `db:"processed_at" json:"processed_at,omitempty"`
}

// GeneratedBlog is one generation attempt's output. Created once per
// successful generation; mutated by the publisher afterwards.
type GeneratedBlog struct {
	ID               int64           `db:"id" json:"id"`
	TenantID         int64           `db:"tenant_id" json:"-"`
	StoreID          sql.NullInt64   `db:"store_id" json:"store_id,omitempty"`
	KeywordID        sql.NullInt64   `db:"keyword_id" json:"keyword_id,omitempty"`
	Title            string          `db:"title" json:"title"`
	ContentHTML      string          `db:"content_html" json:"content_html"`
	MetaDescription  sql.NullString  `db:"meta_description" json:"meta_description,omitempty"`
	WordCount        sql.NullInt64   `db:"word_count" json:"word_count,omitempty"`
	FeaturedImageURL sql.NullString  `db:"featured_image_url" json:"featured_image_url,omitempty"`
	ImagePrompt      sql.NullString  `db:"image_prompt" json:"image_prompt,omitempty"`
	TemplateUsed     sql.NullString  `db:"template_used" json:"template_used,omitempty"`
	GenerationTime   sql.NullFloat64 `db:"generation_time" json:"generation_time,omitempty"` // seconds
	TokensUsed       sql.NullInt64   `db:"tokens_used" json:"tokens_used,omitempty"`
	Status           string          `db:"status" json:"status"`
	Published        bool            `db:"published" json:"published"`
	ShopifyArticleID sql.NullString  `db:"shopify_article_id" json:"shopify_article_id,omitempty"`
	ShopifyHandle    sql.NullString  `db:"shopify_handle" json:"shopify_handle,omitempty"`
	LiveURL          sql.NullString  `db:"live_url" json:"live_url,omitempty"`
	ErrorMessage     sql.NullString  `db:"error_message" json:"error_message,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	PublishedAt      sql.NullTime    `db:"published_at" json:"published_at,omitempty"`
}

// UsageRecord tracks per-tenant daily generation activity.
type UsageRecord struct {
	ID             int64     `db:"id" json:"id"`
	TenantID       int64     `db:"tenant_id" json:"-"`
	Date           time.Time `db:"date" json:"date"`
	BlogsGenerated int       `db:"blogs_generated" json:"blogs_generated"`
	TokensUsed     int64     `db:"tokens_used" json:"tokens_used"`
	APICallsMade   int       `db:"api_calls_made" json:"api_calls_made"`
}
