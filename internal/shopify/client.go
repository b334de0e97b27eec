// Package shopify publishes generated articles to the Shopify Admin REST
// API, with a demo mode for stores without real credentials.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const apiVersion = "2025-07"

// ErrHandleTaken reports that the article handle already exists in the
// target blog. Publish retries exactly once with a suffixed handle.
var ErrHandleTaken = errors.New("article handle already taken")

// Article is the content to publish.
type Article struct {
	Title    string
	BodyHTML string
	Handle   string
	Keyword  string // optional, drives SEO tag derivation
	ImageURL string // optional featured image embedded into the body
}

// PublishResult reports a successful publish.
type PublishResult struct {
	ArticleID string
	Handle    string
	LiveURL   string
	DemoMode  bool
}

// Client talks to the Shopify Admin API for one or more stores.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger

	// baseURL overrides the per-store myshopify.com API base in tests.
	baseURL string
}

// NewClient creates a publisher client.
func NewClient(log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

func (c *Client) apiBase(store *models.ShopifyStore) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s", c.baseURL, apiVersion)
	}
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", store.ShopURL, apiVersion)
}

// demoMode is active when the store has no access token or carries a
// demo_ placeholder. No network calls are made.
func demoMode(store *models.ShopifyStore) bool {
	return store.AccessToken == "" || strings.HasPrefix(store.AccessToken, "demo_")
}

// Publish pushes an article to the store's configured blog. On a handle
// collision it retries once with a numeric suffix; all other failures
// surface as a single error.
func (c *Client) Publish(ctx context.Context, store *models.ShopifyStore, article Article) (*PublishResult, error) {
	if demoMode(store) {
		result := &PublishResult{
			ArticleID: fmt.Sprintf("demo_article_%d", time.Now().Unix()),
			Handle:    article.Handle,
			LiveURL:   fmt.Sprintf("https://%s.myshopify.com/blogs/%s/%s", store.ShopURL, store.BlogHandle, article.Handle),
			DemoMode:  true,
		}
		c.logger.Info("demo mode publish, skipping Shopify API",
			logger.String("shop", store.ShopURL),
			logger.String("handle", article.Handle),
		)
		return result, nil
	}

	blogID, err := c.findBlogID(ctx, store)
	if err != nil {
		return nil, err
	}

	body := article.BodyHTML
	if article.ImageURL != "" {
		body = embedImage(body, article.ImageURL, article.Title)
	}
	tags := SEOTags(article.Keyword)

	result, err := c.createArticle(ctx, store, blogID, article, body, tags, article.Handle)
	if errors.Is(err, ErrHandleTaken) {
		retry := collisionHandle(article.Handle)
		c.logger.Warn("article handle taken, retrying with suffix",
			logger.String("handle", article.Handle),
			logger.String("retry_handle", retry),
		)
		result, err = c.createArticle(ctx, store, blogID, article, body, tags, retry)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("article published",
		logger.String("shop", store.ShopURL),
		logger.String("article_id", result.ArticleID),
		logger.String("live_url", result.LiveURL),
	)
	return result, nil
}

type blogsResponse struct {
	Blogs []struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
		Title  string `json:"title"`
	} `json:"blogs"`
}

// findBlogID resolves the store's configured blog handle to its numeric id.
func (c *Client) findBlogID(ctx context.Context, store *models.ShopifyStore) (int64, error) {
	endpoint := c.apiBase(store) + "/blogs.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req, store)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("list blogs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("list blogs failed: %d %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed blogsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode blogs response: %w", err)
	}

	for _, blog := range parsed.Blogs {
		if blog.Handle == store.BlogHandle {
			return blog.ID, nil
		}
	}
	return 0, fmt.Errorf("blog with handle %q not found", store.BlogHandle)
}

type articleRequest struct {
	Article struct {
		Title     string `json:"title"`
		BodyHTML  string `json:"body_html"`
		Handle    string `json:"handle"`
		Published bool   `json:"published"`
		Tags      string `json:"tags"`
	} `json:"article"`
}

type articleResponse struct {
	Article struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
	} `json:"article"`
}

// errorsResponse is Shopify's 422 validation payload: a map of field
// names to error messages.
type errorsResponse struct {
	Errors map[string][]string `json:"errors"`
}

func (c *Client) createArticle(ctx context.Context, store *models.ShopifyStore, blogID int64, article Article, body string, tags []string, handle string) (*PublishResult, error) {
	endpoint := fmt.Sprintf("%s/blogs/%d/articles.json", c.apiBase(store), blogID)

	var payload articleRequest
	payload.Article.Title = article.Title
	payload.Article.BodyHTML = body
	payload.Article.Handle = handle
	payload.Article.Published = true
	payload.Article.Tags = strings.Join(tags, ", ")

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal article payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req, store)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		if isHandleTaken(resp.Body) {
			return nil, ErrHandleTaken
		}
		return nil, fmt.Errorf("create article rejected: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("create article failed: %d %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed articleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode article response: %w", err)
	}

	return &PublishResult{
		ArticleID: fmt.Sprintf("%d", parsed.Article.ID),
		Handle:    parsed.Article.Handle,
		LiveURL:   liveURL(store, parsed.Article.Handle),
	}, nil
}

// isHandleTaken inspects the structured 422 errors payload for a handle
// uniqueness violation.
func isHandleTaken(body io.Reader) bool {
	var parsed errorsResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return false
	}
	for _, msg := range parsed.Errors["handle"] {
		if strings.Contains(msg, "has already been taken") {
			return true
		}
	}
	return false
}

func (c *Client) setAuthHeaders(req *http.Request, store *models.ShopifyStore) {
	req.Header.Set("X-Shopify-Access-Token", store.AccessToken)
	req.Header.Set("Content-Type", "application/json")
}

// liveURL prefers the store's custom domain and falls back to the
// myshopify.com domain.
func liveURL(store *models.ShopifyStore, handle string) string {
	domain := fmt.Sprintf("https://%s.myshopify.com", store.ShopURL)
	if store.CustomDomain.Valid && store.CustomDomain.String != "" {
		domain = "https://" + strings.TrimSuffix(store.CustomDomain.String, "/")
	}
	return fmt.Sprintf("%s/blogs/%s/%s", domain, store.BlogHandle, handle)
}

// embedImage injects a responsive image right after the opening
// paragraph, or prepends it when the body has no paragraph at all.
func embedImage(body, imageURL, alt string) string {
	img := fmt.Sprintf(`<img src=%q alt=%q style="max-width: 100%%; height: auto;" loading="lazy">`, imageURL, alt)
	if idx := strings.Index(body, "</p>"); idx >= 0 {
		insert := idx + len("</p>")
		return body[:insert] + "\n" + img + body[insert:]
	}
	return img + "\n" + body
}
