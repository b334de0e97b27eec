package shopify

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

func testStore() *models.ShopifyStore {
	return &models.ShopifyStore{
		ID:          1,
		TenantID:    1,
		StoreName:   "Test Store",
		ShopURL:     "teststore",
		AccessToken: "shpat_real_token",
		BlogHandle:  "news",
	}
}

func testClient(serverURL string) *Client {
	c := NewClient(logger.NewNopLogger())
	c.baseURL = serverURL
	return c
}

func blogsHandler(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	if r.Header.Get("X-Shopify-Access-Token") != "shpat_real_token" {
		t.Errorf("missing access token header")
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"blogs": []map[string]any{
			{"id": 77, "handle": "news", "title": "News"},
			{"id": 78, "handle": "guides", "title": "Guides"},
		},
	})
}

func TestPublish(t *testing.T) {
	var created articleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/blogs.json"):
			blogsHandler(t, w, r)
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/blogs/77/articles.json"):
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Fatalf("decode article: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"article": map[string]any{"id": 12345, "handle": created.Article.Handle},
			})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	result, err := testClient(server.URL).Publish(context.Background(), testStore(), Article{
		Title:    "Cbd Oil: Complete Professional Guide 2025",
		BodyHTML: "<p>Intro paragraph.</p><p>More.</p>",
		Handle:   "cbd-oil-guide",
		Keyword:  "cbd oil",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ArticleID != "12345" {
		t.Errorf("unexpected article id: %q", result.ArticleID)
	}
	if result.LiveURL != "https://teststore.myshopify.com/blogs/news/cbd-oil-guide" {
		t.Errorf("unexpected live url: %q", result.LiveURL)
	}
	if result.DemoMode {
		t.Error("demo mode should be off with a real token")
	}
	if !created.Article.Published {
		t.Error("article should be created published")
	}
	if !strings.Contains(created.Article.Tags, "CBD") {
		t.Errorf("expected CBD tag, got %q", created.Article.Tags)
	}
}

func TestPublish_CustomDomainLiveURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			blogsHandler(t, w, r)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"article": map[string]any{"id": 1, "handle": "cbd-oil-guide"},
		})
	}))
	defer server.Close()

	store := testStore()
	store.CustomDomain = sql.NullString{String: "www.example.com", Valid: true}

	result, err := testClient(server.URL).Publish(context.Background(), store, Article{
		Title: "T", BodyHTML: "<p>x</p>", Handle: "cbd-oil-guide",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LiveURL != "https://www.example.com/blogs/news/cbd-oil-guide" {
		t.Errorf("unexpected live url: %q", result.LiveURL)
	}
}

func TestPublish_HandleCollisionRetriesOnce(t *testing.T) {
	var handles []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			blogsHandler(t, w, r)
			return
		}
		var req articleRequest
		json.NewDecoder(r.Body).Decode(&req)
		handles = append(handles, req.Article.Handle)

		if len(handles) == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":{"handle":["has already been taken"]}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"article": map[string]any{"id": 2, "handle": req.Article.Handle},
		})
	}))
	defer server.Close()

	result, err := testClient(server.URL).Publish(context.Background(), testStore(), Article{
		Title: "T", BodyHTML: "<p>x</p>", Handle: "cbd-oil-guide",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(handles) != 2 {
		t.Fatalf("expected 2 create attempts, got %d", len(handles))
	}
	if handles[0] != "cbd-oil-guide" {
		t.Errorf("unexpected first handle: %q", handles[0])
	}
	if !strings.HasPrefix(handles[1], "cbd-oil-guide-") || handles[1] == handles[0] {
		t.Errorf("retry handle missing numeric suffix: %q", handles[1])
	}
	if result.Handle != handles[1] {
		t.Errorf("result handle = %q, want %q", result.Handle, handles[1])
	}
}

func TestPublish_CollisionTwiceFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			blogsHandler(t, w, r)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"handle":["has already been taken"]}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), testStore(), Article{
		Title: "T", BodyHTML: "<p>x</p>", Handle: "cbd-oil-guide",
	})
	if err == nil {
		t.Fatal("expected error after second collision")
	}
}

func TestPublish_BlogHandleNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		blogsHandler(t, w, r)
	}))
	defer server.Close()

	store := testStore()
	store.BlogHandle = "missing"

	_, err := testClient(server.URL).Publish(context.Background(), store, Article{
		Title: "T", BodyHTML: "<p>x</p>", Handle: "h",
	})
	if err == nil || !strings.Contains(err.Error(), `blog with handle "missing" not found`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPublish_DemoMode(t *testing.T) {
	for _, token := range []string{"", "demo_token_123"} {
		store := testStore()
		store.AccessToken = token

		// No server: demo mode must not touch the network.
		result, err := NewClient(logger.NewNopLogger()).Publish(context.Background(), store, Article{
			Title: "T", BodyHTML: "<p>x</p>", Handle: "cbd-oil-guide",
		})
		if err != nil {
			t.Fatalf("token %q: unexpected error: %v", token, err)
		}
		if !result.DemoMode {
			t.Errorf("token %q: expected demo mode", token)
		}
		if !strings.HasPrefix(result.ArticleID, "demo_article_") {
			t.Errorf("token %q: unexpected article id %q", token, result.ArticleID)
		}
		if result.LiveURL != "https://teststore.myshopify.com/blogs/news/cbd-oil-guide" {
			t.Errorf("token %q: unexpected live url %q", token, result.LiveURL)
		}
	}
}

func TestPublish_EmbedsImage(t *testing.T) {
	var created articleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			blogsHandler(t, w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&created)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"article": map[string]any{"id": 3, "handle": "h"},
		})
	}))
	defer server.Close()

	_, err := testClient(server.URL).Publish(context.Background(), testStore(), Article{
		Title:    "T",
		BodyHTML: "<p>First.</p><p>Second.</p>",
		Handle:   "h",
		ImageURL: "https://img.example/a.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx := strings.Index(created.Article.BodyHTML, "<img")
	if idx < 0 {
		t.Fatal("image not embedded")
	}
	if idx < strings.Index(created.Article.BodyHTML, "</p>") {
		t.Error("image embedded before the first paragraph close")
	}
}

func TestEmbedImage_NoParagraph(t *testing.T) {
	body := embedImage("<div>no paragraphs</div>", "https://img.example/a.png", "alt")
	if !strings.HasPrefix(body, "<img") {
		t.Errorf("image should be prepended: %q", body)
	}
}

func TestArticleHandle(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"cbd oil for sleep", "cbd-oil-for-sleep-guide"},
		{"Best CBD Oil!", "best-cbd-oil-guide"},
		{"what's the best cbd oil", "whats-the-best-cbd-oil-guide"},
		{strings.Repeat("verylongkeyword ", 5), "verylongkeyword-verylongkeyword-verylong-guide"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := ArticleHandle(tt.keyword); got != tt.want {
			t.Errorf("ArticleHandle(%q) = %q, want %q", tt.keyword, got, tt.want)
		}
	}
}

func TestSEOTags(t *testing.T) {
	tags := SEOTags("cbd oil for sleep")

	for _, base := range []string{"SEO", "Automated Content", "Blog"} {
		if !contains(tags, base) {
			t.Errorf("missing base tag %q in %v", base, tags)
		}
	}
	if !contains(tags, "CBD") || !contains(tags, "Sleep") {
		t.Errorf("missing category tags in %v", tags)
	}
	if len(tags) > 8 {
		t.Errorf("too many tags: %v", tags)
	}
}

func TestSEOTags_WholeWordOnly(t *testing.T) {
	// "cbdistillery" must not trigger the cbd category.
	tags := SEOTags("cbdistillery review")
	if contains(tags, "CBD") {
		t.Errorf("substring should not trigger category: %v", tags)
	}
	if len(tags) != 3 {
		t.Errorf("expected only base tags, got %v", tags)
	}
}

func contains(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
