package matcher

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

type fakeFinder struct {
	byTag map[string][]models.Product
	calls []string
	err   error
}

func (f *fakeFinder) FindActiveByTag(_ context.Context, _, _ int64, tag string, limit int) ([]models.Product, error) {
	f.calls = append(f.calls, tag)
	if f.err != nil {
		return nil, f.err
	}
	products := f.byTag[tag]
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func product(name string, integrationText string) models.Product {
	p := models.Product{Name: name, URL: "https://shop.example/products/" + name}
	if integrationText != "" {
		p.IntegrationText = sql.NullString{String: integrationText, Valid: true}
	}
	return p
}

func TestMatch_FullKeyword(t *testing.T) {
	finder := &fakeFinder{byTag: map[string][]models.Product{
		"cbd sleep gummies": {product("Night Gummies", "Try our Night Gummies tonight.")},
	}}
	m := New(finder, logger.NewNopLogger())

	matched, err := m.Match(context.Background(), 1, 1, "CBD Sleep Gummies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matched))
	}
	if matched[0].IntegrationText != "Try our Night Gummies tonight." {
		t.Errorf("unexpected integration text: %q", matched[0].IntegrationText)
	}
	if len(finder.calls) != 1 || finder.calls[0] != "cbd sleep gummies" {
		t.Errorf("unexpected lookups: %v", finder.calls)
	}
}

func TestMatch_WordFallback(t *testing.T) {
	finder := &fakeFinder{byTag: map[string][]models.Product{
		"sleep": {product("Sleep Oil", ""), product("Sleep Spray", ""), product("Sleep Mask", "")},
	}}
	m := New(finder, logger.NewNopLogger())

	matched, err := m.Match(context.Background(), 1, 1, "best sleep aid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Per-word fallback caps at 2 products.
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	// "aid" is never tried because "sleep" already matched.
	want := []string{"best sleep aid", "best", "sleep"}
	if len(finder.calls) != len(want) {
		t.Fatalf("unexpected lookups: %v", finder.calls)
	}
	for i, tag := range want {
		if finder.calls[i] != tag {
			t.Errorf("lookup %d = %q, want %q", i, finder.calls[i], tag)
		}
	}
}

func TestMatch_ShortWordsSkipped(t *testing.T) {
	finder := &fakeFinder{byTag: map[string][]models.Product{}}
	m := New(finder, logger.NewNopLogger())

	matched, err := m.Match(context.Background(), 1, 1, "is it ok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != nil {
		t.Errorf("expected no matches, got %v", matched)
	}
	// Only the full keyword is looked up; every word is shorter than 3 runes.
	if len(finder.calls) != 1 {
		t.Errorf("unexpected lookups: %v", finder.calls)
	}
}

func TestMatch_DefaultIntegrationText(t *testing.T) {
	finder := &fakeFinder{byTag: map[string][]models.Product{
		"cbd oil": {product("Relief Oil", "")},
	}}
	m := New(finder, logger.NewNopLogger())

	matched, err := m.Match(context.Background(), 1, 1, "cbd oil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched[0].IntegrationText != "Check out our Relief Oil - the perfect solution for your needs!" {
		t.Errorf("unexpected default integration text: %q", matched[0].IntegrationText)
	}
}

func TestMatch_RepositoryError(t *testing.T) {
	finder := &fakeFinder{err: errors.New("connection refused")}
	m := New(finder, logger.NewNopLogger())

	if _, err := m.Match(context.Background(), 1, 1, "cbd oil"); err == nil {
		t.Fatal("expected error")
	}
}
