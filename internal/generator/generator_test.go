package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
)

type fakeCompleter struct {
	lastSystem string
	lastPrompt string
	completion Completion
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (Completion, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	if f.err != nil {
		return Completion{}, f.err
	}
	return f.completion, nil
}

func TestGenerate(t *testing.T) {
	content := "<h1>Cbd Oil: Complete Professional Guide 2025</h1> <p>" +
		strings.Repeat("word ", 500) + "</p>"
	completer := &fakeCompleter{completion: Completion{Text: content, TokensUsed: 4200}}
	g := New(completer, logger.NewNopLogger())

	result, err := g.Generate(context.Background(), "cbd oil", "cbd_wellness", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Cbd Oil: Complete Professional Guide 2025" {
		t.Errorf("unexpected title: %q", result.Title)
	}
	if result.TemplateUsed != "cbd_wellness" {
		t.Errorf("unexpected template: %q", result.TemplateUsed)
	}
	if result.TokensUsed != 4200 {
		t.Errorf("unexpected tokens: %d", result.TokensUsed)
	}
	if result.WordCount != len(strings.Fields(content)) {
		t.Errorf("unexpected word count: %d", result.WordCount)
	}
	if !strings.HasPrefix(result.MetaDescription, "Complete guide to cbd oil. ") {
		t.Errorf("unexpected meta description: %q", result.MetaDescription)
	}
	if completer.lastSystem != systemPrompt {
		t.Error("system prompt not forwarded")
	}
}

func TestGenerate_CompleterError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	g := New(completer, logger.NewNopLogger())

	if _, err := g.Generate(context.Background(), "cbd oil", "cbd_wellness", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildPrompt_TemplateRequirements(t *testing.T) {
	tests := []struct {
		templateType string
		wantMinWords string
		wantMentions string
		wantFAQ      string
	}{
		{"cbd_wellness", "MINIMUM 2500 words", "12-15 times", "18+ comprehensive FAQ"},
		{"ecommerce_general", "MINIMUM 2000 words", "10-15 times", "15+ comprehensive FAQ"},
		{"service_business", "MINIMUM 1800 words", "10-15 times", "12+ comprehensive FAQ"},
	}

	for _, tt := range tests {
		t.Run(tt.templateType, func(t *testing.T) {
			prompt := buildPrompt("cbd sleep gummies", TemplateByType(tt.templateType), nil)
			for _, want := range []string{tt.wantMinWords, tt.wantMentions, tt.wantFAQ} {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
		})
	}
}

func TestBuildPrompt_ProductIntegration(t *testing.T) {
	products := []matcher.MatchedProduct{
		{Name: "Night Gummies", URL: "https://shop.example/p/1", IntegrationText: "Try our Night Gummies tonight."},
	}
	prompt := buildPrompt("cbd sleep gummies", TemplateByType("cbd_wellness"), products)

	if !strings.Contains(prompt, `"Try our Night Gummies tonight."`) {
		t.Error("prompt missing product integration text")
	}
	if !strings.Contains(prompt, "https://shop.example/p/1") {
		t.Error("prompt missing product link")
	}
}

func TestBuildPrompt_SectionAnchors(t *testing.T) {
	prompt := buildPrompt("cbd oil", TemplateByType("cbd_wellness"), nil)

	// Ampersands are stripped after spaces become dashes.
	if !strings.Contains(prompt, `href="#benefits--science"`) {
		t.Error("prompt missing anchor for Benefits & Science")
	}
	if !strings.Contains(prompt, `<h2 id="usage-guidelines">Usage Guidelines</h2>`) {
		t.Error("prompt missing section heading for Usage Guidelines")
	}
}

func TestMetaDescription(t *testing.T) {
	content := "<p>" + strings.Repeat("benefit ", 40) + "</p>"
	desc := MetaDescription("cbd oil", content)

	if !strings.HasPrefix(desc, "Complete guide to cbd oil. benefit") {
		t.Errorf("unexpected prefix: %q", desc)
	}
	if strings.ContainsAny(desc, "<>") {
		t.Errorf("meta description contains markup: %q", desc)
	}
	if len(desc) > 158 {
		t.Errorf("meta description too long: %d chars", len(desc))
	}
	if !strings.HasSuffix(desc, "...") {
		t.Errorf("expected truncation ellipsis: %q", desc)
	}
}

func TestMetaDescription_ShortContent(t *testing.T) {
	desc := MetaDescription("cbd oil", "<p>Short article body.</p>")

	if desc != "Complete guide to cbd oil. Short article body." {
		t.Errorf("unexpected description: %q", desc)
	}
}

func TestTemplateByType_UnknownFallsBack(t *testing.T) {
	if got := TemplateByType("no_such_template").Key; got != DefaultTemplateType {
		t.Errorf("unexpected fallback template: %q", got)
	}
}

func TestArticleTitle(t *testing.T) {
	if got := ArticleTitle("best CBD sleep gummies"); got != "Best Cbd Sleep Gummies: Complete Professional Guide 2025" {
		t.Errorf("unexpected title: %q", got)
	}
}
