// Package generator produces SEO blog articles for keywords through an
// LLM completion API.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/config"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
)

// Completion is the text and token usage returned by a completer.
type Completion struct {
	Text       string
	TokensUsed int
}

// TextCompleter produces a completion for a system prompt and user prompt.
type TextCompleter interface {
	Complete(ctx context.Context, system, prompt string) (Completion, error)
}

// AnthropicCompleter implements TextCompleter against the Anthropic
// messages API.
type AnthropicCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicCompleter builds a completer from the Anthropic config section.
func NewAnthropicCompleter(cfg config.AnthropicConfig) *AnthropicCompleter {
	return &AnthropicCompleter{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Complete sends a single-turn message and returns the concatenated text
// blocks of the response.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (Completion, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("anthropic completion: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Completion{
		Text:       text.String(),
		TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}, nil
}

// Result holds a generated article and its metadata.
type Result struct {
	Title           string
	ContentHTML     string
	MetaDescription string
	WordCount       int
	TemplateUsed    string
	GenerationTime  float64 // seconds
	TokensUsed      int
}

// Generator turns keywords into complete blog articles.
type Generator struct {
	completer TextCompleter
	logger    logger.Logger
}

// New creates a generator on top of a completer.
func New(completer TextCompleter, log logger.Logger) *Generator {
	return &Generator{completer: completer, logger: log}
}

// Generate produces a full article for a keyword. Matched products are
// folded into the prompt as integration requirements. Any completion
// error fails the whole generation; there are no retries.
func (g *Generator) Generate(ctx context.Context, keyword, templateType string, products []matcher.MatchedProduct) (*Result, error) {
	tmpl := TemplateByType(templateType)
	prompt := buildPrompt(keyword, tmpl, products)

	start := time.Now()
	completion, err := g.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate blog for %q: %w", keyword, err)
	}
	elapsed := time.Since(start)

	result := &Result{
		Title:           ArticleTitle(keyword),
		ContentHTML:     completion.Text,
		MetaDescription: MetaDescription(keyword, completion.Text),
		WordCount:       len(strings.Fields(completion.Text)),
		TemplateUsed:    tmpl.Key,
		GenerationTime:  elapsed.Seconds(),
		TokensUsed:      completion.TokensUsed,
	}

	g.logger.Info("blog content generated",
		logger.String("keyword", keyword),
		logger.String("template", tmpl.Key),
		logger.Int("word_count", result.WordCount),
		logger.Int("tokens_used", result.TokensUsed),
		logger.Duration("elapsed", elapsed),
	)

	return result, nil
}
