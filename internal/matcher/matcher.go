// Package matcher finds catalog products related to a keyword so the
// generator can weave promotional links into the article.
package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/logger"
	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

const (
	fullKeywordLimit = 3
	perWordLimit     = 2
	minWordLength    = 3
)

// ProductFinder is the read-only slice of the product repository the
// matcher needs.
type ProductFinder interface {
	FindActiveByTag(ctx context.Context, tenantID, storeID int64, tag string, limit int) ([]models.Product, error)
}

// MatchedProduct is a product selected for blog integration.
type MatchedProduct struct {
	Name            string
	URL             string
	Price           string
	IntegrationText string
}

// Matcher matches keywords against product keyword tags.
type Matcher struct {
	products ProductFinder
	logger   logger.Logger
}

// New creates a matcher.
func New(products ProductFinder, log logger.Logger) *Matcher {
	return &Matcher{products: products, logger: log}
}

// Match returns up to 3 active products whose keyword tags contain the full
// keyword (case-insensitive substring), highest priority first. When the
// full keyword matches nothing, each word of length >= 3 is tried in order
// and the first matching word contributes at most 2 products.
func (m *Matcher) Match(ctx context.Context, tenantID, storeID int64, keyword string) ([]MatchedProduct, error) {
	keyword = strings.TrimSpace(strings.ToLower(keyword))
	if keyword == "" {
		return nil, nil
	}

	products, err := m.products.FindActiveByTag(ctx, tenantID, storeID, keyword, fullKeywordLimit)
	if err != nil {
		return nil, fmt.Errorf("match full keyword: %w", err)
	}
	if len(products) > 0 {
		return toMatched(products), nil
	}

	for _, word := range strings.Fields(keyword) {
		if len(word) < minWordLength {
			continue
		}

		products, err = m.products.FindActiveByTag(ctx, tenantID, storeID, word, perWordLimit)
		if err != nil {
			return nil, fmt.Errorf("match word %q: %w", word, err)
		}
		if len(products) > 0 {
			m.logger.Debug("matched products by single word",
				logger.String("keyword", keyword),
				logger.String("word", word),
				logger.Int("count", len(products)),
			)
			return toMatched(products), nil
		}
	}

	return nil, nil
}

func toMatched(products []models.Product) []MatchedProduct {
	matched := make([]MatchedProduct, 0, len(products))
	for _, p := range products {
		matched = append(matched, MatchedProduct{
			Name:            p.Name,
			URL:             p.URL,
			Price:           p.Price.String,
			IntegrationText: integrationText(p),
		})
	}
	return matched
}

func integrationText(p models.Product) string {
	if p.IntegrationText.Valid && strings.TrimSpace(p.IntegrationText.String) != "" {
		return p.IntegrationText.String
	}
	return fmt.Sprintf("Check out our %s - the perfect solution for your needs!", p.Name)
}
