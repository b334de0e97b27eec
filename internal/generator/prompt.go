package generator

import (
	"fmt"
	"strings"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/matcher"
)

const systemPrompt = "You are an expert SEO content writer and digital marketing specialist " +
	"who creates high-converting, comprehensive blog posts that rank #1 on Google. " +
	"Your content is thoroughly researched, engaging, and optimized for both search " +
	"engines and user experience."

// ArticleTitle builds the fixed title pattern used for every generated blog.
func ArticleTitle(keyword string) string {
	return titleCase(keyword) + ": Complete Professional Guide 2025"
}

// buildPrompt assembles the full generation prompt for a keyword,
// template, and any matched products.
func buildPrompt(keyword string, tmpl Template, products []matcher.MatchedProduct) string {
	title := ArticleTitle(keyword)

	mentionFloor := 10
	if tmpl.MinWords >= 2500 {
		mentionFloor = 12
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a comprehensive, SEO-optimized blog post about %q using the %s template.\n\n", keyword, tmpl.Name)

	b.WriteString("STRICT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- MINIMUM %d words (aim for %d+ words)\n", tmpl.MinWords, tmpl.MinWords+500)
	fmt.Fprintf(&b, "- Use %q naturally %d-15 times throughout\n", keyword, mentionFloor)
	fmt.Fprintf(&b, "- Include %d+ comprehensive FAQ questions with detailed answers\n", tmpl.FAQCount)
	b.WriteString("- Professional HTML structure with proper DOCTYPE, head, and body tags\n")
	fmt.Fprintf(&b, "- Target long-tail keywords related to %q\n", keyword)
	for _, p := range products {
		fmt.Fprintf(&b, "- Naturally integrate this product recommendation: %q (link: %s)\n", p.IntegrationText, p.URL)
	}

	b.WriteString("\nEXACT HTML STRUCTURE:\n")
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", title)
	fmt.Fprintf(&b, "    <meta name=\"description\" content=\"Comprehensive guide to %s with expert insights, practical advice, and detailed recommendations for optimal results.\">\n", keyword)
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "    <h1>%s</h1>\n\n", title)
	fmt.Fprintf(&b, "    <p>Opening paragraph with %s mentioned in first sentence and compelling hook... (300+ words)</p>\n\n", keyword)
	b.WriteString("    <h2>Table of Contents</h2>\n    <ul>\n")
	for _, section := range tmpl.Sections {
		fmt.Fprintf(&b, "        <li><a href=\"#%s\">%s</a></li>\n", sectionAnchor(section), section)
	}
	b.WriteString("    </ul>\n")
	for _, section := range tmpl.Sections {
		fmt.Fprintf(&b, "\n    <h2 id=%q>%s</h2>\n", sectionAnchor(section), section)
		fmt.Fprintf(&b, "    <p>Comprehensive content for %s related to %s... (400+ words)</p>\n", strings.ToLower(section), keyword)
	}
	b.WriteString("\n    <h2 id=\"faq\">Comprehensive FAQ Section</h2>\n")
	fmt.Fprintf(&b, "    <!-- Generate %d+ detailed FAQ questions -->\n\n", tmpl.FAQCount)
	b.WriteString("    <h2 id=\"conclusion\">Conclusion</h2>\n")
	fmt.Fprintf(&b, "    <p>Comprehensive conclusion summarizing key insights about %s... (400+ words)</p>\n\n", keyword)
	b.WriteString("</body>\n</html>\n")

	b.WriteString("\nCONTENT GUIDELINES:\n")
	b.WriteString("- Write in an authoritative, professional tone\n")
	b.WriteString("- Include scientific backing and evidence where relevant\n")
	b.WriteString("- Use subheadings, bullet points, and proper formatting\n")
	b.WriteString("- Optimize for featured snippets\n")
	b.WriteString("- Include internal linking opportunities\n")
	b.WriteString("- Add proper medical/legal disclaimers if applicable\n")
	b.WriteString("- Focus on user intent and providing genuine value\n")

	fmt.Fprintf(&b, "\nTarget minimum %d words with exceptional quality and depth.", tmpl.MinWords)

	return b.String()
}

// sectionAnchor turns a section heading into an anchor id: lowercased,
// spaces to dashes, ampersands removed.
func sectionAnchor(section string) string {
	anchor := strings.ToLower(section)
	anchor = strings.ReplaceAll(anchor, " ", "-")
	anchor = strings.ReplaceAll(anchor, "&", "")
	return anchor
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
