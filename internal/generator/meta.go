package generator

import (
	"regexp"
	"strings"
)

const (
	metaLeadWords = 25
	metaMaxLen    = 155
	metaEllipsis  = "..."
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// MetaDescription derives a search meta description from generated
// content: "Complete guide to <keyword>. " followed by the first 25 words
// of the tag-stripped content. The result is truncated at 155 characters
// plus an ellipsis, so it never exceeds 158.
func MetaDescription(keyword, content string) string {
	words := strings.Fields(tagPattern.ReplaceAllString(content, " "))
	if len(words) > metaLeadWords {
		words = words[:metaLeadWords]
	}

	desc := "Complete guide to " + keyword + ". " + strings.Join(words, " ")
	if len(desc) > metaMaxLen {
		desc = strings.TrimRight(desc[:metaMaxLen], " ") + metaEllipsis
	}
	return desc
}
