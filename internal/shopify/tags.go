package shopify

import "strings"

const maxTags = 8

var baseTags = []string{"SEO", "Automated Content", "Blog"}

// tagCategories maps trigger words to the SEO tags they contribute.
// Triggers match whole words of the keyword only.
var tagCategories = []struct {
	triggers []string
	tags     []string
}{
	{[]string{"sleep", "insomnia"}, []string{"Sleep", "Rest"}},
	{[]string{"cbd", "hemp"}, []string{"CBD", "Hemp"}},
	{[]string{"anxiety", "stress"}, []string{"Anxiety Relief", "Stress"}},
	{[]string{"pain", "ache"}, []string{"Pain Relief", "Recovery"}},
	{[]string{"wellness", "health", "natural"}, []string{"Wellness", "Natural Health"}},
}

// SEOTags derives article tags from a keyword: the three base tags plus
// category tags triggered by whole-word matches, deduplicated and capped
// at 8.
func SEOTags(keyword string) []string {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(keyword)) {
		words[w] = true
	}

	tags := make([]string, 0, maxTags)
	seen := make(map[string]bool)
	add := func(tag string) {
		if len(tags) < maxTags && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, tag := range baseTags {
		add(tag)
	}
	for _, cat := range tagCategories {
		for _, trigger := range cat.triggers {
			if words[trigger] {
				for _, tag := range cat.tags {
					add(tag)
				}
				break
			}
		}
	}

	return tags
}
