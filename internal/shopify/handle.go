package shopify

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxHandleLen = 40

var handleStripper = regexp.MustCompile(`[^a-z0-9-]`)

// ArticleHandle derives a URL-safe handle from a keyword: lowercased,
// spaces to dashes, everything outside [a-z0-9-] stripped, truncated to
// 40 characters, with a "-guide" suffix.
func ArticleHandle(keyword string) string {
	handle := strings.ToLower(strings.TrimSpace(keyword))
	handle = strings.ReplaceAll(handle, " ", "-")
	handle = handleStripper.ReplaceAllString(handle, "")
	handle = strings.Trim(handle, "-")
	if len(handle) > maxHandleLen {
		handle = strings.Trim(handle[:maxHandleLen], "-")
	}
	if handle == "" {
		return ""
	}
	return handle + "-guide"
}

// FallbackHandle is used when a blog has no usable keyword to slug.
func FallbackHandle(blogID int64) string {
	return fmt.Sprintf("blog-%d-%d", blogID, time.Now().Unix())
}

// collisionHandle appends a numeric suffix for the single retry after a
// handle collision.
func collisionHandle(handle string) string {
	return fmt.Sprintf("%s-%d", handle, time.Now().Unix()%1000)
}
