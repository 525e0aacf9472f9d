package competitor

import (
	"fmt"
	"regexp"
	"strings"
)

var blogIDAndLogNoPattern = regexp.MustCompile(`https://blog\.naver\.com/([^/]+)/(\d+)`)

// ConvertToPostViewURL rewrites a plain blog post URL into its PostView
// variant, which tends to serve a simpler, single-page layout for the
// HTTP enrichment path. Returns "" when the URL isn't a recognizable
// blog.naver.com post URL (already-PostView URLs are returned unchanged).
func ConvertToPostViewURL(blogURL string) string {
	if strings.Contains(blogURL, "PostView.naver") {
		return blogURL
	}

	m := blogIDAndLogNoPattern.FindStringSubmatch(blogURL)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://blog.naver.com/PostView.naver?blogId=%s&logNo=%s", m[1], m[2])
}
