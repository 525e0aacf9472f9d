package competitor

import (
	"regexp"
	"sort"
	"strings"
)

var (
	basicHashtagPattern     = regexp.MustCompile(`#([가-힣a-zA-Z0-9_]+)`)
	consecutiveHashtagBlock = regexp.MustCompile(`#[가-힣a-zA-Z0-9_]+(?:[,\s]*#[가-힣a-zA-Z0-9_]+)+`)
)

// hashtagExcludePatterns filters out tokens that merely look like a
// hashtag but are actually CSS IDs, color codes, or generic filler words
// — the exclusion list is part of the extraction contract, not an
// implementation detail.
var hashtagExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#\d+$`),                                               // pure digits
	regexp.MustCompile(`^#[a-zA-Z_\-]+$`),                                      // pure ASCII, CSS-ID shaped
	regexp.MustCompile(`^#.{1}$`),                                              // 1 char
	regexp.MustCompile(`^#(좋아요|감사|부탁|댓글|공감|추천)$`),                              // ultra-generic words
	regexp.MustCompile(`^#(wrapper|container|content|main|header|footer|sidebar).*`),
	regexp.MustCompile(`^#(post|blog|article|div|section|span|p).*`),
	regexp.MustCompile(`^#.*(_|-).*$`), // underscore/hyphen, CSS-ID shaped
	regexp.MustCompile(`^#(floating|banword|btn|bw_).*`),
	regexp.MustCompile(`^#[0-9a-fA-F]{6}$`), // color hex
	regexp.MustCompile(`^#[0-9a-fA-F]{3}$`), // short color hex
}

const maxRawHashtags = 15

// ExtractHashtagsFromBody extracts #word patterns from plain body text,
// applying the length/exclusion filters and sorting longest-first (a
// longer tag is assumed to be more specific).
func ExtractHashtagsFromBody(text string) []string {
	if text == "" {
		return nil
	}

	var tags []string
	seen := map[string]bool{}
	add := func(word string) {
		if len(word) < 2 {
			return
		}
		tag := "#" + word
		if seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, m := range basicHashtagPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	// Tags concentrated in the final 200 characters are likely the
	// author's deliberate tag block; promote them ahead of incidental
	// in-body matches.
	if runes := []rune(text); len(runes) > 200 {
		lastPart := string(runes[len(runes)-200:])
		lastPartTags := map[string]bool{}
		for _, m := range basicHashtagPattern.FindAllStringSubmatch(lastPart, -1) {
			lastPartTags[m[1]] = true
		}
		if len(lastPartTags) >= 3 {
			var priority, remaining []string
			for _, tag := range tags {
				if lastPartTags[strings.TrimPrefix(tag, "#")] {
					priority = append(priority, tag)
				} else {
					remaining = append(remaining, tag)
				}
			}
			tags = append(priority, remaining...)
		}
	}

	for _, block := range consecutiveHashtagBlock.FindAllString(text, -1) {
		for _, m := range basicHashtagPattern.FindAllStringSubmatch(block, -1) {
			add(m[1])
		}
	}

	filtered := tags[:0:0]
	for _, tag := range tags {
		if !matchesAnyHashtagExclusion(tag) {
			filtered = append(filtered, tag)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return len([]rune(filtered[i])) > len([]rune(filtered[j]))
	})

	if len(filtered) > maxRawHashtags {
		filtered = filtered[:maxRawHashtags]
	}
	return filtered
}

func matchesAnyHashtagExclusion(tag string) bool {
	for _, pattern := range hashtagExcludePatterns {
		if pattern.MatchString(tag) {
			return true
		}
	}
	return false
}

const maxHashtags = 10

// ExtractHashtags prefers the platform's smart-editor hashtag spans; when
// none are present it falls back to pattern extraction over the
// whitespace-collapsed body text. Always capped at maxHashtags.
func ExtractHashtags(doc *Document, bodyText string) []string {
	var tags []string
	seen := map[string]bool{}

	for _, el := range doc.FindAll("span.__se-hash-tag") {
		text := el.Text()
		if strings.HasPrefix(text, "#") && len([]rune(text)) >= 3 && !seen[text] {
			seen[text] = true
			tags = append(tags, text)
		}
	}

	if len(tags) == 0 {
		for _, tag := range ExtractHashtagsFromBody(bodyText) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return len([]rune(tags[i])) > len([]rune(tags[j]))
	})

	if len(tags) > maxHashtags {
		tags = tags[:maxHashtags]
	}
	return tags
}
