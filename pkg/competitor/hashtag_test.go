package competitor

import (
	"strings"
	"testing"
)

func TestExtractHashtagsFromBodyFiltersExclusions(t *testing.T) {
	text := "오늘 후기 #맛집추천 #1 #wrapper #a1b2c3 #floating_banner #좋아요"
	tags := ExtractHashtagsFromBody(text)

	for _, excluded := range []string{"#1", "#wrapper", "#a1b2c3", "#floating_banner", "#좋아요"} {
		for _, got := range tags {
			if got == excluded {
				t.Errorf("expected %q to be filtered out, got %v", excluded, tags)
			}
		}
	}

	found := false
	for _, got := range tags {
		if got == "#맛집추천" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected #맛집추천 to survive filtering, got %v", tags)
	}
}

func TestExtractHashtagsFromBodySortsLongestFirst(t *testing.T) {
	tags := ExtractHashtagsFromBody("#여행 #제주도여행코스 #바다")
	for i := 1; i < len(tags); i++ {
		if len([]rune(tags[i-1])) < len([]rune(tags[i])) {
			t.Errorf("expected length-descending order, got %v", tags)
		}
	}
}

func TestExtractHashtagsPrefersSmartEditorSpans(t *testing.T) {
	html := `<html><body>
		<span class="__se-hash-tag">#스마트에디터태그</span>
		<p>본문 안에도 #본문태그 가 있습니다</p>
	</body></html>`
	doc, err := NewDocument(strings.NewReader(html))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	tags := ExtractHashtags(doc, "본문 안에도 #본문태그 가 있습니다")
	if len(tags) == 0 {
		t.Fatal("expected at least one hashtag")
	}
	if tags[0] != "#스마트에디터태그" {
		t.Errorf("expected smart-editor span to be first, got %v", tags)
	}
}

func TestExtractHashtagsCapsAtTen(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("#태그고유번호")
		b.WriteString(string(rune('가' + i)))
		b.WriteString(" ")
	}
	doc, _ := NewDocument(strings.NewReader("<html><body></body></html>"))
	tags := ExtractHashtags(doc, b.String())
	if len(tags) > 10 {
		t.Errorf("expected at most 10 tags, got %d", len(tags))
	}
}
