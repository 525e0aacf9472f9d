package competitor

import "testing"

func TestExtractTitleHTTPRejectsSentinelTitles(t *testing.T) {
	html := `<html><head><title>네이버 블로그</title></head><body>
		<h3 class="se-title-text">진짜 제목입니다</h3>
	</body></html>`
	doc := mustDoc(t, html)

	got := extractTitleHTTP(doc)
	if got != "진짜 제목입니다" {
		t.Errorf("expected real title to win over sentinel <title>, got %q", got)
	}
}

func TestExtractTitleHTTPFallsBackToOGTitle(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="오그 제목">
	</head><body></body></html>`
	doc := mustDoc(t, html)

	if got := extractTitleHTTP(doc); got != "오그 제목" {
		t.Errorf("expected og:title fallback, got %q", got)
	}
}

func TestExtractTitleHTTPReturnsSentinelWhenNothingFound(t *testing.T) {
	doc := mustDoc(t, `<html><body><div>내용만 있음</div></body></html>`)
	if got := extractTitleHTTP(doc); got != noTitleSentinel {
		t.Errorf("expected sentinel title, got %q", got)
	}
}

func TestExtractTextContentHTTPPrefersSmartEditorModules(t *testing.T) {
	html := `<html><body>
		<div class="se-module se-module-text se-title-text">제목 모듈은 제외</div>
		<div class="se-module se-module-text">본문   첫째 문단입니다</div>
		<div class="se-module se-module-text">본문 둘째 문단입니다</div>
	</body></html>`
	doc := mustDoc(t, html)

	text, length := extractTextContentHTTP(doc)
	if length == 0 {
		t.Fatal("expected non-zero content length")
	}
	if text == "" {
		t.Fatal("expected non-empty text")
	}
	for _, excerpt := range []string{"제목 모듈은 제외"} {
		if contains(text, excerpt) {
			t.Errorf("expected title module excluded from body text, got %q", text)
		}
	}
}

func TestExtractTextContentHTTPFallsBackWhenNoSmartEditorModules(t *testing.T) {
	longText := ""
	for i := 0; i < 30; i++ {
		longText += "충분히 긴 본문 텍스트입니다 "
	}
	html := `<html><body><div class="se-viewer">` + longText + `</div></body></html>`
	doc := mustDoc(t, html)

	_, length := extractTextContentHTTP(doc)
	if length == 0 {
		t.Error("expected fallback selector to yield non-zero length")
	}
}

func TestCountMediaHTTPDetectsGifVideoTag(t *testing.T) {
	html := `<html><body>
		<video class="_gifmp4" src="https://example.com/a.mp4"></video>
		<img src="https://example.com/b.jpg">
	</body></html>`
	doc := mustDoc(t, html)

	images, gifs, _ := countMediaHTTP(doc)
	if gifs != 1 {
		t.Errorf("expected 1 gif from video._gifmp4, got %d", gifs)
	}
	if images != 1 {
		t.Errorf("expected 1 plain image, got %d", images)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
