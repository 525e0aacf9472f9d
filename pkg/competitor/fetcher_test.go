package competitor

import (
	"context"
	"strings"
	"testing"

	"github.com/blogpilot/blogpilot/pkg/session"
)

type fakeBrowser struct {
	hits []DiscoveredPost
	dom  map[string]string
}

func (f *fakeBrowser) OpenSession(ctx context.Context) error  { return nil }
func (f *fakeBrowser) CloseSession(ctx context.Context) error { return nil }
func (f *fakeBrowser) ForceStop()                             {}

func (f *fakeBrowser) SearchPostsByKeyword(ctx context.Context, keyword string, maxResults int) ([]DiscoveredPost, error) {
	if len(f.hits) > maxResults {
		return f.hits[:maxResults], nil
	}
	return f.hits, nil
}

func (f *fakeBrowser) FetchPostDOM(ctx context.Context, url string) (*Document, error) {
	html, ok := f.dom[url]
	if !ok {
		return nil, nil
	}
	return NewDocument(strings.NewReader(html))
}

func TestDiscoverDeduplicatesByURLAndAssignsRank(t *testing.T) {
	browser := &fakeBrowser{hits: []DiscoveredPost{
		{Title: "A", URL: "https://blog.naver.com/a/1"},
		{Title: "B", URL: "https://blog.naver.com/b/2"},
		{Title: "A dup", URL: "https://blog.naver.com/a/1"},
	}}
	f := New(browser)

	refs, err := f.Discover(context.Background(), "키워드")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 deduplicated refs, got %d", len(refs))
	}
	if refs[0].Rank != 1 || refs[1].Rank != 2 {
		t.Errorf("expected ranks 1,2 in discovery order, got %d,%d", refs[0].Rank, refs[1].Rank)
	}
}

func TestDiscoverWithNilBrowserReturnsEmptyNotError(t *testing.T) {
	f := New(nil)
	refs, err := f.Discover(context.Background(), "키워드")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected empty result, got %d", len(refs))
	}
}

func TestEnrichFallsBackToBrowserWhenHTTPPathEmpty(t *testing.T) {
	url := "https://example.com/unreachable"
	browser := &fakeBrowser{dom: map[string]string{
		url: `<html><body><div class="se-main-container">
			<div class="se-component se-text"><p class="se-text-paragraph">` +
			strings.Repeat("브라우저에서만 보이는 본문 내용입니다. ", 40) +
			`</p></div>
		</div></body></html>`,
	}}
	f := New(browser)

	post, err := f.Enrich(context.Background(), session.CompetitorRef{Rank: 1, Title: "제목", URL: url})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if post.AnalysisFailed {
		t.Error("expected browser fallback to recover a non-failed post")
	}
	if post.BodyLength == 0 {
		t.Error("expected non-zero body length from browser fallback")
	}
}

func TestEnrichWithoutBrowserReturnsSentinelOnFailure(t *testing.T) {
	f := New(nil)
	post, err := f.Enrich(context.Background(), session.CompetitorRef{Rank: 1, Title: "제목", URL: "https://example.invalid/unreachable"})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !post.AnalysisFailed {
		t.Error("expected sentinel analysis-failed post when HTTP fetch fails and no browser fallback exists")
	}
}
