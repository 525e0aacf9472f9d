package competitor

import (
	"context"
	"fmt"

	"github.com/blogpilot/blogpilot/pkg/session"
	"golang.org/x/sync/singleflight"
)

// MaxDiscoveryResults is the discovery-side cap: roughly three result
// pages of the platform's search UI.
const MaxDiscoveryResults = 30

// Fetcher discovers candidate competitor posts for a search query and
// enriches a single URL into a CompetitorPost. Discovery requires a live
// BrowserSession (the platform exposes no public search API); enrichment
// prefers the stateless HTTP path and only falls back to the browser
// session when that path fails or returns an empty result.
type Fetcher struct {
	browser BrowserSession
	http    *httpFetcher
	group   singleflight.Group
}

// New creates a Fetcher. browser may be nil, in which case Discover
// always returns an empty result (no public search endpoint to hit) and
// Enrich runs the HTTP-only path with no fallback.
func New(browser BrowserSession) *Fetcher {
	return &Fetcher{browser: browser, http: newHTTPFetcher()}
}

// Discover returns up to MaxDiscoveryResults CompetitorRef for query,
// deduplicated by URL with discovery order preserved as rank. Returns an
// empty, non-error result when no BrowserSession is configured — the
// zero-competitor boundary case, not a failure.
func (f *Fetcher) Discover(ctx context.Context, query string) ([]session.CompetitorRef, error) {
	if f.browser == nil {
		return nil, nil
	}

	hits, err := f.browser.SearchPostsByKeyword(ctx, query, MaxDiscoveryResults)
	if err != nil {
		return nil, fmt.Errorf("competitor discovery: %w", err)
	}

	seen := make(map[string]bool, len(hits))
	refs := make([]session.CompetitorRef, 0, len(hits))
	for _, hit := range hits {
		if hit.URL == "" || seen[hit.URL] {
			continue
		}
		seen[hit.URL] = true
		refs = append(refs, session.CompetitorRef{
			Rank:  len(refs) + 1,
			Title: hit.Title,
			URL:   hit.URL,
		})
		if len(refs) >= MaxDiscoveryResults {
			break
		}
	}
	return refs, nil
}

// Enrich fetches and analyzes ref.URL, preferring the HTTP path and
// falling back to the browser session when HTTP analysis fails or
// returns an empty result (sentinel title or zero body length).
// Concurrent enrichment of the same URL is deduplicated via singleflight,
// since a title can surface from both discovery and curation re-fetch.
func (f *Fetcher) Enrich(ctx context.Context, ref session.CompetitorRef) (session.CompetitorPost, error) {
	result, err, _ := f.group.Do(ref.URL, func() (interface{}, error) {
		return f.enrichOnce(ctx, ref), nil
	})
	if err != nil {
		return session.CompetitorPost{}, err
	}
	return result.(session.CompetitorPost), nil
}

func (f *Fetcher) enrichOnce(ctx context.Context, ref session.CompetitorRef) session.CompetitorPost {
	post := f.http.analyzeBlogContentHTTP(ctx, ref.URL)
	post.Rank = ref.Rank

	needsFallback := needsBrowserFallback(post)
	if ref.Title != "" && post.Title == analysisFailedTitle {
		post.Title = ref.Title
	}
	if !needsFallback || f.browser == nil {
		return post
	}

	doc, err := f.browser.FetchPostDOM(ctx, ref.URL)
	if err != nil || doc == nil {
		return post
	}

	title := extractTitleHTTP(doc)
	text, length := extractTextContentHTTP(doc)
	structure := ExtractContentStructure(doc)
	images, gifs, videos := CountMediaFromStructure(structure)
	hashtags := ExtractHashtags(doc, text)
	if len(hashtags) > 10 {
		hashtags = hashtags[:10]
	}

	return session.CompetitorPost{
		CompetitorRef:      session.CompetitorRef{Rank: ref.Rank, Title: title, URL: ref.URL},
		Body:               text,
		BodyLength:         length,
		ImageCount:         images,
		AnimatedImageCount: gifs,
		VideoCount:         videos,
		Structure:          structure,
		Hashtags:           hashtags,
	}
}

func needsBrowserFallback(post session.CompetitorPost) bool {
	return post.Title == analysisFailedTitle || post.Title == noTitleSentinel || post.BodyLength == 0
}
