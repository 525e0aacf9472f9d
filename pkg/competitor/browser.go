package competitor

import "context"

// DiscoveredPost is one raw search-result hit: a title and the post's URL.
type DiscoveredPost struct {
	Title string
	URL   string
}

// BrowserSession is the browser-automation collaborator this package
// consumes for discovery and as enrichment's fallback path. Its
// implementation (login, page scripting, scroll-to-load) is out of scope
// here; a nil BrowserSession degrades the Fetcher to the HTTP-only path,
// which is sufficient to exercise every invariant this package owns.
type BrowserSession interface {
	// OpenSession establishes the underlying browser session.
	OpenSession(ctx context.Context) error
	// CloseSession tears it down.
	CloseSession(ctx context.Context) error
	// SearchPostsByKeyword pages through the platform's public search
	// results for keyword, returning up to maxResults hits in result
	// order.
	SearchPostsByKeyword(ctx context.Context, keyword string, maxResults int) ([]DiscoveredPost, error)
	// FetchPostDOM loads url and returns its rendered document — used
	// only when HTTP-path enrichment fails or returns an empty result.
	FetchPostDOM(ctx context.Context, url string) (*Document, error)
	// ForceStop tears down the session immediately, used by cancellation
	// to unblock a worker stuck on a long page load.
	ForceStop()
}
