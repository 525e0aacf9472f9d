// Package competitor discovers candidate posts for a search query and
// enriches a post URL into structured content: title, body text, media
// counts, hashtags, and an ordered content-structure trace. The HTTP
// enrichment path is grounded on the platform's own extraction rules;
// browser-driven discovery and fallback enrichment are delegated to a
// BrowserSession collaborator that lives outside this package.
package competitor

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a thin wrapper over a goquery selection, giving the unified
// HTML analyzer a single find_one/find_all/text/attr surface regardless of
// whether the underlying node came from the wrapper page or the inner
// iframe document.
type Document struct {
	sel *goquery.Selection
}

// NewDocument parses r as HTML and returns a Document rooted at its root.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{sel: doc.Selection}, nil
}

// FindOne returns the first element matching selector, and whether one
// was found.
func (d *Document) FindOne(selector string) (*Document, bool) {
	sel := d.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Document{sel: sel}, true
}

// FindAll returns every element matching selector, in document order.
func (d *Document) FindAll(selector string) []*Document {
	sel := d.sel.Find(selector)
	out := make([]*Document, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Document{sel: s})
	})
	return out
}

// Text returns the whitespace-stripped text content of the node.
func (d *Document) Text() string {
	return strings.TrimSpace(d.sel.Text())
}

// Attr returns the named attribute's value, or "" if absent.
func (d *Document) Attr(name string) string {
	v, _ := d.sel.Attr(name)
	return v
}

// Classes returns the node's class attribute split on whitespace.
func (d *Document) Classes() []string {
	class := d.Attr("class")
	if class == "" {
		return nil
	}
	return strings.Fields(class)
}

// HasClass reports whether the node carries the given class token.
func (d *Document) HasClass(class string) bool {
	for _, c := range d.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// TagName returns the element's tag, lowercased.
func (d *Document) TagName() string {
	if d.sel.Length() == 0 || len(d.sel.Nodes) == 0 {
		return ""
	}
	return strings.ToLower(d.sel.Nodes[0].Data)
}

// Remove detaches every element matching selector from the tree, so later
// Text() calls over the parent no longer include it.
func (d *Document) Remove(selector string) {
	d.sel.Find(selector).Remove()
}
