package prompt

import (
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// Format is the response shape a stage's caller should expect back from
// ProviderGateway.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// StripMarkdownFence removes a leading/trailing triple-backtick fence (with
// an optional json language tag). Idempotent: stripping an already-stripped
// string is a no-op.
func StripMarkdownFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// TitlesWithSearch is one entry of the stage-T JSON response.
type TitlesWithSearch struct {
	Title       string `json:"title"`
	SearchQuery string `json:"search_query"`
}

// ParseTitleResponse decodes the stage-T response, repairing near-miss JSON
// first and falling back to heuristic line extraction (plain titles, no
// paired queries) when even repair fails. Never returns more than 10
// entries; never errors — an unrecoverable response yields an empty slice.
func ParseTitleResponse(raw string) []TitlesWithSearch {
	stripped := StripMarkdownFence(raw)

	if titles, ok := parseTitlesJSON(stripped); ok {
		return capTitles(titles)
	}

	return capTitles(heuristicTitles(stripped))
}

func parseTitlesJSON(s string) ([]TitlesWithSearch, bool) {
	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil {
		repaired = s
	}

	if !gjson.Valid(repaired) {
		return nil, false
	}

	result := gjson.Get(repaired, "titles_with_search")
	if !result.IsArray() {
		return nil, false
	}

	var titles []TitlesWithSearch
	result.ForEach(func(_, item gjson.Result) bool {
		title := item.Get("title").String()
		if strings.TrimSpace(title) == "" {
			return true
		}
		titles = append(titles, TitlesWithSearch{
			Title:       title,
			SearchQuery: item.Get("search_query").String(),
		})
		return true
	})

	if len(titles) == 0 {
		return nil, false
	}
	return titles, true
}

var (
	numberedLinePattern = regexp.MustCompile(`^\s*(?:\d+[.).]|[-*•])\s*(.+?)\s*$`)
)

// heuristicTitles extracts plain titles from numbered or bulleted lines
// when the response could not be parsed as JSON at all. No search query is
// available from this path.
func heuristicTitles(s string) []TitlesWithSearch {
	var titles []TitlesWithSearch
	for _, line := range strings.Split(s, "\n") {
		m := numberedLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		titles = append(titles, TitlesWithSearch{Title: title})
	}
	return titles
}

func capTitles(titles []TitlesWithSearch) []TitlesWithSearch {
	const max = 10
	if len(titles) > max {
		return titles[:max]
	}
	return titles
}

// CuratedTitle is one entry of the stage-D curation JSON response.
type CuratedTitle struct {
	Rank            int    `json:"rank"`
	OriginalIndex   int    `json:"original_index"`
	Title           string `json:"title"`
	RelevanceReason string `json:"relevance_reason"`
}

// ParseCurationResponse decodes the stage-D curation response. Returns nil
// (not an error) when the response cannot be parsed even after repair —
// the orchestrator falls back to a rank-order selection in that case.
func ParseCurationResponse(raw string) []CuratedTitle {
	stripped := StripMarkdownFence(raw)

	repaired, err := jsonrepair.JSONRepair(stripped)
	if err != nil {
		repaired = stripped
	}
	if !gjson.Valid(repaired) {
		return nil
	}

	result := gjson.Get(repaired, "selected_titles")
	if !result.IsArray() {
		return nil
	}

	var curated []CuratedTitle
	result.ForEach(func(_, item gjson.Result) bool {
		curated = append(curated, CuratedTitle{
			Rank:            int(item.Get("rank").Int()),
			OriginalIndex:   int(item.Get("original_index").Int()),
			Title:           item.Get("title").String(),
			RelevanceReason: item.Get("relevance_reason").String(),
		})
		return true
	})

	const max = 10
	if len(curated) > max {
		curated = curated[:max]
	}
	return curated
}
