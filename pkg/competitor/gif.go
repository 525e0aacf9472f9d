package competitor

import "strings"

// staticImageMarkers identify the platform's static-image CDN and
// thumbnail variants. A URL matching any of these is never a GIF,
// regardless of whether it also matches a GIF-indicating substring below
// (spec invariant: static-image CDN markers always win).
var staticImageMarkers = []string{
	"postfiles.pstatic.net",
	"type=w80_blur",
	"type=w773",
	"type=w80",
}

// gifMarkers are the substrings that indicate an actual animated GIF.
var gifMarkers = []string{
	".gif?",
	".gifv",
	"format=gif",
	"type=gif",
	"_gif.",
}

// IsActualGif reports whether url points to a real animated GIF rather
// than a static image that merely happens to contain a GIF-like
// substring. Static-image markers are checked first and always win.
func IsActualGif(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)

	for _, marker := range staticImageMarkers {
		// A marker followed by a digit is a different size variant:
		// "type=w80" does not match inside "type=w800".
		i := strings.Index(lower, marker)
		if i < 0 {
			continue
		}
		if end := i + len(marker); end == len(lower) || lower[end] < '0' || lower[end] > '9' {
			return false
		}
	}

	for _, marker := range gifMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}
