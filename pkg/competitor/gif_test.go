package competitor

import "testing"

func TestIsActualGifDetectsDefinitePatterns(t *testing.T) {
	cases := []string{
		"https://example.com/a.gif?type=w800",
		"https://example.com/video.gifv",
		"https://example.com/img?format=gif",
		"https://example.com/img?type=gif",
		"https://example.com/foo_gif.jpg",
	}
	for _, url := range cases {
		if !IsActualGif(url) {
			t.Errorf("expected %q to be detected as a gif", url)
		}
	}
}

func TestIsActualGifStaticMarkersAlwaysWin(t *testing.T) {
	// postfiles.pstatic.net is a static-image CDN marker; it must never
	// be classified as a GIF even if the URL also contains a substring
	// that would otherwise match a GIF pattern.
	url := "https://postfiles.pstatic.net/abc_gif.jpg?type=w773"
	if IsActualGif(url) {
		t.Errorf("static-image CDN marker should prevent gif classification for %q", url)
	}
}

func TestIsActualGifPlainStaticImagesAreNotGifs(t *testing.T) {
	for _, url := range []string{
		"https://example.com/photo.jpg",
		"https://example.com/photo.jpeg",
		"https://example.com/photo.png",
		"",
	} {
		if IsActualGif(url) {
			t.Errorf("expected %q to not be a gif", url)
		}
	}
}
