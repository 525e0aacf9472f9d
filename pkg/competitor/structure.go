package competitor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/blogpilot/blogpilot/pkg/session"
)

var domainPattern = regexp.MustCompile(`https?://([^/]+)`)

// ExtractContentStructure walks the smart-editor main container (falling
// back to every se-component in the document when no container is
// present) and classifies each component in document order.
func ExtractContentStructure(doc *Document) []session.ContentStructureComponent {
	container, ok := doc.FindOne(".se-main-container")
	var components []*Document
	if ok {
		components = container.FindAll(".se-component")
	} else {
		components = doc.FindAll(".se-component")
	}

	structure := make([]session.ContentStructureComponent, 0, len(components))
	for _, c := range components {
		structure = append(structure, analyzeComponent(c))
	}
	return structure
}

func analyzeComponent(c *Document) session.ContentStructureComponent {
	switch {
	case c.HasClass("se-text"):
		return analyzeTextComponent(c)
	case c.HasClass("se-image"):
		return analyzeImageComponent(c)
	case c.HasClass("se-imageGroup") || c.HasClass("se-image-group"):
		return analyzeGalleryComponent(c)
	case c.HasClass("se-video"):
		return analyzeVideoComponent(c)
	case c.HasClass("se-quotation"):
		return analyzeQuotationComponent(c)
	case c.HasClass("se-table"):
		return analyzeTableComponent(c)
	case c.HasClass("se-horizontalLine") || c.HasClass("se-horizontal-line"):
		return session.ContentStructureComponent{Kind: session.ComponentDivider, TextPreview: "구분선"}
	case c.HasClass("se-sticker"):
		return analyzeStickerComponent(c)
	case c.HasClass("se-oembed"):
		return analyzeOEmbedComponent(c)
	case c.HasClass("se-oglink"):
		return analyzeOGLinkComponent(c)
	case c.HasClass("se-imageStrip"):
		return analyzeImageStripComponent(c)
	default:
		return analyzeUnknownComponent(c)
	}
}

func analyzeTextComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentText, Attrs: map[string]string{}}

	var parts []string
	heading := false
	for _, el := range c.FindAll(".se-fs, .se-text-paragraph, p, h1, h2, h3, h4, h5, h6") {
		text := el.Text()
		if text == "" {
			continue
		}
		parts = append(parts, text)

		tag := el.TagName()
		if level, ok := headingLevel(tag); ok {
			out.HeadingLevel = level
			heading = true
		}
		for _, cls := range el.Classes() {
			if strings.HasPrefix(cls, "se-fs-") {
				heading = true
			}
		}
	}
	out.TextPreview = strings.Join(parts, " ")

	if !heading {
		full := c.Text()
		if full != "" {
			out.TextPreview = full
			if len([]rune(full)) < 50 && !strings.Contains(full, "\n") {
				heading = true
			}
		}
	}
	if heading {
		out.Attrs["subtype"] = "heading"
	} else {
		out.Attrs["subtype"] = "paragraph"
	}
	out.Attrs["char_count"] = strconv.Itoa(len([]rune(out.TextPreview)))
	return out
}

func headingLevel(tag string) (int, bool) {
	switch tag {
	case "h1":
		return 1, true
	case "h2":
		return 2, true
	case "h3":
		return 3, true
	case "h4":
		return 4, true
	case "h5":
		return 5, true
	case "h6":
		return 6, true
	}
	return 0, false
}

func analyzeImageComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentImage, TextPreview: "이미지", Attrs: map[string]string{}}
	img, ok := c.FindOne("img")
	if !ok {
		return out
	}
	src := img.Attr("src")
	alt := img.Attr("alt")
	if alt != "" {
		out.TextPreview = alt
	}
	out.Attrs["src"] = src
	out.Attrs["alt"] = alt
	out.Attrs["width"] = img.Attr("width")
	out.Attrs["height"] = img.Attr("height")
	return out
}

func analyzeGalleryComponent(c *Document) session.ContentStructureComponent {
	images := c.FindAll("img")
	var urls []string
	for _, img := range images {
		if src := img.Attr("src"); src != "" {
			urls = append(urls, src)
		}
	}
	return session.ContentStructureComponent{
		Kind:        session.ComponentGallery,
		TextPreview: strconv.Itoa(len(images)) + "개 이미지 갤러리",
		ImageURLs:   urls,
		Attrs:       map[string]string{"image_count": strconv.Itoa(len(images))},
	}
}

func analyzeVideoComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentVideo, TextPreview: "동영상", Attrs: map[string]string{}}

	if iframe, ok := c.FindOne("iframe"); ok {
		src := iframe.Attr("src")
		out.VideoTag = videoPlatform(src)
		out.Attrs["src"] = src
		return out
	}
	if video, ok := c.FindOne("video"); ok {
		out.Attrs["src"] = video.Attr("src")
		out.VideoTag = "direct"
	}
	return out
}

func videoPlatform(src string) string {
	switch {
	case strings.Contains(src, "youtube.com"), strings.Contains(src, "youtu.be"):
		return "youtube"
	case strings.Contains(src, "vimeo.com"):
		return "vimeo"
	case strings.Contains(src, "naver.com"):
		return "naver"
	}
	return ""
}

func analyzeQuotationComponent(c *Document) session.ContentStructureComponent {
	text := c.Text()
	return session.ContentStructureComponent{
		Kind:        session.ComponentQuotation,
		TextPreview: text,
		Attrs:       map[string]string{"char_count": strconv.Itoa(len([]rune(text)))},
	}
}

func analyzeTableComponent(c *Document) session.ContentStructureComponent {
	rows := c.FindAll("tr")
	cells := c.FindAll("th, td")
	cols := 0
	if len(rows) > 0 {
		cols = len(cells) / len(rows)
	}
	return session.ContentStructureComponent{
		Kind:        session.ComponentTable,
		TextPreview: strconv.Itoa(len(rows)) + "행 표",
		Rows:        len(rows),
		Cols:        cols,
	}
}

func analyzeStickerComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentSticker, TextPreview: "스티커", Attrs: map[string]string{}}
	if img, ok := c.FindOne("img"); ok {
		alt := img.Attr("alt")
		if alt != "" {
			out.TextPreview = alt
		}
		out.Attrs["src"] = img.Attr("src")
		out.Attrs["alt"] = alt
	}
	return out
}

func analyzeOEmbedComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentOEmbed, TextPreview: "외부 콘텐츠", Attrs: map[string]string{}}
	iframe, ok := c.FindOne("iframe")
	if !ok {
		return out
	}
	src := iframe.Attr("src")
	out.TextPreview = "외부 콘텐츠 임베드"
	out.Attrs["src"] = src
	switch {
	case strings.Contains(src, "instagram.com"):
		out.Attrs["platform"] = "instagram"
	case strings.Contains(src, "twitter.com"), strings.Contains(src, "x.com"):
		out.Attrs["platform"] = "twitter"
	case strings.Contains(src, "facebook.com"):
		out.Attrs["platform"] = "facebook"
	}
	return out
}

func analyzeOGLinkComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentLinkPreview, TextPreview: "외부 링크", Attrs: map[string]string{}}

	if link, ok := c.FindOne("a"); ok {
		href := link.Attr("href")
		out.Attrs["href"] = href
		if m := domainPattern.FindStringSubmatch(href); m != nil {
			out.Attrs["domain"] = m[1]
		}
	}
	if titleEl, ok := c.FindOne(".se-oglink-title, .se-text-title"); ok {
		out.TextPreview = titleEl.Text()
		out.Attrs["title"] = out.TextPreview
	}
	if descEl, ok := c.FindOne(".se-oglink-summary, .se-text-summary"); ok {
		out.Attrs["description"] = descEl.Text()
	}
	if img, ok := c.FindOne("img"); ok {
		out.Attrs["thumbnail"] = img.Attr("src")
	}
	if out.TextPreview == "" {
		out.TextPreview = "외부 링크 프리뷰"
	}
	return out
}

func analyzeImageStripComponent(c *Document) session.ContentStructureComponent {
	images := c.FindAll("img")
	var urls []string
	for _, img := range images {
		if src := img.Attr("src"); src != "" {
			urls = append(urls, src)
		}
	}
	out := session.ContentStructureComponent{
		Kind:        session.ComponentImageStrip,
		TextPreview: "이미지 슬라이더 (" + strconv.Itoa(len(images)) + "개)",
		ImageURLs:   urls,
		Attrs:       map[string]string{"image_count": strconv.Itoa(len(images))},
	}
	if c.HasClass("se-imageStrip2") {
		out.Attrs["strip_version"] = "2"
	}
	return out
}

func analyzeUnknownComponent(c *Document) session.ContentStructureComponent {
	out := session.ContentStructureComponent{Kind: session.ComponentUnknown, Attrs: map[string]string{}}
	content := c.Text()
	if content != "" {
		runes := []rune(content)
		if len(runes) > 100 {
			runes = runes[:100]
		}
		out.TextPreview = string(runes)
		out.Attrs["char_count"] = strconv.Itoa(len([]rune(content)))
	} else {
		out.TextPreview = "기타 콘텐츠"
	}
	return out
}

// CountMediaFromStructure tallies images, GIFs, and videos from an
// already-classified content structure. Stickers and link-preview
// thumbnails never contribute, matching the platform's own convention
// that they are decorative rather than content media.
func CountMediaFromStructure(structure []session.ContentStructureComponent) (images, gifs, videos int) {
	for _, c := range structure {
		switch c.Kind {
		case session.ComponentImage:
			if IsActualGif(c.Attrs["src"]) {
				gifs++
			} else {
				images++
			}
		case session.ComponentGallery, session.ComponentImageStrip:
			total := len(c.ImageURLs)
			gifCount := 0
			for _, url := range c.ImageURLs {
				if IsActualGif(url) {
					gifCount++
				}
			}
			gifs += gifCount
			images += total - gifCount
		case session.ComponentVideo:
			videos++
		}
	}
	return images, gifs, videos
}
