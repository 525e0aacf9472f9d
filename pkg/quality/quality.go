// Package quality implements the two pure predicates that gate competitor
// posts before they are admitted into the set forwarded to the
// summarization stage: advertorial/sponsored detection and low-information
// detection. The exact keyword and pattern sets are part of the contract —
// adding or removing terms changes which posts survive.
package quality

import (
	"regexp"
	"strings"
)

// adKeywords is matched against the lowercased (body + " " + title). Any
// single hit is sufficient to classify the post as an advertisement.
var adKeywords = []string{
	// advertising
	"광고포스트", "광고 포스트", "광고글", "광고 글", "광고입니다", "광고 입니다",
	"유료광고", "유료 광고", "파트너스", "쿠팡파트너스", "파트너 활동", "추천링크",

	// sponsorship
	"협찬", "협찬받", "협찬글", "협찬 글", "협찬으로", "협찬을", "제공받", "무료로 제공",
	"브랜드로부터", "업체로부터", "해당업체", "해당 업체", "제품을 제공", "서비스를 제공",
	"제공받아", "제공받은", "지원을 받아", "지원받아", "업체에서 제공", "업체로부터 제품",

	// trial-group programs
	"체험단", "체험 단", "리뷰어", "체험후기", "체험 후기", "체험해보", "체험을",
	"무료체험", "무료 체험", "서포터즈", "앰배서더", "인플루언서",

	// other commercial tells
	"원고료", "대가", "소정의", "혜택을", "증정", "무료로 받", "공짜로",
	"할인코드", "쿠폰", "프로모션", "이벤트 참여",
}

var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`.*제공받.*작성.*`),
	regexp.MustCompile(`.*협찬.*받.*글.*`),
	regexp.MustCompile(`.*무료.*받.*후기.*`),
	regexp.MustCompile(`.*체험.*참여.*`),
	regexp.MustCompile(`.*광고.*포함.*`),
	regexp.MustCompile(`.*업체.*지원.*받.*`),
	regexp.MustCompile(`.*업체.*제품.*제공.*`),
}

// IsAdvertisement reports whether body+title reads as an advertorial,
// sponsored, or trial-group post.
func IsAdvertisement(body, title string) bool {
	if body == "" {
		return false
	}

	fullText := strings.ToLower(body + " " + title)

	for _, kw := range adKeywords {
		if strings.Contains(fullText, kw) {
			return true
		}
	}

	for _, pat := range adPatterns {
		if pat.MatchString(fullText) {
			return true
		}
	}

	return false
}

var (
	numbersAndSymbols = regexp.MustCompile(`[0-9\s\-,()원₩.+#]`)
	nonKoreanAlnum    = regexp.MustCompile(`[가-힣ㄱ-ㅎㅏ-ㅣa-zA-Z0-9\s]`)
)

// hasRunOfFive reports whether any single rune repeats five or more times
// consecutively. RE2 has no backreferences, so this scans instead of using
// a `(.)\1{4,}`-style pattern.
func hasRunOfFive(s string) bool {
	runes := []rune(s)
	if len(runes) < 5 {
		return false
	}
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 5 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// IsLowQuality reports whether cleaned text is low-information: mostly
// numbers/symbols, mostly special characters, or a long run of one
// repeated character. Texts under 100 characters are not gated here.
func IsLowQuality(text string) bool {
	cleaned := strings.TrimSpace(text)
	if len([]rune(cleaned)) < 100 {
		return false
	}

	total := float64(len([]rune(cleaned)))

	meaningful := numbersAndSymbols.ReplaceAllString(cleaned, "")
	if float64(len([]rune(meaningful)))/total < 0.3 {
		return true
	}

	special := nonKoreanAlnum.ReplaceAllString(cleaned, "")
	if float64(len([]rune(special)))/total > 0.15 {
		return true
	}

	if hasRunOfFive(cleaned) {
		return true
	}

	return false
}

// MinBodyLength is the admission-gate floor on whitespace-stripped body
// length; posts shorter than this never reach the forwarded-to-summary set.
const MinBodyLength = 1000

// Admits reports whether a competitor post passes every admission gate:
// long enough, not an advertisement, not low-quality.
func Admits(bodyLength int, body, title string) bool {
	return bodyLength >= MinBodyLength && !IsAdvertisement(body, title) && !IsLowQuality(body)
}
