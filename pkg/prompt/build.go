package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blogpilot/blogpilot/pkg/session"
)

// BuildTitlePrompt assembles stage T's prompt: 10 candidate titles paired
// with a blog-search query each, for the given settings and keyword.
func BuildTitlePrompt(settings session.WritingSettings, keyword session.KeywordInput) (string, Format) {
	kind := settings.ContentKind
	if _, ok := contentGuidelines[kind]; !ok {
		kind = session.ContentKindGuide
	}
	guideline := guidelineFor(kind)
	kindLabel := contentKindLabel[kind]

	var subKeywordBlock, subKeywordInstruction string
	subKeywords := strings.Join(keyword.SubKeywords, ", ")
	if strings.TrimSpace(subKeywords) != "" {
		subKeywordBlock = fmt.Sprintf("**보조키워드**: %s\n", subKeywords)
		subKeywordInstruction = "- 보조키워드는 필수는 아니지만, 적절히 활용하면 더 구체적인 제목 생성 가능\n"
	}

	var reviewBlock string
	if kind == session.ContentKindReview && settings.ReviewSubtype != "" {
		if rg, ok := reviewDetailGuidelines[settings.ReviewSubtype]; ok {
			reviewBlock = fmt.Sprintf("\n**후기 세부 유형**: %s\n- 설명: %s\n- 적절한 톤: %s\n",
				reviewSubtypeLabel[settings.ReviewSubtype], rg.Description, rg.Transparency)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "네이버 블로그 상위 노출에 유리한 '%s' 스타일의 제목 10개를 추천해주세요.\n\n", kindLabel)
	fmt.Fprintf(&b, "**메인키워드**: %s\n%s\n", keyword.MainKeyword, subKeywordBlock)
	fmt.Fprintf(&b, "**%s 특징**:\n- 접근법: %s\n- 핵심 키워드: %s\n- 중점 영역: %s\n",
		kindLabel, guideline.Approach, strings.Join(guideline.Keywords, ", "), strings.Join(guideline.FocusAreas, ", "))
	b.WriteString(reviewBlock)
	b.WriteString("\n**제목 생성 규칙**:\n")
	b.WriteString("1. 메인키워드를 자연스럽게 포함\n")
	b.WriteString("2. 클릭 유도와 궁금증 자극\n")
	b.WriteString("3. 30-60자 내외 권장\n")
	fmt.Fprintf(&b, "4. %s의 특성 반영\n", kindLabel)
	b.WriteString("5. 네이버 블로그 SEO 최적화\n")
	b.WriteString("6. 이모티콘 사용 금지 (텍스트만 사용)\n")
	b.WriteString("7. 구체적 년도 표기 금지 (2024, 2025 등 특정 년도 사용 금지. \"최신\", \"현재\" 등으로 대체)\n")
	b.WriteString(subKeywordInstruction)
	b.WriteString("\n**출력 형식**:\n")
	b.WriteString("JSON 형태로 정확히 10개 제목과 각 제목에 맞는 블로그 검색어를 함께 반환해주세요.\n\n")
	b.WriteString("각 제목마다 \"해당 제목과 유사한 내용의 블로그를 찾기 위한 네이버 블로그 검색어\"를 함께 생성해주세요.\n")
	b.WriteString("이 검색어는 다른 블로그를 검색해서 분석하여 참고용 자료로 활용됩니다.\n")
	b.WriteString("검색어는 2-4개 단어 조합으로 구체적이고 관련성 높게 만들어주세요.\n\n")
	b.WriteString(`{
  "titles_with_search": [
    {"title": "제목1", "search_query": "관련 블로그 검색어1"},
    {"title": "제목2", "search_query": "관련 블로그 검색어2"}
  ]
}`)
	fmt.Fprintf(&b, "\n\n각 제목은 %s의 특성을 살리되, 서로 다른 접근 방식으로 다양하게 생성해주세요.", kindLabel)

	return b.String(), FormatJSON
}

// BuildCurationPrompt assembles stage D's AI-curation prompt: present up to
// 30 candidate titles and ask for the top 10 in relevance order.
func BuildCurationPrompt(selected session.SelectedTitle, effectiveSearchQuery, mainKeyword string, subKeywords []string, kind session.ContentKind, competitorTitles []string) (string, Format) {
	var titlesText strings.Builder
	for i, t := range competitorTitles {
		fmt.Fprintf(&titlesText, "%d. %s\n", i+1, t)
	}

	var subBlock, subCriterion string
	sub := strings.Join(subKeywords, ", ")
	if strings.TrimSpace(sub) != "" {
		subBlock = fmt.Sprintf("**보조 키워드**: %s\n", sub)
		subCriterion = fmt.Sprintf("6. 보조 키워드(%s)와 관련성이 있는 제목\n", sub)
	}
	kindLabel := contentKindLabel[kind]
	if kindLabel == "" {
		kindLabel = contentKindLabel[session.ContentKindGuide]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "네이버 블로그에서 '%s' 키워드로 검색한 블로그 제목들 중에서, 아래 조건에 가장 적합한 상위 10개를 선별해주세요.\n\n", effectiveSearchQuery)
	fmt.Fprintf(&b, "**타겟 제목**: %s\n", selected.Title)
	fmt.Fprintf(&b, "**메인 키워드**: %s\n%s", mainKeyword, subBlock)
	fmt.Fprintf(&b, "**검색 키워드**: %s\n", effectiveSearchQuery)
	fmt.Fprintf(&b, "**콘텐츠 유형**: %s\n\n", kindLabel)
	b.WriteString("**선별 기준**:\n")
	b.WriteString("1. 타겟 제목과 주제적 관련성이 높은 글\n")
	b.WriteString("2. 메인 키워드와 직접적으로 연관된 내용\n")
	fmt.Fprintf(&b, "3. %s 유형에 적합한 접근방식의 글\n", kindLabel)
	b.WriteString("4. 구체적이고 실용적인 정보를 담고 있을 것으로 예상되는 제목\n")
	b.WriteString("5. 광고성이나 홍보성보다는 정보성 콘텐츠로 보이는 제목\n")
	b.WriteString(subCriterion)
	b.WriteString("\n**검색된 블로그 제목들**:\n")
	b.WriteString(titlesText.String())
	b.WriteString("\n**출력 형식**:\n")
	b.WriteString("위 제목들 중에서 관련도와 유용성이 높은 순서대로 상위 10개를 JSON 형태로 선별해주세요.\n\n")
	b.WriteString(`{
  "selected_titles": [
    {"rank": 1, "original_index": 3, "title": "선별된 제목 1", "relevance_reason": "선별 이유"}
  ]
}`)
	b.WriteString("\n\n각 제목이 왜 선택되었는지 간단한 이유와 함께 우선순위 순서대로 정확히 10개만 선별해주세요.")

	return b.String(), FormatJSON
}

const summaryBodyTruncateLimit = 2000

type summaryBlogEntry struct {
	BlogNumber int    `json:"blog_number"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type summaryTargetInfo struct {
	SelectedTitle string `json:"selected_title"`
	SearchQuery   string `json:"search_keyword"`
	MainKeyword   string `json:"main_keyword"`
	ContentKind   string `json:"content_type"`
	SubKeywords   string `json:"sub_keywords,omitempty"`
}

type summaryInputData struct {
	TargetInfo      summaryTargetInfo   `json:"target_info"`
	CompetitorBlogs []summaryBlogEntry `json:"competitor_blogs"`
}

// BuildSummaryPrompt assembles stage S's prompt: a JSON block describing
// the target post and up to three competitor posts, demanding a five
// fixed-header Korean free-text analysis back.
func BuildSummaryPrompt(selected session.SelectedTitle, effectiveSearchQuery, mainKeyword string, subKeywords []string, kind session.ContentKind, posts []session.CompetitorPost) (string, Format) {
	kindLabel := contentKindLabel[kind]
	if kindLabel == "" {
		kindLabel = contentKindLabel[session.ContentKindGuide]
	}

	input := summaryInputData{
		TargetInfo: summaryTargetInfo{
			SelectedTitle: selected.Title,
			SearchQuery:   effectiveSearchQuery,
			MainKeyword:   mainKeyword,
			ContentKind:   kindLabel,
			SubKeywords:   strings.Join(subKeywords, ", "),
		},
	}
	for i, post := range posts {
		body := post.Body
		if len([]rune(body)) > summaryBodyTruncateLimit {
			body = string([]rune(body)[:summaryBodyTruncateLimit])
		}
		title := post.Title
		if title == "" {
			title = "제목 없음"
		}
		if body == "" {
			body = "내용 없음"
		}
		input.CompetitorBlogs = append(input.CompetitorBlogs, summaryBlogEntry{
			BlogNumber: i + 1,
			Title:      title,
			Content:    body,
		})
	}

	jsonInput, _ := json.MarshalIndent(input, "", "  ")

	var b strings.Builder
	b.WriteString("아래 JSON 데이터를 분석해서 다음 형식으로 정확히 출력해주세요:\n\n")
	b.WriteString("## 1. 경쟁 블로그 제목들\n- (분석한 블로그들의 제목을 나열)\n\n")
	b.WriteString("## 2. 핵심 키워드\n- (자주 나오는 관련 키워드들을 나열)\n\n")
	b.WriteString("## 3. 필수 내용\n- (모든 글이 다루는 공통 주제들을 정리)\n\n")
	b.WriteString("## 4. 주요 포인트\n- (각 글이 중점적으로 다루는 핵심 내용들을 정리)\n\n")
	b.WriteString("## 5. 부족한 점\n- (기존 글들이 놓친 부분이나 개선 가능한 점들을 정리)\n\n")
	b.WriteString("**JSON 데이터 설명**:\n")
	b.WriteString("- target_info: 내가 작성할 블로그의 정보\n")
	b.WriteString("- competitor_blogs: search_keyword로 검색해서 찾은 경쟁사 분석용 참고 블로그 (제목과 본문 내용)\n\n")
	b.WriteString("**분석 데이터**:\n```json\n")
	b.Write(jsonInput)
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "위 JSON 데이터를 기반으로 '%s' 키워드와 '%s' 컨텐츠 유형에 맞춰 분석해주세요.\n", mainKeyword, kindLabel)
	b.WriteString("각 항목마다 구체적이고 실용적인 내용을 포함해주세요.")

	return b.String(), FormatText
}

// CompetitorStats is the small aggregate the writer prompt needs from the
// enriched competitor set: how many tags and images comparable posts carry.
type CompetitorStats struct {
	AverageTagCount   int
	AverageImageCount int
}

// StatsFromPosts computes CompetitorStats from the surviving enriched
// posts. Falls back to the original's defaults (5 tags, 3 images) when
// the zero-competitor path leaves no posts to average — see the
// average-image-count-fallback design note.
func StatsFromPosts(posts []session.CompetitorPost) CompetitorStats {
	if len(posts) == 0 {
		return CompetitorStats{AverageTagCount: 5, AverageImageCount: 3}
	}
	var tagTotal, imageTotal int
	for _, p := range posts {
		tagTotal += len(p.Hashtags)
		imageTotal += p.ImageCount
	}
	return CompetitorStats{
		AverageTagCount:   tagTotal / len(posts),
		AverageImageCount: imageTotal / len(posts),
	}
}

// BuildWritingPrompt assembles stage W's prompt: the summary verbatim, a
// locked-title instruction, content-kind/review/tone guideline blocks, and
// the fixed "제목: ... / 추천 태그:" output envelope.
func BuildWritingPrompt(settings session.WritingSettings, keyword session.KeywordInput, selected session.SelectedTitle, effectiveSearchQuery string, stats CompetitorStats, summary session.SummaryArtifact, commonTags []string) (string, Format) {
	kind := settings.ContentKind
	if _, ok := contentGuidelines[kind]; !ok {
		kind = session.ContentKindGuide
	}
	guideline := guidelineFor(kind)
	kindLabel := contentKindLabel[kind]

	tone := settings.Tone
	toneG, ok := toneGuidelines[tone]
	if !ok {
		tone = session.TonePoliteFormal
		toneG = toneGuidelines[tone]
	}

	roleDescription := "당신은 네이버 블로그에서 인기 있는 글을 쓰는 블로거입니다. 독자들이 진짜 도움이 되고 재미있게 읽을 수 있는 글을 쓰는 것이 목표입니다."
	if id := strings.TrimSpace(settings.BloggerIdentity); id != "" {
		roleDescription = fmt.Sprintf("당신은 네이버 블로그에서 %s 블로그를 운영하고 있습니다. 독자들이 진짜 도움이 되고 재미있게 읽을 수 있는 글을 쓰는 것이 목표입니다.", id)
	}

	summaryText := summary.Text
	if strings.TrimSpace(summaryText) == "" {
		summaryText = "참고할 만한 경쟁사 분석 정보가 없으니, 자연스럽고 유용한 컨텐츠로 작성해주세요."
	}

	subKeywordsText := strings.Join(keyword.SubKeywords, ", ")
	if strings.TrimSpace(subKeywordsText) == "" {
		subKeywordsText = "메인 키워드와 관련된 보조 키워드들을 3-5개 직접 생성하여 활용"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n# AI 역할 설정\n%s\n\n", roleDescription)
	fmt.Fprintf(&b, "## 참고할 경쟁 블로그 요약 정보\n'%s'로 검색시 노출되는 상위 블로그 글을 요약한 결과입니다. 이를 참고하여 더 나은 독창적인 컨텐츠를 작성해주세요:\n\n%s\n\n", effectiveSearchQuery, summaryText)

	b.WriteString("# 작성 지침\n\n")
	b.WriteString("## 🚨 절대 규칙: 제목 고정 🚨\n")
	b.WriteString("**❌ 제목 변경 절대 금지 ❌**\n")
	fmt.Fprintf(&b, "**✅ 반드시 다음 제목을 그대로 복사해서 사용: \"%s\"**\n", selected.Title)
	b.WriteString("**🔒 이 제목을 1글자도 바꾸지 말고 정확히 그대로 출력하세요 🔒**\n\n")

	b.WriteString("## 기본 정보\n")
	fmt.Fprintf(&b, "- **작성할 글 제목**: \"%s\"\n", selected.Title)
	fmt.Fprintf(&b, "- **메인 키워드**: \"%s\"\n", keyword.MainKeyword)
	fmt.Fprintf(&b, "- **보조 키워드**: \"%s\"\n", subKeywordsText)
	fmt.Fprintf(&b, "- **컨텐츠 유형**: %s (%s)", kindLabel, guideline.Approach)

	if kind == session.ContentKindReview && settings.ReviewSubtype != "" {
		if rg, ok := reviewDetailGuidelines[settings.ReviewSubtype]; ok {
			b.WriteString("\n\n## 후기 세부 유형\n")
			fmt.Fprintf(&b, "- **후기 유형**: %s\n", reviewSubtypeLabel[settings.ReviewSubtype])
			fmt.Fprintf(&b, "- **후기 설명**: %s\n", rg.Description)
			fmt.Fprintf(&b, "- **투명성 원칙**: %s\n", rg.Transparency)
			fmt.Fprintf(&b, "- **핵심 포인트**: %s", strings.Join(rg.KeyPoints, ", "))
			if rg.ForbiddenVerb {
				b.WriteString("\n- **금지 표현**: '구매했다', '샀다' 등 구매를 의미하는 표현 사용 금지")
			}
		}
	}

	b.WriteString("\n\n## 말투 지침\n")
	fmt.Fprintf(&b, "- **선택된 말투**: %s\n", toneLabel[tone])
	fmt.Fprintf(&b, "- **말투 스타일**: %s\n", toneG.Style)
	fmt.Fprintf(&b, "- **예시 표현**: %s\n", strings.Join(toneG.Examples, ", "))
	fmt.Fprintf(&b, "- **문장 특징**: %s\n", toneG.SentenceStyle)
	fmt.Fprintf(&b, "- **주요 특색**: %s\n", strings.Join(toneG.KeyFeatures, ", "))
	fmt.Fprintf(&b, "- **마무리 문구**: %s\n", toneG.Ending)

	b.WriteString("\n## 글 구성 방식\n")
	fmt.Fprintf(&b, "- **글 구조**: %s\n", guideline.Structure)
	fmt.Fprintf(&b, "- **주요 초점**: %s\n", strings.Join(guideline.FocusAreas, ", "))
	fmt.Fprintf(&b, "- **핵심 표현**: %s\n", strings.Join(guideline.Keywords, ", "))

	b.WriteString("\n## SEO 및 기술적 요구사항\n")
	b.WriteString("- 글자 수: 1,700-2,000자 (공백 제외)\n")
	b.WriteString("- 메인 키워드: 5-6회 자연 반복\n")
	b.WriteString("- 보조 키워드: 각각 3-4회 사용\n")
	fmt.Fprintf(&b, "- 이미지: %d개 이상 (이미지) 표시로 배치, 필요시 연속 4개 배치 가능\n", stats.AverageImageCount)
	b.WriteString("- 동영상: 1개 (동영상) 표시로 배치\n")

	b.WriteString("\n## 글쓰기 품질 요구사항\n")
	b.WriteString("- **자연스러운 문체**: AI 생성티 없는 개성 있고 자연스러운 어투로 작성\n")
	b.WriteString("- **완전한 내용**: XX공원, OO병원 같은 placeholder 사용 금지. 구체적인 정보가 없다면 \"근처 공원\", \"동네 병원\" 등 일반적 표현 사용\n")

	b.WriteString("\n# 🔥 출력 형식 🔥\n\n")
	b.WriteString("🚨🚨🚨 제목 변경 절대 금지! 아래 제목을 정확히 복사하세요! 🚨🚨🚨\n")
	fmt.Fprintf(&b, "**제목: %s** ← 이것을 정확히 복사해서 출력!\n\n", selected.Title)
	b.WriteString("다른 설명 없이 아래 형식으로만 출력하세요:\n\n```\n")
	fmt.Fprintf(&b, "제목: %s\n\n", selected.Title)
	b.WriteString("[서론 - 핵심 답변 즉시 제시]\n\n")
	b.WriteString("[본문은 다양한 형식으로 구성하세요]\n")
	b.WriteString("- 소제목 + 본문\n- 체크리스트 (✓ 항목들)\n- 비교표 (| 항목 | 특징 | 가격 |)\n")
	b.WriteString("- TOP5 순위 (1위: 제품명 - 특징)\n- 단계별 가이드 (1단계, 2단계...)\n- Q&A 형식 등을 적절히 조합\n\n")
	b.WriteString("[결론 - 요약 및 독자 행동 유도]\n\n")
	b.WriteString("추천 태그: \n")
	if len(commonTags) > 0 {
		tagged := make([]string, 0, len(commonTags))
		for _, t := range commonTags {
			tagged = append(tagged, "#"+strings.TrimPrefix(t, "#"))
		}
		fmt.Fprintf(&b, "[상위 블로그 인기 태그 참고: %s]\n", strings.Join(tagged, ", "))
	}
	b.WriteString("[메인키워드와 보조키워드를 활용하여 글 내용에 적합한 태그 5개 이상 작성]\n```")

	return strings.TrimSpace(b.String()), FormatText
}
