package prompt

import (
	"strings"
	"testing"

	"github.com/blogpilot/blogpilot/pkg/session"
	"github.com/stretchr/testify/assert"
)

func TestBuildTitlePromptIsDeterministic(t *testing.T) {
	settings := session.WritingSettings{ContentKind: session.ContentKindGuide, Tone: session.TonePoliteFormal}
	keyword := session.KeywordInput{MainKeyword: "프로그래밍 학습법"}

	p1, f1 := BuildTitlePrompt(settings, keyword)
	p2, f2 := BuildTitlePrompt(settings, keyword)

	assert.Equal(t, p1, p2)
	assert.Equal(t, FormatJSON, f1)
	assert.Equal(t, FormatJSON, f2)
	assert.Contains(t, p1, "프로그래밍 학습법")
	assert.Contains(t, p1, "titles_with_search")
}

func TestBuildTitlePromptIncludesSubKeywords(t *testing.T) {
	settings := session.WritingSettings{ContentKind: session.ContentKindReview, ReviewSubtype: session.ReviewSubtypeSponsored}
	keyword := session.KeywordInput{MainKeyword: "블루투스 이어폰", SubKeywords: []string{"무선", "노이즈캔슬링"}}

	p, _ := BuildTitlePrompt(settings, keyword)
	assert.Contains(t, p, "무선, 노이즈캔슬링")
	assert.Contains(t, p, "협찬 후기")
}

func TestBuildCurationPromptListsNumberedTitles(t *testing.T) {
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "제목 A"}}
	titles := []string{"경쟁글 1", "경쟁글 2"}

	p, f := BuildCurationPrompt(selected, "검색어", "메인키워드", nil, session.ContentKindGuide, titles)
	assert.Equal(t, FormatJSON, f)
	assert.Contains(t, p, "1. 경쟁글 1")
	assert.Contains(t, p, "2. 경쟁글 2")
	assert.Contains(t, p, "제목 A")
}

func TestBuildSummaryPromptTruncatesBody(t *testing.T) {
	longBody := strings.Repeat("가", summaryBodyTruncateLimit+500)
	posts := []session.CompetitorPost{
		{CompetitorRef: session.CompetitorRef{Title: "경쟁 글"}, Body: longBody},
	}
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "내 제목"}}

	p, f := BuildSummaryPrompt(selected, "검색어", "메인키워드", nil, session.ContentKindReview, posts)
	assert.Equal(t, FormatText, f)
	assert.Contains(t, p, "## 5. 부족한 점")
	assert.NotContains(t, p, strings.Repeat("가", summaryBodyTruncateLimit+1))
}

func TestBuildSummaryPromptHandlesZeroCompetitors(t *testing.T) {
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "내 제목"}}
	p, _ := BuildSummaryPrompt(selected, "검색어", "메인키워드", nil, session.ContentKindGuide, nil)
	assert.Contains(t, p, "competitor_blogs")
}

func TestBuildWritingPromptBeginsWithTitleLine(t *testing.T) {
	settings := session.WritingSettings{ContentKind: session.ContentKindGuide, Tone: session.TonePoliteFormal}
	keyword := session.KeywordInput{MainKeyword: "프로그래밍 학습법"}
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "프로그래밍 학습법 완벽 정리"}}
	stats := CompetitorStats{AverageImageCount: 4, AverageTagCount: 6}
	summary := session.SummaryArtifact{Text: "## 1. 경쟁 블로그 제목들\n- 예시"}

	p, f := BuildWritingPrompt(settings, keyword, selected, "검색어", stats, summary, []string{"태그1"})
	assert.Equal(t, FormatText, f)
	assert.Contains(t, p, "제목: 프로그래밍 학습법 완벽 정리")
	assert.Contains(t, p, "4개 이상")
	assert.Contains(t, p, "추천 태그:")
}

func TestBuildWritingPromptAppliesSponsoredDisclosureRules(t *testing.T) {
	settings := session.WritingSettings{ContentKind: session.ContentKindReview, ReviewSubtype: session.ReviewSubtypeSponsored, Tone: session.ToneCasualInformal}
	keyword := session.KeywordInput{MainKeyword: "이어폰"}
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "이어폰 후기"}}

	p, _ := BuildWritingPrompt(settings, keyword, selected, "검색어", CompetitorStats{AverageImageCount: 3}, session.SummaryArtifact{}, nil)
	assert.Contains(t, p, "구매했다")
	assert.Contains(t, p, "제공받아 작성한 후기입니다")
}

func TestBuildWritingPromptZeroCompetitorsStillProducesEnvelope(t *testing.T) {
	settings := session.WritingSettings{ContentKind: session.ContentKindGuide, Tone: session.TonePoliteFormal}
	keyword := session.KeywordInput{MainKeyword: "키워드"}
	selected := session.SelectedTitle{TitleCandidate: session.TitleCandidate{Title: "제목"}}
	stats := StatsFromPosts(nil)

	p, _ := BuildWritingPrompt(settings, keyword, selected, "검색어", stats, session.SummaryArtifact{}, nil)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(p), "\n# AI 역할 설정") || strings.Contains(p, "# AI 역할 설정"))
	assert.Contains(t, p, "제목: 제목")
	assert.Equal(t, 3, stats.AverageImageCount)
}
