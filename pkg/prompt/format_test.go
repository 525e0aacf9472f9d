package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdownFenceIdempotent(t *testing.T) {
	fenced := "```json\n{\"a\":1}\n```"
	once := StripMarkdownFence(fenced)
	twice := StripMarkdownFence(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, `{"a":1}`, once)
}

func TestStripMarkdownFenceNoFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripMarkdownFence(`{"a":1}`))
}

func TestParseTitleResponseWellFormedJSON(t *testing.T) {
	raw := "```json\n" + `{"titles_with_search":[{"title":"제목1","search_query":"검색어1"},{"title":"제목2","search_query":"검색어2"}]}` + "\n```"
	titles := ParseTitleResponse(raw)
	assert.Len(t, titles, 2)
	assert.Equal(t, "제목1", titles[0].Title)
	assert.Equal(t, "검색어1", titles[0].SearchQuery)
}

func TestParseTitleResponseCapsAtTen(t *testing.T) {
	raw := `{"titles_with_search":[`
	for i := 0; i < 15; i++ {
		if i > 0 {
			raw += ","
		}
		raw += `{"title":"제목","search_query":"검색"}`
	}
	raw += `]}`

	titles := ParseTitleResponse(raw)
	assert.Len(t, titles, 10)
}

func TestParseTitleResponseHeuristicFallback(t *testing.T) {
	raw := "이 키워드로 추천하는 제목입니다:\n1. 첫 번째 제목\n2. 두 번째 제목\n- 세 번째 제목\n"
	titles := ParseTitleResponse(raw)
	assert.GreaterOrEqual(t, len(titles), 2)
	assert.Equal(t, "첫 번째 제목", titles[0].Title)
	assert.Empty(t, titles[0].SearchQuery)
}

func TestParseTitleResponseUnrecoverableYieldsEmpty(t *testing.T) {
	titles := ParseTitleResponse("완전히 알아볼 수 없는 자유 텍스트 응답입니다.")
	assert.Empty(t, titles)
}

func TestParseCurationResponse(t *testing.T) {
	raw := `{"selected_titles":[{"rank":1,"original_index":3,"title":"선별 제목","relevance_reason":"이유"}]}`
	curated := ParseCurationResponse(raw)
	assert.Len(t, curated, 1)
	assert.Equal(t, 1, curated[0].Rank)
	assert.Equal(t, 3, curated[0].OriginalIndex)
}

func TestParseCurationResponseUnparseableReturnsNil(t *testing.T) {
	assert.Nil(t, ParseCurationResponse("자유 텍스트"))
}
