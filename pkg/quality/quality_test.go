package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdvertisementKeywordMatch(t *testing.T) {
	assert.True(t, IsAdvertisement("이 제품은 업체로부터 협찬을 받아 작성되었습니다.", ""))
	assert.True(t, IsAdvertisement("저는 이 체험단에 선정되어 무료로 제품을 받았습니다.", ""))
	assert.False(t, IsAdvertisement("이 제품은 직접 구매해서 사용해본 후기입니다.", ""))
}

func TestIsAdvertisementPatternMatch(t *testing.T) {
	assert.True(t, IsAdvertisement("해당 제품을 제공받아 작성한 리뷰입니다.", ""))
	assert.True(t, IsAdvertisement("본문 내용 일부", "광고가 포함된 글입니다"))
}

func TestIsAdvertisementEmptyBody(t *testing.T) {
	assert.False(t, IsAdvertisement("", "아무 제목"))
}

func TestIsLowQualityShortTextNotGated(t *testing.T) {
	assert.False(t, IsLowQuality("짧은 글"))
}

func TestIsLowQualityNumbersOnly(t *testing.T) {
	text := strings.Repeat("010-1234-5678, 1500원 ", 10)
	assert.True(t, IsLowQuality(text))
}

func TestIsLowQualitySpecialCharHeavy(t *testing.T) {
	text := strings.Repeat("!@#$%^&*()_+=-[]{};':\",.<>/?|~`", 5) + strings.Repeat("가나다라", 2)
	assert.True(t, IsLowQuality(text))
}

func TestIsLowQualityRepeatedChar(t *testing.T) {
	text := strings.Repeat("가", 150)
	assert.True(t, IsLowQuality(text))
}

func TestIsLowQualityNormalText(t *testing.T) {
	text := strings.Repeat("이것은 정상적인 한글 문장으로 품질이 낮지 않아야 합니다. ", 10)
	assert.False(t, IsLowQuality(text))
}

func TestAdmitsRequiresAllGates(t *testing.T) {
	normal := strings.Repeat("이것은 정상적인 한글 문장으로 품질이 낮지 않아야 합니다. ", 40)
	assert.True(t, Admits(len([]rune(normal)), normal, "정상 제목"))
	assert.False(t, Admits(500, normal, "정상 제목"), "body under MinBodyLength must be rejected")
	assert.False(t, Admits(len([]rune(normal)), normal, "협찬 제공받아 작성"), "advertorial title must be rejected")
}
