// Package prompt assembles the deterministic prompt strings each pipeline
// stage sends to ProviderGateway. Every function here is pure: identical
// inputs always produce byte-identical output.
package prompt

import "github.com/blogpilot/blogpilot/pkg/session"

// contentGuideline is the per-content-kind shape of a post: its authorial
// approach, section structure, and the vocabulary a good instance of that
// kind tends to use.
type contentGuideline struct {
	Approach   string
	Structure  string
	Keywords   []string
	FocusAreas []string
}

var contentGuidelines = map[session.ContentKind]contentGuideline{
	session.ContentKindReview: {
		Approach:   "개인 경험과 솔직한 후기를 중심으로 유일무이한 콘텐츠 작성",
		Structure:  "사용 전 고민 → 직접 사용 경험 → 장단점 솔직 후기 → 최종 평가 및 추천",
		Keywords:   []string{"직접 써봤어요", "솔직 후기", "개인적으로", "실제로 사용해보니", "추천하는 이유"},
		FocusAreas: []string{"개인 경험과 솔직한 후기", "장단점 균형 제시", "구체적 사용 데이터"},
	},
	session.ContentKindGuide: {
		Approach:   "정확하고 풍부한 정보를 체계적으로 제공하여 검색자의 궁금증 완전 해결",
		Structure:  "문제 정의 → 해결책 제시 → 단계별 가이드 → 주의사항 → 마무리",
		Keywords:   []string{"완벽 정리", "총정리", "핵심 포인트", "단계별 가이드", "정확한 정보"},
		FocusAreas: []string{"체계적 구조와 소제목", "실용적 가이드 제공", "구체적 실행 방법"},
	},
	session.ContentKindComparison: {
		Approach:   "체계적 비교분석으로 독자의 선택 고민을 완전히 해결",
		Structure:  "비교 기준 제시 → 각 옵션 분석 → 장단점 비교 → 상황별 추천 → 최종 결론",
		Keywords:   []string{"VS 비교", "Best 5", "장단점", "상황별 추천", "가성비"},
		FocusAreas: []string{"객관적 비교 기준", "상황별 맞춤 추천", "명확한 선택 가이드"},
	},
}

// reviewDetailGuideline is the disclosure policy for one review subtype:
// what the first body paragraph must disclose, and which verbs are
// forbidden (e.g. "purchased" when the product was provided free).
type reviewDetailGuideline struct {
	Description   string
	KeyPoints     []string
	Transparency  string
	ForbiddenVerb bool
}

var reviewDetailGuidelines = map[session.ReviewSubtype]reviewDetailGuideline{
	session.ReviewSubtypeOwnPurchase: {
		Description: "직접 구매해서 써본 솔직한 개인 후기",
		KeyPoints: []string{
			"본문 제일 첫번째에 '직접 구매해서 사용해본 후기입니다' 자연스럽게 명시",
			"구매하게 된 이유와 고민 표현",
			"장단점을 균형있게 서술",
		},
		Transparency:  "개인 구매로 편견 없는 솔직한 후기임을 강조",
		ForbiddenVerb: false,
	},
	session.ReviewSubtypeSponsored: {
		Description: "브랜드에서 제공받은 제품의 정직한 리뷰",
		KeyPoints: []string{
			"본문 제일 첫번째에 '브랜드로부터 제품을 제공받아 작성한 후기입니다' 명시",
			"협찬이지만 솔직한 평가를 하겠다고 표현",
			"장단점을 균형있게 서술",
		},
		Transparency:  "절대 '구매했다', '샀다' 등의 표현 사용 금지",
		ForbiddenVerb: true,
	},
	session.ReviewSubtypeTrial: {
		Description: "체험단 참여를 통한 제품 사용 후기",
		KeyPoints: []string{
			"본문 제일 첫번째에 '체험단에 참여하여 작성한 후기입니다' 명시",
			"체험 기회에 대한 감사 표현",
			"객관적이고 공정한 평가 의지 표현",
		},
		Transparency:  "절대 '구매했다', '샀다' 등의 표현 사용 금지",
		ForbiddenVerb: true,
	},
	session.ReviewSubtypeRental: {
		Description: "렌탈 서비스를 이용한 제품 사용 후기",
		KeyPoints: []string{
			"본문 제일 첫번째에 '렌탈 서비스로 이용해본 후기입니다' 명시",
			"렌탈을 선택한 이유 표현",
			"렌탈 서비스의 장단점 균형있게 서술",
		},
		Transparency:  "렌탈 서비스 특성상 제한적 사용 후기임을 안내",
		ForbiddenVerb: true,
	},
}

// toneGuideline is a writing-style recipe: the register, example phrases,
// sentence shape, and the sign-off line the article ends with.
type toneGuideline struct {
	Style         string
	Examples      []string
	Ending        string
	SentenceStyle string
	KeyFeatures   []string
}

var toneGuidelines = map[session.Tone]toneGuideline{
	session.ToneCasualInformal: {
		Style:         "친구와 대화하듯 편안하고 친근한 말투",
		Examples:      []string{"써봤는데 진짜 좋더라~", "완전 강추!", "솔직히 말하면", "이거 진짜 대박이야"},
		Ending:        "댓글로 궁금한 거 물어봐!",
		SentenceStyle: "짧고 리드미컬한 문장",
		KeyFeatures:   []string{"감탄사와 줄임말 활용", "개인적 경험 많이 포함", "유머와 재미 요소"},
	},
	session.ToneFriendlyPolite: {
		Style:         "친근하고 부드러운 존댓말로 따뜻한 느낌",
		Examples:      []string{"궁금해서 찾아봤어요", "써봤는데 좋더라구요", "이런 게 있더라구요", "도움이 될 것 같아요"},
		Ending:        "도움이 되셨으면 좋겠어요~ 궁금한 게 있으시면 댓글 남겨주세요!",
		SentenceStyle: "부드럽고 따뜻한 존댓말 문장",
		KeyFeatures:   []string{"부드러운 존댓말", "따뜻하고 친근한 어조", "자연스러운 개인 경험"},
	},
	session.TonePoliteFormal: {
		Style:         "정중하고 예의 바른 존댓말로 신뢰감 조성",
		Examples:      []string{"사용해보았습니다", "추천드립니다", "도움이 되시길 바랍니다", "참고하시기 바랍니다"},
		Ending:        "도움이 되었으면 좋겠습니다. 궁금한 점은 댓글로 문의해 주세요.",
		SentenceStyle: "완성도 높은 정중한 문장",
		KeyFeatures:   []string{"전문성과 신뢰감", "체계적 정보 전달", "예의 바른 표현"},
	},
}

// contentKindLabel is the Korean label used inside prompts, since the
// model responds far better to the original domain terms than to the
// English enum values used internally.
var contentKindLabel = map[session.ContentKind]string{
	session.ContentKindReview:     "후기/리뷰형",
	session.ContentKindGuide:      "정보/가이드형",
	session.ContentKindComparison: "비교/추천형",
}

var reviewSubtypeLabel = map[session.ReviewSubtype]string{
	session.ReviewSubtypeOwnPurchase: "내돈내산 후기",
	session.ReviewSubtypeSponsored:   "협찬 후기",
	session.ReviewSubtypeTrial:       "체험단 후기",
	session.ReviewSubtypeRental:      "대여/렌탈 후기",
}

var toneLabel = map[session.Tone]string{
	session.ToneCasualInformal: "친근한 반말체",
	session.TonePoliteFormal:   "정중한 존댓말체",
	session.ToneFriendlyPolite: "친근한 존댓말체",
}

func guidelineFor(kind session.ContentKind) contentGuideline {
	if g, ok := contentGuidelines[kind]; ok {
		return g
	}
	return contentGuidelines[session.ContentKindGuide]
}
