package session

import "testing"

func newTestState() *State {
	return New(
		WritingSettings{ContentKind: ContentKindGuide, Tone: TonePoliteFormal},
		KeywordInput{MainKeyword: "프로그래밍 학습법"},
	)
}

func TestStageTransitionsFollowOrder(t *testing.T) {
	s := newTestState()
	if s.Stage() != StageInit {
		t.Fatalf("expected INIT, got %s", s.Stage())
	}

	s.SetTitleCandidates([]TitleCandidate{{Title: "제목1", SearchQuery: "쿼리1"}})
	if s.Stage() != StageTitlesReady {
		t.Fatalf("expected TITLES_READY, got %s", s.Stage())
	}

	s.SelectTitle(SelectedTitle{
		TitleCandidate:       s.TitleCandidates()[0],
		EffectiveSearchQuery: "쿼리1",
	})
	if s.Stage() != StageTitleSelected {
		t.Fatalf("expected TITLE_SELECTED, got %s", s.Stage())
	}

	s.SetCompetitorRefs([]CompetitorRef{{Rank: 1, Title: "경쟁글", URL: "https://blog.naver.com/a/1"}})
	if s.Stage() != StageCompetitorsDiscovered {
		t.Fatalf("expected COMPETITORS_DISCOVERED, got %s", s.Stage())
	}

	s.SetCuratedRefs(s.CompetitorRefs())
	if s.Stage() != StageCompetitorsCurated {
		t.Fatalf("expected COMPETITORS_CURATED, got %s", s.Stage())
	}

	s.FinishEnrichment()
	if s.Stage() != StageCompetitorsReady {
		t.Fatalf("expected COMPETITORS_READY, got %s", s.Stage())
	}

	s.SetSummary(SummaryArtifact{Text: "요약"})
	if s.Stage() != StageSummaryReady {
		t.Fatalf("expected SUMMARY_READY, got %s", s.Stage())
	}

	s.SetArticle(FinalArticle{Text: "제목: 제목1\n본문"})
	if s.Stage() != StageArticleReady {
		t.Fatalf("expected ARTICLE_READY, got %s", s.Stage())
	}
	if !s.Stage().IsTerminal() {
		t.Fatal("ARTICLE_READY must be terminal")
	}
}

func TestCompetitorPostsCapAtThree(t *testing.T) {
	s := newTestState()
	for i := 0; i < 5; i++ {
		ok := s.AppendCompetitorPost(CompetitorPost{CompetitorRef: CompetitorRef{Rank: i}})
		if i < 3 && !ok {
			t.Fatalf("expected post %d to be accepted", i)
		}
		if i >= 3 && ok {
			t.Fatalf("expected post %d to be rejected once cap reached", i)
		}
	}
	if len(s.CompetitorPosts()) != 3 {
		t.Fatalf("expected exactly 3 competitor posts, got %d", len(s.CompetitorPosts()))
	}
}

func TestZeroCompetitorsStillReachesReady(t *testing.T) {
	s := newTestState()
	s.FinishEnrichment()
	if s.Stage() != StageCompetitorsReady {
		t.Fatal("empty competitor set must still advance to COMPETITORS_READY")
	}
	if len(s.CompetitorPosts()) != 0 {
		t.Fatal("expected zero competitor posts")
	}
}

func TestCancelIsTerminalAndIdempotent(t *testing.T) {
	s := newTestState()
	s.SetTitleCandidates([]TitleCandidate{{Title: "t", SearchQuery: "q"}})
	s.RequestCancel()
	if !s.Cancelled() {
		t.Fatal("expected cancel flag to be set")
	}
	s.MarkCancelled()
	if s.Stage() != StageCancelled {
		t.Fatalf("expected CANCELLED, got %s", s.Stage())
	}

	// MarkErrored after cancellation must not override the terminal stage.
	s.MarkErrored(errTest)
	if s.Stage() != StageCancelled {
		t.Fatal("terminal stage must not be overwritten")
	}
}

func TestEffectiveSearchQueryFallback(t *testing.T) {
	s := newTestState()
	if q := s.EffectiveSearchQuery(); q != "프로그래밍 학습법" {
		t.Fatalf("expected fallback to main keyword, got %q", q)
	}

	s.SelectTitle(SelectedTitle{
		TitleCandidate:       TitleCandidate{Title: "t", SearchQuery: "강아지 사료 추천"},
		EffectiveSearchQuery: "강아지 사료 추천",
	})
	if q := s.EffectiveSearchQuery(); q != "강아지 사료 추천" {
		t.Fatalf("expected paired query, got %q", q)
	}
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
