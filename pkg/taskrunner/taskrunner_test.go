package taskrunner

import (
	"context"
	"testing"
	"time"

	"github.com/blogpilot/blogpilot/pkg/competitor"
	"github.com/blogpilot/blogpilot/pkg/gateway"
	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/blogpilot/blogpilot/pkg/orchestrator"
	"github.com/blogpilot/blogpilot/pkg/registry"
	"github.com/blogpilot/blogpilot/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	responses []string
	i         int
}

func (s *scriptedLLM) GenerateText(ctx context.Context, messages []model.Message, modelID string, params model.Params) (string, error) {
	if s.i >= len(s.responses) {
		return "요약 또는 기사 본문입니다.", nil
	}
	r := s.responses[s.i]
	s.i++
	return r, nil
}

func (s *scriptedLLM) GenerateImage(ctx context.Context, prompt string, modelID string, count int) ([]string, error) {
	return nil, model.NewError(model.ErrorProvider, "not implemented")
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	catalog := registry.NewModelCatalog([]registry.ModelEntry{
		{DisplayName: "요약 모델", ID: "summary-1", Provider: registry.ProviderOpenAI, Role: registry.RoleSummary, DefaultMaxTokens: 4096},
		{DisplayName: "작성 모델", ID: "writing-1", Provider: registry.ProviderOpenAI, Role: registry.RoleWriting, DefaultMaxTokens: 8192},
	})
	llm := &scriptedLLM{responses: []string{
		`{"titles_with_search":[{"title":"강남 맛집 추천","search_query":"강남 맛집"}]}`,
	}}
	gw := gateway.New(catalog, map[registry.Provider]model.LLM{registry.ProviderOpenAI: llm})
	orch := orchestrator.New(gw, competitor.New(nil), orchestrator.ModelSelections{Summary: "요약 모델", Writing: "작성 모델"})
	state := session.New(
		session.WritingSettings{ContentKind: session.ContentKindGuide, Tone: session.TonePoliteFormal},
		session.KeywordInput{MainKeyword: "강남 맛집"},
	)
	return New(orch, state)
}

func drainUntilArtifact(t *testing.T, r *Runner, name string, timeout time.Duration) ArtifactEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case a, ok := <-r.Artifacts():
			if !ok {
				t.Fatalf("artifacts channel closed before %q arrived", name)
			}
			if a.Name == name {
				return a
			}
		case <-r.Progress():
		case <-deadline:
			t.Fatalf("timed out waiting for artifact %q", name)
		}
	}
}

func TestRunnerPausesAtTitleSelectionThenCompletes(t *testing.T) {
	r := testRunner(t)
	require.NoError(t, r.Start(context.Background()))

	a := drainUntilArtifact(t, r, "title_candidates", time.Second)
	candidates := a.Payload.([]session.TitleCandidate)
	require.Len(t, candidates, 1)

	require.NoError(t, r.SelectTitle(candidates[0], ""))

	select {
	case article := <-r.Completed():
		assert.NotEmpty(t, article.Text)
	case errEv := <-r.Errors():
		t.Fatalf("unexpected error event: %+v", errEv)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestRunnerStartTwiceReturnsError(t *testing.T) {
	r := testRunner(t)
	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyStarted)
}

func TestRunnerSelectTitleBeforeReadyReturnsError(t *testing.T) {
	r := testRunner(t)
	err := r.SelectTitle(session.TitleCandidate{Title: "x"}, "")
	assert.ErrorIs(t, err, ErrNotAwaitingSelection)
}

func TestRunnerCancelBeforeSelectionEndsInCancelled(t *testing.T) {
	r := testRunner(t)
	require.NoError(t, r.Start(context.Background()))
	drainUntilArtifact(t, r, "title_candidates", time.Second)

	r.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = ctx

	select {
	case errEv := <-r.Errors():
		assert.Equal(t, "cancelled", errEv.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cancellation to surface")
	}
}
