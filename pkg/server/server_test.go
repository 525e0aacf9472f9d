package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blogpilot/blogpilot/pkg/competitor"
	"github.com/blogpilot/blogpilot/pkg/gateway"
	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/blogpilot/blogpilot/pkg/orchestrator"
	"github.com/blogpilot/blogpilot/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	titleResponse string
}

func (s *scriptedLLM) GenerateText(ctx context.Context, messages []model.Message, modelID string, params model.Params) (string, error) {
	return s.titleResponse, nil
}

func (s *scriptedLLM) GenerateImage(ctx context.Context, prompt string, modelID string, count int) ([]string, error) {
	return nil, model.NewError(model.ErrorProvider, "not implemented")
}

func testServer() *Server {
	catalog := registry.NewModelCatalog([]registry.ModelEntry{
		{DisplayName: "요약 모델", ID: "summary-1", Provider: registry.ProviderOpenAI, Role: registry.RoleSummary, DefaultMaxTokens: 4096},
		{DisplayName: "작성 모델", ID: "writing-1", Provider: registry.ProviderOpenAI, Role: registry.RoleWriting, DefaultMaxTokens: 8192},
	})
	llm := &scriptedLLM{titleResponse: `{"titles_with_search":[{"title":"강남 맛집 추천","search_query":"강남 맛집"}]}`}
	gw := gateway.New(catalog, map[registry.Provider]model.LLM{registry.ProviderOpenAI: llm})
	orch := orchestrator.New(gw, competitor.New(nil), orchestrator.ModelSelections{Summary: "요약 모델", Writing: "작성 모델"})
	return New(orch)
}

func TestCreateOrchestrationReturnsID(t *testing.T) {
	s := testServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body := strings.NewReader(`{"main_keyword":"강남 맛집","content_kind":"guide","tone":"polite-formal"}`)
	resp, err := http.Post(ts.URL+"/orchestrations", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out createResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.ID)
}

func TestCreateOrchestrationRejectsMissingKeyword(t *testing.T) {
	s := testServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/orchestrations", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectTitleUnknownOrchestrationReturnsNotFound(t *testing.T) {
	s := testServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/orchestrations/does-not-exist/select-title", "application/json", strings.NewReader(`{"title":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsStreamsTitleCandidatesArtifact(t *testing.T) {
	s := testServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	createResp, err := http.Post(ts.URL+"/orchestrations", "application/json", strings.NewReader(`{"main_keyword":"강남 맛집"}`))
	require.NoError(t, err)
	var created createResponse
	require.NoError(t, json.NewDecoder(createResp.Body).Decode(&created))
	createResp.Body.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/orchestrations/"+created.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: artifact") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one artifact event before the stream ended")
}
