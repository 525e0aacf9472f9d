package openai

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c, err := New(Config{APIKey: "test-key"})
	assert.NoError(t, err)
	assert.Equal(t, defaultBaseURL, c.baseURL)
}

func TestReasoningFamilyRequestOmitsTemperatureAndUsesMaxCompletionTokens(t *testing.T) {
	req := generateRequest{Model: "gpt-5-mini"}
	req.MaxCompletionTokens = 1000
	req.Reasoning = &reasoningConfig{Effort: "medium"}

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"max_completion_tokens":1000`)
	assert.Contains(t, string(body), `"reasoning":{"effort":"medium"}`)
	assert.NotContains(t, string(body), `"temperature"`)
	assert.NotContains(t, string(body), `"max_tokens"`)
}

func TestParseResponseExtractsFirstChoice(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"role":"assistant","content":"완성된 글"}}]}`)),
	}
	text, err := parseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "완성된 글", text)
}

func TestParseResponseClassifiesProviderErrorOn5xx(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader(`upstream unavailable`)),
	}
	_, err := parseResponse(resp)
	var merr *model.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, model.ErrorProvider, merr.Kind)
}

func TestParseResponseRejectsEmptyChoices(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"choices":[]}`)),
	}
	_, err := parseResponse(resp)
	var merr *model.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, model.ErrorMalformedResponse, merr.Kind)
}
