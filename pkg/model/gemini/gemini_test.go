package gemini

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/stretchr/testify/assert"
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

func TestFlattenMessagesOrdersSystemBeforeUser(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "너는 친절한 비서야."},
		{Role: model.RoleUser, Content: "제목을 만들어줘."},
	}

	got := flattenMessages(messages)

	assert.Contains(t, got, "System: 너는 친절한 비서야.")
	assert.Contains(t, got, "User: 제목을 만들어줘.")
	assert.True(t, len(got) > 0)
	assert.Less(t, indexOf(got, "System:"), indexOf(got, "User:"))
}

func TestFlattenMessagesWithoutSystem(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleUser, Content: "안녕"},
	}

	got := flattenMessages(messages)
	assert.Equal(t, "User: 안녕", got)
}

func TestParseResponseExtractsText(t *testing.T) {
	// regression guard: candidates[0].content.parts[0].text must be the
	// only field read out of a generateContent response.
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"candidates":[{"content":{"parts":[{"text":"완성된 글"}]}}]}`)),
	}
	out, err := parseResponse(resp)
	assert.NoError(t, err)
	assert.Equal(t, "완성된 글", out)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
