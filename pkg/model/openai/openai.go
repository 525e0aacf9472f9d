// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package openai implements model.LLM against the OpenAI chat-completions
// API, including the reasoning-family model dispatch (max_completion_tokens
// instead of max_tokens, no temperature, optional reasoning.effort).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blogpilot/blogpilot/pkg/httpclient"
	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/blogpilot/blogpilot/pkg/registry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client implements model.LLM against OpenAI's chat-completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the retry/backoff client used for requests.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New creates an OpenAI client. cfg.APIKey is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, model.NewError(model.ErrorAuth, "openai API key is not configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http: httpclient.New(
			httpclient.WithMaxRetries(3),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reasoningConfig struct {
	Effort string `json:"effort"`
}

type generateRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	MaxTokens           int             `json:"max_tokens,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
	Reasoning           *reasoningConfig `json:"reasoning,omitempty"`
}

type choice struct {
	Message chatMessage `json:"message"`
}

type generateResponse struct {
	Choices []choice `json:"choices"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText dispatches to the chat-completions endpoint. Reasoning-family
// models (see registry.IsReasoningFamily) use max_completion_tokens and must
// never carry temperature; non-reasoning models use max_tokens+temperature.
func (c *Client) GenerateText(ctx context.Context, messages []model.Message, modelID string, params model.Params) (string, error) {
	req := generateRequest{Model: modelID}

	for _, m := range messages {
		role := "user"
		if m.Role == model.RoleSystem {
			role = "system"
		}
		req.Messages = append(req.Messages, chatMessage{Role: role, Content: m.Content})
	}

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	if registry.IsReasoningFamily(modelID) {
		req.MaxCompletionTokens = maxTokens
		if params.ReasoningEffort != "" {
			req.Reasoning = &reasoningConfig{Effort: string(params.ReasoningEffort)}
		}
	} else {
		req.MaxTokens = maxTokens
		temp := params.Temperature
		req.Temperature = &temp
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", model.NewError(model.ErrorMalformedResponse, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", model.NewError(model.ErrorNetwork, err.Error())
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// GenerateImage dispatches to OpenAI's image-generation models. Not
// exercised by the core content-generation pipeline.
func (c *Client) GenerateImage(ctx context.Context, prompt string, modelID string, count int) ([]string, error) {
	return nil, model.NewError(model.ErrorProvider, "openai image generation is not implemented by this gateway")
}

func parseResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.NewError(model.ErrorNetwork, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", model.NewError(model.ErrorAuth, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(data)))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", model.NewError(model.ErrorRateLimit, string(data))
	case resp.StatusCode >= 500:
		return "", model.NewError(model.ErrorProvider, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(data, 200)))
	case resp.StatusCode >= 400:
		return "", model.NewError(model.ErrorProvider, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(data, 200)))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", model.NewError(model.ErrorMalformedResponse, err.Error())
	}
	if out.Error != nil {
		return "", model.NewError(model.ErrorProvider, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", model.NewError(model.ErrorMalformedResponse, "no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func classifyTransportError(err error) error {
	if retryable, ok := err.(*httpclient.RetryableError); ok {
		switch {
		case retryable.StatusCode == http.StatusTooManyRequests:
			return model.NewError(model.ErrorRateLimit, retryable.Error())
		case retryable.StatusCode >= 500:
			return model.NewError(model.ErrorProvider, retryable.Error())
		}
	}
	return model.NewError(model.ErrorTimeout, err.Error())
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
