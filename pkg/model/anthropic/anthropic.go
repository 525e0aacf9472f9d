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

// Package anthropic implements model.LLM against the Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blogpilot/blogpilot/pkg/httpclient"
	"github.com/blogpilot/blogpilot/pkg/model"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
)

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client implements model.LLM against Anthropic's messages endpoint.
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

// New creates an Anthropic client. cfg.APIKey is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, model.NewError(model.ErrorAuth, "anthropic API key is not configured")
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
			httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system,omitempty"`
}

type contentBlock struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText issues a single POST to the messages endpoint. max_tokens is
// mandatory; the response text is read from content[0].text.
func (c *Client) GenerateText(ctx context.Context, messages []model.Message, modelID string, params model.Params) (string, error) {
	req := generateRequest{
		Model:     modelID,
		MaxTokens: params.MaxTokens,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 2000
	}

	for _, m := range messages {
		if m.Role == model.RoleSystem {
			req.System = m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: "user", Content: m.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", model.NewError(model.ErrorMalformedResponse, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", model.NewError(model.ErrorNetwork, err.Error())
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// GenerateImage is part of the model.LLM surface but unused by Anthropic;
// Anthropic does not expose an image-generation endpoint.
func (c *Client) GenerateImage(ctx context.Context, prompt string, modelID string, count int) ([]string, error) {
	return nil, model.NewError(model.ErrorProvider, "anthropic does not support image generation")
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
	if len(out.Content) == 0 {
		return "", model.NewError(model.ErrorMalformedResponse, "no content blocks in response")
	}
	return out.Content[0].Text, nil
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
