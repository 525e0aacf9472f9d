// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gemini implements model.LLM against the Google Generative
// Language generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blogpilot/blogpilot/pkg/httpclient"
	"github.com/blogpilot/blogpilot/pkg/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client implements model.LLM against Gemini's generateContent endpoint.
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

// New creates a Gemini client. cfg.APIKey is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, model.NewError(model.ErrorAuth, "gemini API key is not configured")
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
			httpclient.WithHeaderParser(httpclient.ParseGeminiHeaders),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// flattenMessages collapses the message list into Gemini's single
// "System:"/"User:"-prefixed text blob, since generateContent has no
// separate system-role turn in the shape this gateway uses.
func flattenMessages(messages []model.Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			b.WriteString("System: ")
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		default:
			b.WriteString("User: ")
			b.WriteString(m.Content)
		}
	}
	return b.String()
}

// GenerateText issues a generateContent call, API key in the URL query. If
// params.MaxTokens is unset, a cap of 8192 tokens is used.
func (c *Client) GenerateText(ctx context.Context, messages []model.Message, modelID string, params model.Params) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: flattenMessages(messages)}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     params.Temperature,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", model.NewError(model.ErrorMalformedResponse, err.Error())
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, modelID, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", model.NewError(model.ErrorNetwork, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// GenerateImage dispatches to a Gemini image-capable model. Not exercised
// by the core content-generation pipeline.
func (c *Client) GenerateImage(ctx context.Context, prompt string, modelID string, count int) ([]string, error) {
	return nil, model.NewError(model.ErrorProvider, "gemini image generation is not implemented by this gateway")
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
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", model.NewError(model.ErrorMalformedResponse, "no candidates in response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
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
