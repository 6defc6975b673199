// Copyright 2026 SAR Project
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

// Package openai provides the OpenAI chat-completions LLM provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Gannon44/sar-project/healthagent/llm"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = openai.GPT3Dot5Turbo

	// DefaultMaxTokens bounds narrative completions.
	DefaultMaxTokens = 2500

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7
)

// Provider implements llm.Provider backed by the OpenAI API.
type Provider struct {
	client  *openai.Client
	model   string
	healthy bool
	mu      sync.RWMutex
}

// New creates an OpenAI provider. The model defaults to DefaultModel.
func New(apiKey, model string) (*Provider, error) {
	return NewWithBaseURL(apiKey, model, "")
}

// NewWithBaseURL creates an OpenAI provider against a custom endpoint.
// Used for tests and OpenAI-compatible gateways.
func NewWithBaseURL(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Provider{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		healthy: true,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "openai" }

// IsHealthy reports whether the last API call succeeded.
func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *Provider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// GetCapabilities returns the provider's capabilities.
func (p *Provider) GetCapabilities() []string {
	return []string{"reasoning", "analysis", "writing", "medical_narrative"}
}

// EstimateCost estimates the cost for a given number of tokens.
// Blended gpt-3.5-turbo rate: ~$0.002 per 1K tokens.
func (p *Provider) EstimateCost(tokens int) float64 {
	return float64(tokens) * 0.000002
}

// Query generates a completion via the chat completions endpoint.
func (p *Provider) Query(ctx context.Context, prompt string, options llm.QueryOptions) (*llm.Response, error) {
	start := time.Now()

	model := options.Model
	if model == "" {
		model = p.model
	}
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := options.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}

	messages := []openai.ChatCompletionMessage{}
	if options.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		p.setHealthy(false)
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	p.setHealthy(true)

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	return &llm.Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		Provider:     p.Name(),
		TokensUsed:   resp.Usage.TotalTokens,
		ResponseTime: time.Since(start),
	}, nil
}

var _ llm.Provider = (*Provider)(nil)
