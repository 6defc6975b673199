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

// Package bedrock provides the LLM provider for Anthropic Claude models
// served through AWS Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Gannon44/sar-project/healthagent/llm"
)

const (
	// DefaultModel is the Bedrock model ID used when none is configured.
	DefaultModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

	// DefaultRegion is used when no AWS region is configured.
	DefaultRegion = "us-east-1"

	// DefaultMaxTokens bounds narrative completions.
	DefaultMaxTokens = 2500

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	// anthropicVersion is required by the Bedrock Anthropic message API.
	anthropicVersion = "bedrock-2023-05-31"
)

// invoker abstracts the Bedrock runtime client (enables testing).
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Provider implements llm.Provider backed by AWS Bedrock.
type Provider struct {
	client  invoker
	model   string
	region  string
	healthy bool
	mu      sync.RWMutex
}

// New creates a Bedrock provider using the default AWS credential chain.
func New(ctx context.Context, region, model string) (*Provider, error) {
	if region == "" {
		region = DefaultRegion
	}
	if model == "" {
		model = DefaultModel
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		client:  bedrockruntime.NewFromConfig(cfg),
		model:   model,
		region:  region,
		healthy: true,
	}, nil
}

// newWithClient builds a provider around an existing client (tests).
func newWithClient(client invoker, model string) *Provider {
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model, region: DefaultRegion, healthy: true}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "bedrock" }

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
// Blended Claude 3.5 Sonnet rate: ~$0.009 per 1K tokens.
func (p *Provider) EstimateCost(tokens int) float64 {
	return float64(tokens) * 0.000009
}

// anthropicRequest is the Bedrock Anthropic message API request body.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the Bedrock Anthropic message API response body.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Query generates a completion by invoking the configured Claude model.
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

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		System:           options.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		p.setHealthy(false)
		return nil, fmt.Errorf("bedrock API error: %w", err)
	}
	p.setHealthy(true)

	var apiResp anthropicResponse
	if err := json.Unmarshal(out.Body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	content := ""
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &llm.Response{
		Content:      content,
		Model:        model,
		Provider:     p.Name(),
		TokensUsed:   apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		ResponseTime: time.Since(start),
	}, nil
}

var _ llm.Provider = (*Provider)(nil)
