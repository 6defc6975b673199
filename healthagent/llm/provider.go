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

// Package llm defines the provider interface for narrative generation
// and a weighted failover router across the configured providers.
package llm

import (
	"context"
	"time"
)

// Provider is the interface implemented by every LLM backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the unique provider identifier used for routing,
	// logging and metrics ("openai", "gemini", "bedrock").
	Name() string

	// Query generates a completion for the given prompt. The context is
	// used for cancellation and timeout.
	Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error)

	// IsHealthy reports whether the last interaction with the backend
	// succeeded.
	IsHealthy() bool

	// GetCapabilities returns the list of features this provider supports.
	GetCapabilities() []string

	// EstimateCost returns the estimated cost in USD for a given number
	// of tokens.
	EstimateCost(tokens int) float64
}

// QueryOptions contains options for LLM queries.
type QueryOptions struct {
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
}

// Response represents a completion from a provider.
type Response struct {
	Content      string                 `json:"content"`
	Model        string                 `json:"model"`
	Provider     string                 `json:"provider"`
	TokensUsed   int                    `json:"tokens_used"`
	ResponseTime time.Duration          `json:"response_time"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}
