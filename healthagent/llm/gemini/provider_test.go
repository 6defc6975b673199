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

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gannon44/sar-project/healthagent/llm"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, p.baseURL)
	assert.Equal(t, DefaultAPIVersion, p.apiVersion)
	assert.Equal(t, DefaultModel, p.model)
}

func TestQuery(t *testing.T) {
	var gotPath string
	var gotReq map[string]interface{}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{
				{
					Content: geminiContent{
						Role:  "model",
						Parts: []geminiPart{{Text: "Patient requires monitoring."}},
					},
					FinishReason: "STOP",
				},
			},
			UsageMetadata: &geminiUsageMetadata{
				PromptTokenCount:     30,
				CandidatesTokenCount: 12,
				TotalTokenCount:      42,
			},
		})
	})

	resp, err := p.Query(context.Background(), "Assess the profile.", llm.QueryOptions{
		SystemPrompt: "You are a health specialist for SAR operations.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Patient requires monitoring.", resp.Content)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.True(t, p.IsHealthy())

	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", gotPath)
	assert.Contains(t, gotReq, "systemInstruction")
	contents := gotReq["contents"].([]interface{})
	require.Len(t, contents, 1)
}

func TestQueryModelOverride(t *testing.T) {
	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(geminiResponse{})
	})

	_, err := p.Query(context.Background(), "hello", llm.QueryOptions{Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", gotPath)
}

func TestQueryServerErrorMarksUnhealthy(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, http.StatusInternalServerError)
	})

	_, err := p.Query(context.Background(), "hello", llm.QueryOptions{})
	require.Error(t, err)
	assert.False(t, p.IsHealthy())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestQueryRateLimitError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	})

	_, err := p.Query(context.Background(), "hello", llm.QueryOptions{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimitError())
	assert.False(t, apiErr.IsAuthError())
	// Client errors do not mark the provider down.
	assert.True(t, p.IsHealthy())
}

func TestMetadata(t *testing.T) {
	p, err := New(Config{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, "gemini", p.Name())
	assert.Contains(t, p.GetCapabilities(), "long_context")
	assert.InDelta(t, 0.003125, p.EstimateCost(1000), 1e-9)
}
