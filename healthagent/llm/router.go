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

package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrNoProviders is returned when a query arrives and no provider is
// registered or healthy.
var ErrNoProviders = errors.New("no llm providers available")

// Router fans a query out to the highest-weighted healthy provider and
// fails over to the next one on error.
type Router struct {
	providers map[string]Provider
	weights   map[string]float64
	logger    *zap.Logger
	mu        sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		providers: make(map[string]Provider),
		weights:   make(map[string]float64),
		logger:    logger,
	}
}

// Register adds a provider with a routing weight. Higher weight means
// preferred. Registering an existing name replaces it.
func (r *Router) Register(p Provider, weight float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	r.weights[p.Name()] = weight
}

// Providers returns the registered provider names sorted by descending
// weight (ties broken by name for determinism).
func (r *Router) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rankedLocked()
}

func (r *Router) rankedLocked() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if r.weights[names[i]] != r.weights[names[j]] {
			return r.weights[names[i]] > r.weights[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Healthy reports whether at least one registered provider is healthy.
func (r *Router) Healthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.IsHealthy() {
			return true
		}
	}
	return false
}

// Query routes the prompt to providers in weight order, skipping
// unhealthy ones, and returns the first successful response.
func (r *Router) Query(ctx context.Context, prompt string, options QueryOptions) (*Response, error) {
	r.mu.RLock()
	ranked := r.rankedLocked()
	providers := make([]Provider, 0, len(ranked))
	for _, name := range ranked {
		providers = append(providers, r.providers[name])
	}
	r.mu.RUnlock()

	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, p := range providers {
		if !p.IsHealthy() {
			r.logger.Debug("Skipping unhealthy provider", zap.String("provider", p.Name()))
			continue
		}
		resp, err := p.Query(ctx, prompt, options)
		if err != nil {
			lastErr = err
			r.logger.Warn("Provider query failed, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all llm providers failed: %w", lastErr)
	}
	return nil, ErrNoProviders
}
