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

package drugscom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultCacheTTL is how long interaction reports stay cached. The
// reference pages change rarely; an hour keeps repeat lookups during a
// mission off the network.
const DefaultCacheTTL = time.Hour

// Cache stores interaction reports in Redis keyed by normalized drug name.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a report cache. A zero ttl uses DefaultCacheTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(drugName string) string {
	return "interactions:" + normalizedName(drugName)
}

// Get returns the cached report for a drug, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, drugName string) (*Report, error) {
	data, err := c.client.Get(ctx, cacheKey(drugName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read interactions cache: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores a report under the drug's cache key with the configured TTL.
func (c *Cache) Set(ctx context.Context, drugName string, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(drugName), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write interactions cache: %w", err)
	}
	return nil
}
