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

package healthagent

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_healthagent_requests_total",
			Help: "Total number of requests processed by the health agent",
		},
		[]string{"operation", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sar_healthagent_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
		},
		[]string{"operation"},
	)
	promInteractionLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_healthagent_interaction_lookups_total",
			Help: "Total number of drug interaction lookups",
		},
		[]string{"status"},
	)
	promLLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_healthagent_llm_calls_total",
			Help: "Total number of LLM API calls",
		},
		[]string{"provider", "status"},
	)
)

var registerMetricsOnce sync.Once

func registerMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(promRequestsTotal)
		prometheus.MustRegister(promRequestDuration)
		prometheus.MustRegister(promInteractionLookups)
		prometheus.MustRegister(promLLMCalls)
	})
}

// serviceMetrics backs the JSON /metrics endpoint.
type serviceMetrics struct {
	mu              sync.RWMutex
	startTime       time.Time
	totalRequests   int64
	successRequests int64
	failedRequests  int64
	latencies       []int64
	perOperation    map[string]int64
}

func newServiceMetrics() *serviceMetrics {
	return &serviceMetrics{
		startTime:    time.Now(),
		perOperation: make(map[string]int64),
	}
}

func (m *serviceMetrics) record(operation string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRequests++
	if success {
		m.successRequests++
	} else {
		m.failedRequests++
	}
	m.latencies = append(m.latencies, duration.Milliseconds())
	if len(m.latencies) > 10000 {
		m.latencies = m.latencies[len(m.latencies)-10000:]
	}
	m.perOperation[operation]++
}

// snapshot returns the JSON metrics payload.
func (m *serviceMetrics) snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgLatency float64
	if len(m.latencies) > 0 {
		var sum int64
		for _, l := range m.latencies {
			sum += l
		}
		avgLatency = float64(sum) / float64(len(m.latencies))
	}

	perOp := make(map[string]int64, len(m.perOperation))
	for k, v := range m.perOperation {
		perOp[k] = v
	}

	return map[string]interface{}{
		"uptime_seconds":        int64(time.Since(m.startTime).Seconds()),
		"total_requests":        m.totalRequests,
		"success_requests":      m.successRequests,
		"failed_requests":       m.failedRequests,
		"avg_latency_ms":        avgLatency,
		"requests_by_operation": perOp,
	}
}
