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

package base

import (
	"context"
	"time"
)

// Connector defines the lifecycle every external-source connector
// implements. Domain-specific read operations live on the concrete
// connector types; the lifecycle is uniform so the service can health
// check and shut down all sources the same way.
type Connector interface {
	Connect(ctx context.Context, config *ConnectorConfig) error
	Disconnect(ctx context.Context) error
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	Name() string
	Type() string
	Version() string
	Capabilities() []string
}

// ConnectorConfig holds the configuration for a connector instance.
type ConnectorConfig struct {
	Name       string                 `json:"name"`        // Unique name for this connector
	Type       string                 `json:"type"`        // Connector type (http_scrape, ...)
	BaseURL    string                 `json:"base_url"`    // Root URL of the external source
	Options    map[string]interface{} `json:"options"`     // Connector-specific options
	Timeout    time.Duration          `json:"timeout"`     // Operation timeout (default: 10s)
	MaxRetries int                    `json:"max_retries"` // Retry count for transient failures
}

// HealthStatus represents the health of a connector.
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Latency   time.Duration     `json:"latency"`
	Details   map[string]string `json:"details"`
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error"`
}

// ConnectorError represents errors specific to connector operations.
type ConnectorError struct {
	ConnectorName string
	Operation     string
	Message       string
	Cause         error
}

func (e *ConnectorError) Error() string {
	if e.Cause != nil {
		return e.ConnectorName + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.ConnectorName + "." + e.Operation + ": " + e.Message
}

func (e *ConnectorError) Unwrap() error {
	return e.Cause
}

// NewConnectorError creates a new ConnectorError.
func NewConnectorError(connectorName, operation, message string, cause error) *ConnectorError {
	return &ConnectorError{
		ConnectorName: connectorName,
		Operation:     operation,
		Message:       message,
		Cause:         cause,
	}
}
