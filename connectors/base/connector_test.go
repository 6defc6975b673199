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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectorErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectorError("drugscom", "Connect", "failed to reach host", cause)

	assert.Equal(t, "drugscom.Connect: failed to reach host (cause: connection refused)", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestConnectorErrorWithoutCause(t *testing.T) {
	err := NewConnectorError("drugscom", "HealthCheck", "not connected", nil)

	assert.Equal(t, "drugscom.HealthCheck: not connected", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
