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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(opts ...Option) *HealthAgent {
	return New(NewMemoryStorage(), nil, opts...)
}

func TestAssembleProfileValid(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.AssembleProfile(context.Background(), &PatientProfile{
		ID:                "patient123",
		Age:               45,
		MedicalHistory:    []string{"hypertension", "diabetes"},
		Allergies:         []string{"penicillin"},
		CurrentConditions: []string{"asthma"},
		Medications:       []Medication{{Name: "DrugA", Dosage: "50mg", Frequency: "daily"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "patient123", result.Profile.ID)
	assert.Equal(t, 45, result.Profile.Age)
	assert.Equal(t, []string{"hypertension", "diabetes"}, result.Profile.MedicalHistory)
	assert.Equal(t, "Health profile assembled successfully.", result.Message)
}

func TestAssembleProfileMissingFields(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.AssembleProfile(context.Background(), &PatientProfile{ID: "patient456"})
	require.NoError(t, err)

	assert.Equal(t, "patient456", result.Profile.ID)
	assert.Zero(t, result.Profile.Age)
	assert.Empty(t, result.Profile.MedicalHistory)
	assert.NotNil(t, result.Profile.MedicalHistory)
	assert.NotNil(t, result.Profile.Allergies)
	assert.NotNil(t, result.Profile.CurrentConditions)
	assert.NotNil(t, result.Profile.Medications)
}

func TestAssembleProfileMissingID(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.AssembleProfile(context.Background(), &PatientProfile{Age: 30})
	require.NoError(t, err)

	assert.Equal(t, "unknown", result.Profile.ID)
}

func TestAssembleProfileStored(t *testing.T) {
	agent := newTestAgent()
	_, err := agent.AssembleProfile(context.Background(), &PatientProfile{ID: "patient789", Age: 30})
	require.NoError(t, err)

	stored, err := agent.GetProfile(context.Background(), "patient789")
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Age)
}

func TestExtendProfileExisting(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	_, err := agent.AssembleProfile(ctx, &PatientProfile{
		ID:        "patient123",
		Age:       45,
		Allergies: []string{"penicillin"},
	})
	require.NoError(t, err)

	newAge := 46
	result, err := agent.ExtendProfile(ctx, "patient123", &ProfileUpdate{
		Age:            &newAge,
		MedicalHistory: []string{"hypertension"},
	})
	require.NoError(t, err)

	// Updated fields change, unset fields survive.
	assert.Equal(t, 46, result.Profile.Age)
	assert.Equal(t, []string{"hypertension"}, result.Profile.MedicalHistory)
	assert.Equal(t, []string{"penicillin"}, result.Profile.Allergies)
}

func TestExtendProfileCreatesWhenAbsent(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	result, err := agent.ExtendProfile(ctx, "newcomer", &ProfileUpdate{
		CurrentConditions: []string{"hypothermia"},
	})
	require.NoError(t, err)
	assert.Equal(t, "newcomer", result.Profile.ID)
	assert.Equal(t, []string{"hypothermia"}, result.Profile.CurrentConditions)

	stored, err := agent.GetProfile(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, []string{"hypothermia"}, stored.CurrentConditions)
}

func TestExtendProfileDisjointFieldsUnion(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	age := 52
	_, err := agent.ExtendProfile(ctx, "patient1", &ProfileUpdate{Age: &age})
	require.NoError(t, err)

	_, err = agent.ExtendProfile(ctx, "patient1", &ProfileUpdate{
		Medications: []Medication{{Name: "DrugA"}},
		Notes:       map[string]string{"last_seen": "trailhead"},
	})
	require.NoError(t, err)

	stored, err := agent.GetProfile(ctx, "patient1")
	require.NoError(t, err)
	assert.Equal(t, 52, stored.Age)
	assert.Len(t, stored.Medications, 1)
	assert.Equal(t, "trailhead", stored.Notes["last_seen"])
}

func TestExtendProfileMergesNotes(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	_, err := agent.ExtendProfile(ctx, "patient1", &ProfileUpdate{
		Notes: map[string]string{"blood_type": "O+", "last_seen": "trailhead"},
	})
	require.NoError(t, err)

	_, err = agent.ExtendProfile(ctx, "patient1", &ProfileUpdate{
		Notes: map[string]string{"last_seen": "river crossing"},
	})
	require.NoError(t, err)

	stored, err := agent.GetProfile(ctx, "patient1")
	require.NoError(t, err)
	assert.Equal(t, "O+", stored.Notes["blood_type"])
	assert.Equal(t, "river crossing", stored.Notes["last_seen"])
}

func TestListProfilesSorted(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		_, err := agent.AssembleProfile(ctx, &PatientProfile{ID: id})
		require.NoError(t, err)
	}

	profiles, err := agent.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "alpha", profiles[0].ID)
	assert.Equal(t, "bravo", profiles[1].ID)
	assert.Equal(t, "charlie", profiles[2].ID)
}

func TestDeleteProfile(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	_, err := agent.AssembleProfile(ctx, &PatientProfile{ID: "patient1"})
	require.NoError(t, err)

	require.NoError(t, agent.DeleteProfile(ctx, "patient1"))
	_, err = agent.GetProfile(ctx, "patient1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	assert.ErrorIs(t, agent.DeleteProfile(ctx, "patient1"), ErrProfileNotFound)
}

func TestStoredProfileIsolation(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	input := &PatientProfile{ID: "patient1", Allergies: []string{"penicillin"}}
	_, err := agent.AssembleProfile(ctx, input)
	require.NoError(t, err)

	// Mutating the caller's slice must not leak into the store.
	input.Allergies[0] = "latex"

	stored, err := agent.GetProfile(ctx, "patient1")
	require.NoError(t, err)
	assert.Equal(t, []string{"penicillin"}, stored.Allergies)
}
