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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gannon44/sar-project/connectors/drugscom"
)

// mockInteractions implements InteractionSource for testing.
type mockInteractions struct {
	slug    string
	list    *drugscom.InteractionList
	food    string
	disease string
	report  *drugscom.Report
	err     error
}

func (m *mockInteractions) InteractionsSlug(_ context.Context, _ string) (string, error) {
	return m.slug, m.err
}

func (m *mockInteractions) DrugInteractions(_ context.Context, _ string) (*drugscom.InteractionList, error) {
	return m.list, m.err
}

func (m *mockInteractions) FoodInteractions(_ context.Context, _ string) (string, error) {
	return m.food, m.err
}

func (m *mockInteractions) DiseaseInteractions(_ context.Context, _ string) (string, error) {
	return m.disease, m.err
}

func (m *mockInteractions) AllInteractions(_ context.Context, _ string) (*drugscom.Report, error) {
	return m.report, m.err
}

func TestProcessRequestAssembleProfile(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpAssembleProfile,
		PatientData: &PatientProfile{
			ID:                "patient123",
			Age:               45,
			MedicalHistory:    []string{"hypertension"},
			Allergies:         []string{"penicillin"},
			CurrentConditions: []string{"asthma"},
			Medications:       []Medication{{Name: "DrugA", Dosage: "50mg", Frequency: "daily"}},
		},
	})
	require.NoError(t, err)

	pr, ok := result.(*ProfileResult)
	require.True(t, ok)
	assert.Equal(t, "patient123", pr.Profile.ID)
	assert.NotEmpty(t, pr.Message)
}

func TestProcessRequestExtrapolateStatus(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpExtrapolateStatus,
		Profile:   &PatientProfile{ID: "patient123", Age: 40, CurrentConditions: []string{"asthma"}},
	})
	require.NoError(t, err)

	report, ok := result.(StatusReport)
	require.True(t, ok)
	assert.Equal(t, StatusStable, report.CurrentStatus)
	assert.Equal(t, 80.0, report.HealthScore)
}

func TestProcessRequestMissingProfileDefaults(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	// A known operation with no profile in the envelope must answer with
	// neutral defaults, never crash.
	result, err := agent.ProcessRequest(ctx, Request{Operation: OpExtrapolateStatus})
	require.NoError(t, err)
	report, ok := result.(StatusReport)
	require.True(t, ok)
	assert.Equal(t, StatusStable, report.CurrentStatus)
	assert.Equal(t, 75.0, report.HealthScore)

	result, err = agent.ProcessRequest(ctx, Request{Operation: OpEstimateSurvival})
	require.NoError(t, err)
	survival, ok := result.(SurvivalEstimate)
	require.True(t, ok)
	assert.Equal(t, 48.0, survival.EstimatedSurvivalHours)

	result, err = agent.ProcessRequest(ctx, Request{Operation: OpAssessHealthRisk})
	require.NoError(t, err)
	risks, ok := result.(RiskAssessment)
	require.True(t, ok)
	assert.Empty(t, risks.HealthRisks)

	result, err = agent.ProcessRequest(ctx, Request{Operation: OpGenerateMedicalAdvice})
	require.NoError(t, err)
	advice, ok := result.(MedicalAdvice)
	require.True(t, ok)
	assert.Contains(t, advice.MedicalAdvice, "Monitor the patient's condition continuously")
}

func TestProcessRequestUnknown(t *testing.T) {
	agent := newTestAgent()
	_, err := agent.ProcessRequest(context.Background(), Request{Operation: "invalid_request"})
	assert.ErrorIs(t, err, ErrUnknownRequest)
}

func TestProcessRequestMedicalAdviceDefaultSurvival(t *testing.T) {
	agent := newTestAgent()
	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpGenerateMedicalAdvice,
		Profile:   &PatientProfile{ID: "patient1", Age: 30},
	})
	require.NoError(t, err)

	advice, ok := result.(MedicalAdvice)
	require.True(t, ok)
	// Default 48h survival window does not trigger evacuation.
	assert.NotContains(t, advice.MedicalAdvice, "Immediate evacuation is strongly recommended.")
}

func TestProcessRequestDrugInteractions(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{
		slug: "omaveloxolone,skyclarys",
		list: &drugscom.InteractionList{Major: []string{"Aspirin"}, Moderate: []string{"Ibuprofen"}},
	}))

	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpDrugInteractions,
		DrugName:  "skyclarys",
	})
	require.NoError(t, err)

	list, ok := result.(*drugscom.InteractionList)
	require.True(t, ok)
	assert.Equal(t, []string{"Aspirin"}, list.Major)
	assert.Equal(t, []string{"Ibuprofen"}, list.Moderate)
}

func TestProcessRequestFoodInteractions(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{
		slug: "omaveloxolone,skyclarys",
		food: "Avoid grapefruit while taking this drug.",
	}))

	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpFoodInteractions,
		DrugName:  "skyclarys",
	})
	require.NoError(t, err)

	payload, ok := result.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Avoid grapefruit while taking this drug.", payload["food_interactions"])
}

func TestProcessRequestDiseaseInteractions(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{
		slug:    "omaveloxolone,skyclarys",
		disease: "Use with caution in liver disease.",
	}))

	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpDiseaseInteractions,
		DrugName:  "skyclarys",
	})
	require.NoError(t, err)

	payload, ok := result.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Use with caution in liver disease.", payload["disease_interactions"])
}

func TestProcessRequestAllInteractions(t *testing.T) {
	report := &drugscom.Report{
		DrugName:            "skyclarys",
		Slug:                "omaveloxolone,skyclarys",
		DrugInteractions:    drugscom.InteractionList{Major: []string{"Aspirin"}},
		FoodInteractions:    "Avoid grapefruit.",
		DiseaseInteractions: "Use with caution in liver disease.",
	}
	agent := newTestAgent(WithInteractions(&mockInteractions{report: report}))

	result, err := agent.ProcessRequest(context.Background(), Request{
		Operation: OpAllInteractions,
		DrugName:  "skyclarys",
	})
	require.NoError(t, err)
	assert.Equal(t, report, result)
}

func TestInteractionsLookupFailure(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{err: errors.New("drug not found")}))

	_, err := agent.DrugInteractions(context.Background(), "unknown_drug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drug not found")
}

func TestInteractionsNotConfigured(t *testing.T) {
	agent := newTestAgent()
	_, err := agent.DrugInteractions(context.Background(), "skyclarys")
	assert.Error(t, err)
}

func TestMedicationInteractionCheckCrossChecks(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{
		report: &drugscom.Report{
			DrugInteractions: drugscom.InteractionList{Major: []string{"DrugB"}},
		},
	}))

	meds := []Medication{{Name: "DrugA"}, {Name: "DrugB"}}
	result := agent.MedicationInteractionCheck(context.Background(), meds)

	assert.Contains(t, result.MedicationAnalysis,
		"Potential drug interactions detected among prescribed medications.")
	assert.Contains(t, result.MedicationAnalysis, "Known interaction between DrugA and DrugB.")
}

func TestMedicationInteractionCheckSingleMedSkipsLookup(t *testing.T) {
	agent := newTestAgent(WithInteractions(&mockInteractions{err: errors.New("must not be called")}))

	result := agent.MedicationInteractionCheck(context.Background(), []Medication{{Name: "DrugA"}})
	assert.Equal(t, []string{"No significant drug interactions detected."}, result.MedicationAnalysis)
}

func TestMissionStatusInitial(t *testing.T) {
	agent := newTestAgent()
	assert.Equal(t, "standby", agent.Status())
}

func TestMissionStatusUpdate(t *testing.T) {
	agent := newTestAgent()
	result := agent.UpdateStatus("in_progress")

	assert.Equal(t, "updated", result.Status)
	assert.Equal(t, "in_progress", result.NewStatus)
	assert.Equal(t, "in_progress", agent.Status())
}

func TestMissionStatusMultipleUpdates(t *testing.T) {
	agent := newTestAgent()
	agent.UpdateStatus("phase_1")
	agent.UpdateStatus("phase_2")
	assert.Equal(t, "phase_2", agent.Status())
}

func TestProcessRequestStatusRoundtrip(t *testing.T) {
	agent := newTestAgent()
	ctx := context.Background()

	_, err := agent.ProcessRequest(ctx, Request{Operation: OpUpdateStatus, Status: "search_active"})
	require.NoError(t, err)

	result, err := agent.ProcessRequest(ctx, Request{Operation: OpGetStatus})
	require.NoError(t, err)

	status, ok := result.(MissionStatus)
	require.True(t, ok)
	assert.Equal(t, "search_active", status.Status)
}
