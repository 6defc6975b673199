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

// Package healthagent implements the health specialist agent for SAR
// (Search and Rescue) missions. It aggregates patient health profiles,
// extrapolates health status, plans medical resources, checks drug
// interactions and generates narrative analysis through LLM providers.
package healthagent

import "encoding/json"

// Medication describes one prescribed medication on a profile.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// PatientProfile is the aggregated health record for one missing person.
// Age 0 means unknown.
type PatientProfile struct {
	ID                string            `json:"id"`
	Age               int               `json:"age,omitempty"`
	MedicalHistory    []string          `json:"medical_history"`
	Allergies         []string          `json:"allergies"`
	CurrentConditions []string          `json:"current_conditions"`
	Medications       []Medication      `json:"medications"`
	Notes             map[string]string `json:"notes,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (p *PatientProfile) Clone() *PatientProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.MedicalHistory = append([]string(nil), p.MedicalHistory...)
	out.Allergies = append([]string(nil), p.Allergies...)
	out.CurrentConditions = append([]string(nil), p.CurrentConditions...)
	out.Medications = append([]Medication(nil), p.Medications...)
	if p.Notes != nil {
		out.Notes = make(map[string]string, len(p.Notes))
		for k, v := range p.Notes {
			out.Notes[k] = v
		}
	}
	return &out
}

// ProfileUpdate is a partial profile for upsert merges. Nil fields are
// left untouched on the stored profile.
type ProfileUpdate struct {
	Age               *int              `json:"age,omitempty"`
	MedicalHistory    []string          `json:"medical_history,omitempty"`
	Allergies         []string          `json:"allergies,omitempty"`
	CurrentConditions []string          `json:"current_conditions,omitempty"`
	Medications       []Medication      `json:"medications,omitempty"`
	Notes             map[string]string `json:"notes,omitempty"`
}

// EnvironmentData describes conditions at the subject's presumed location.
type EnvironmentData struct {
	Temperature    float64 `json:"temperature"`     // Celsius
	Humidity       float64 `json:"humidity"`        // percentage
	PollutionLevel float64 `json:"pollution_level"` // AQI or similar
	Altitude       float64 `json:"altitude"`        // meters
}

// defaultTemperature is assumed when a report omits temperature.
const defaultTemperature = 22

// UnmarshalJSON fills in the temperate-climate default when the
// temperature field is absent.
func (e *EnvironmentData) UnmarshalJSON(data []byte) error {
	type alias EnvironmentData
	aux := struct {
		Temperature *float64 `json:"temperature"`
		*alias
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Temperature == nil {
		e.Temperature = defaultTemperature
	} else {
		e.Temperature = *aux.Temperature
	}
	return nil
}

// StatusReport is the extrapolated health status for a profile.
type StatusReport struct {
	CurrentStatus string  `json:"current_status"`
	HealthScore   float64 `json:"health_score"`
}

// SurvivalEstimate holds the estimated survival window.
type SurvivalEstimate struct {
	EstimatedSurvivalHours float64 `json:"estimated_survival_hours"`
}

// EnvironmentAssessment grades the environmental impact on the subject.
type EnvironmentAssessment struct {
	EnvironmentalImpact string          `json:"environmental_impact"`
	Details             EnvironmentData `json:"details"`
}

// ResourcePlan lists medical resources recommended for the rescue.
type ResourcePlan struct {
	RecommendedResources []string `json:"recommended_resources"`
}

// RiskAssessment lists identified operational health risks.
type RiskAssessment struct {
	HealthRisks []string `json:"health_risks"`
}

// MedicalAdvice is field guidance for the SAR team.
type MedicalAdvice struct {
	MedicalAdvice string `json:"medical_advice"`
}

// MedicationAnalysis summarizes drug interaction findings.
type MedicationAnalysis struct {
	MedicationAnalysis []string `json:"medication_analysis"`
}

// ProfileResult is returned when a profile is assembled or extended.
type ProfileResult struct {
	Profile *PatientProfile `json:"profile"`
	Message string          `json:"message"`
}

// MissionStatus reports the agent's mission state.
type MissionStatus struct {
	Status    string `json:"status"`
	NewStatus string `json:"new_status,omitempty"`
}

// SummaryEntry is one patient's section of the unified mission summary.
type SummaryEntry struct {
	ProfileID            string   `json:"profile_id"`
	CurrentStatus        string   `json:"current_status"`
	HealthScore          float64  `json:"health_score"`
	RecommendedResources []string `json:"recommended_resources"`
	Text                 string   `json:"text"`
}

// UnifiedSummary is the consolidated report across all stored profiles.
type UnifiedSummary struct {
	MissionID string         `json:"mission_id,omitempty"`
	Patients  []SummaryEntry `json:"patients"`
	Text      string         `json:"text"`
}

// Narrative is an LLM-generated analysis for one profile.
type Narrative struct {
	Response string `json:"response"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}
