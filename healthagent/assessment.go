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

import "strings"

const (
	// StatusStable means no life-threatening condition is present.
	StatusStable = "stable"
	// StatusCritical means a life-threatening condition is present.
	StatusCritical = "critical"
)

// Environmental impact grades.
const (
	ImpactMinimal  = "minimal"
	ImpactModerate = "moderate"
	ImpactHigh     = "high"
)

// criticalConditions mark a profile as critical when present.
var criticalConditions = map[string]bool{
	"severe_injury":       true,
	"cardiac_arrest":      true,
	"respiratory_failure": true,
}

// baseSurvivalHours is the survival window for a stable subject.
const baseSurvivalHours = 48

// unknownAgeScore substitutes for the age term when age is unknown.
const unknownAgeScore = 50

// ExtrapolateStatus predicts current health status from the profile.
// A critical condition forces critical status; the health score decays
// with age and an unknown age scores as a 50-year-old.
func ExtrapolateStatus(profile *PatientProfile) StatusReport {
	if profile == nil {
		profile = &PatientProfile{}
	}
	status := StatusStable
	for _, cond := range profile.CurrentConditions {
		if criticalConditions[cond] {
			status = StatusCritical
			break
		}
	}

	age := float64(profile.Age)
	if profile.Age <= 0 {
		age = unknownAgeScore
	}
	score := 100 - age*0.5
	if score < 0 {
		score = 0
	}

	return StatusReport{CurrentStatus: status, HealthScore: score}
}

// AnalyzeMedications flags potential drug interactions. A single
// medication, or none, raises no interaction concern.
func AnalyzeMedications(medications []Medication) MedicationAnalysis {
	if len(medications) > 1 {
		return MedicationAnalysis{MedicationAnalysis: []string{
			"Potential drug interactions detected among prescribed medications.",
		}}
	}
	return MedicationAnalysis{MedicationAnalysis: []string{
		"No significant drug interactions detected.",
	}}
}

// EvaluateEnvironment grades the environmental impact on the subject.
// High pollution hits asthmatic subjects hardest; extreme temperatures
// grade moderate on their own.
func EvaluateEnvironment(env EnvironmentData, profile *PatientProfile) EnvironmentAssessment {
	impact := ImpactMinimal
	if env.PollutionLevel > 100 && profile != nil && hasCondition(profile, "asthma") {
		impact = ImpactHigh
	} else if env.Temperature > 35 || env.Temperature < 5 {
		impact = ImpactModerate
	}
	return EnvironmentAssessment{EnvironmentalImpact: impact, Details: env}
}

func hasCondition(profile *PatientProfile, condition string) bool {
	for _, c := range profile.CurrentConditions {
		if c == condition {
			return true
		}
	}
	return false
}

// EstimateSurvival estimates the survival window in hours. The base
// window is 48 hours, halved for critical subjects, and cut by a
// quarter under extreme temperatures.
func EstimateSurvival(profile *PatientProfile, env EnvironmentData) SurvivalEstimate {
	hours := float64(baseSurvivalHours)
	if ExtrapolateStatus(profile).CurrentStatus == StatusCritical {
		hours = 24
	}
	if env.Temperature > 40 || env.Temperature < 0 {
		hours *= 0.75
	}
	return SurvivalEstimate{EstimatedSurvivalHours: hours}
}

// PlanResources recommends medical resources for the rescue operation.
func PlanResources(profile *PatientProfile, status StatusReport) ResourcePlan {
	var resources []string
	if status.CurrentStatus == StatusCritical {
		resources = append(resources, "advanced life support equipment")
	} else {
		resources = append(resources, "basic first aid kit")
	}
	if profile != nil && profile.Age > 60 {
		resources = append(resources, "geriatric care supplies")
	}
	return ResourcePlan{RecommendedResources: resources}
}

// AssessHealthRisk identifies operational health risks from the profile
// and the environmental hazards combined.
func AssessHealthRisk(profile *PatientProfile, env EnvironmentData) RiskAssessment {
	risks := []string{}
	if ExtrapolateStatus(profile).CurrentStatus == StatusCritical {
		risks = append(risks, "High risk due to critical health status.")
	}
	if env.PollutionLevel > 150 {
		risks = append(risks, "High risk due to extreme environmental pollution.")
	}
	return RiskAssessment{HealthRisks: risks}
}

// GenerateAdvice produces field guidance for the SAR team from the
// profile, the environment and the survival estimate.
func GenerateAdvice(profile *PatientProfile, env EnvironmentData, survival SurvivalEstimate) MedicalAdvice {
	advice := "Monitor the patient's condition continuously and prepare for rapid intervention."
	if risks := AssessHealthRisk(profile, env).HealthRisks; len(risks) > 0 {
		advice += " Identified risks include: " + strings.Join(risks, ", ")
	}
	if survival.EstimatedSurvivalHours < 24 {
		advice += " Immediate evacuation is strongly recommended."
	}
	return MedicalAdvice{MedicalAdvice: advice}
}
