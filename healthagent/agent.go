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
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Gannon44/sar-project/connectors/drugscom"
	"github.com/Gannon44/sar-project/healthagent/llm"
)

// ErrUnknownRequest is returned for an unrecognized operation.
var ErrUnknownRequest = errors.New("unknown request type")

// InteractionSource looks up drug, food and disease interactions.
// Satisfied by the drugscom connector.
type InteractionSource interface {
	InteractionsSlug(ctx context.Context, drugName string) (string, error)
	DrugInteractions(ctx context.Context, slug string) (*drugscom.InteractionList, error)
	FoodInteractions(ctx context.Context, slug string) (string, error)
	DiseaseInteractions(ctx context.Context, slug string) (string, error)
	AllInteractions(ctx context.Context, drugName string) (*drugscom.Report, error)
}

// HealthAgent is the health specialist agent for a SAR mission. It owns
// the profile store, the interaction source and the LLM router.
type HealthAgent struct {
	store         Storage
	interactions  InteractionSource
	router        *llm.Router
	logger        *zap.Logger
	missionID     string
	missionStatus string
	mu            sync.RWMutex
}

// Option configures a HealthAgent.
type Option func(*HealthAgent)

// WithInteractions wires the drug interaction source.
func WithInteractions(src InteractionSource) Option {
	return func(a *HealthAgent) { a.interactions = src }
}

// WithRouter wires the LLM router used for narrative generation.
func WithRouter(router *llm.Router) Option {
	return func(a *HealthAgent) { a.router = router }
}

// WithMissionID tags the agent with a mission identifier.
func WithMissionID(id string) Option {
	return func(a *HealthAgent) { a.missionID = id }
}

// New creates a health agent. The mission status starts at "standby".
func New(store Storage, logger *zap.Logger, opts ...Option) *HealthAgent {
	if store == nil {
		store = NewMemoryStorage()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &HealthAgent{
		store:         store,
		logger:        logger,
		missionStatus: "standby",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Operation names accepted by ProcessRequest.
type Operation string

const (
	OpAssembleProfile       Operation = "assemble_profile"
	OpExtendProfile         Operation = "extend_profile"
	OpExtrapolateStatus     Operation = "extrapolate_status"
	OpAnalyzeMedication     Operation = "analyze_medication"
	OpEvaluateEnvironment   Operation = "evaluate_environment"
	OpEstimateSurvival      Operation = "estimate_survival"
	OpPlanResources         Operation = "plan_resources"
	OpAssessHealthRisk      Operation = "assess_health_risk"
	OpGenerateMedicalAdvice Operation = "generate_medical_advice"
	OpDrugInteractions      Operation = "get_drug_interactions"
	OpFoodInteractions      Operation = "get_food_interactions"
	OpDiseaseInteractions   Operation = "get_disease_interactions"
	OpAllInteractions       Operation = "get_all_interactions"
	OpUpdateStatus          Operation = "update_status"
	OpGetStatus             Operation = "get_status"
	OpUnifiedSummary        Operation = "get_unified_summary"
	OpNarrative             Operation = "prompt_with_profile_facts"
)

// Request is the envelope for dispatched agent operations. Only the
// fields relevant to the operation need to be set.
type Request struct {
	Operation          Operation         `json:"operation"`
	PatientData        *PatientProfile   `json:"patient_data,omitempty"`
	ProfileID          string            `json:"profile_id,omitempty"`
	ProfileUpdate      *ProfileUpdate    `json:"new_data,omitempty"`
	Profile            *PatientProfile   `json:"profile,omitempty"`
	MedicationData     []Medication      `json:"medication_data,omitempty"`
	EnvironmentData    *EnvironmentData  `json:"environment_data,omitempty"`
	CurrentStatus      *StatusReport     `json:"current_status,omitempty"`
	SurvivalEstimation *SurvivalEstimate `json:"survival_estimation,omitempty"`
	DrugName           string            `json:"drug_name,omitempty"`
	Status             string            `json:"status,omitempty"`
	OtherInfo          string            `json:"other_info,omitempty"`
}

// ProcessRequest dispatches a request to the matching operation and
// returns its JSON-serializable result.
func (a *HealthAgent) ProcessRequest(ctx context.Context, req Request) (interface{}, error) {
	a.logger.Debug("Processing request", zap.String("operation", string(req.Operation)))

	switch req.Operation {
	case OpAssembleProfile:
		return a.AssembleProfile(ctx, req.PatientData)
	case OpExtendProfile:
		return a.ExtendProfile(ctx, req.ProfileID, req.ProfileUpdate)
	case OpExtrapolateStatus:
		return ExtrapolateStatus(req.Profile), nil
	case OpAnalyzeMedication:
		return AnalyzeMedications(req.MedicationData), nil
	case OpEvaluateEnvironment:
		return EvaluateEnvironment(envOrDefault(req.EnvironmentData), req.PatientData), nil
	case OpEstimateSurvival:
		return EstimateSurvival(req.Profile, envOrDefault(req.EnvironmentData)), nil
	case OpPlanResources:
		return PlanResources(req.Profile, statusOrDefault(req.CurrentStatus)), nil
	case OpAssessHealthRisk:
		return AssessHealthRisk(req.Profile, envOrDefault(req.EnvironmentData)), nil
	case OpGenerateMedicalAdvice:
		survival := SurvivalEstimate{EstimatedSurvivalHours: baseSurvivalHours}
		if req.SurvivalEstimation != nil {
			survival = *req.SurvivalEstimation
		}
		return GenerateAdvice(req.Profile, envOrDefault(req.EnvironmentData), survival), nil
	case OpDrugInteractions:
		return a.DrugInteractions(ctx, req.DrugName)
	case OpFoodInteractions:
		text, err := a.FoodInteractions(ctx, req.DrugName)
		if err != nil {
			return nil, err
		}
		return map[string]string{"food_interactions": text}, nil
	case OpDiseaseInteractions:
		text, err := a.DiseaseInteractions(ctx, req.DrugName)
		if err != nil {
			return nil, err
		}
		return map[string]string{"disease_interactions": text}, nil
	case OpAllInteractions:
		return a.AllInteractions(ctx, req.DrugName)
	case OpUpdateStatus:
		return a.UpdateStatus(req.Status), nil
	case OpGetStatus:
		return MissionStatus{Status: a.Status()}, nil
	case OpUnifiedSummary:
		return a.UnifiedSummary(ctx)
	case OpNarrative:
		return a.NarrativeForProfile(ctx, req.ProfileID, req.OtherInfo)
	default:
		return nil, ErrUnknownRequest
	}
}

func envOrDefault(env *EnvironmentData) EnvironmentData {
	if env == nil {
		return EnvironmentData{Temperature: defaultTemperature}
	}
	return *env
}

func statusOrDefault(status *StatusReport) StatusReport {
	if status == nil {
		return StatusReport{CurrentStatus: StatusStable}
	}
	return *status
}

func (a *HealthAgent) requireInteractions() error {
	if a.interactions == nil {
		return errors.New("drug interaction source is not configured")
	}
	return nil
}

// DrugInteractions resolves the drug's interactions slug and returns
// the major and moderate interaction lists.
func (a *HealthAgent) DrugInteractions(ctx context.Context, drugName string) (*drugscom.InteractionList, error) {
	if err := a.requireInteractions(); err != nil {
		return nil, err
	}
	slug, err := a.interactions.InteractionsSlug(ctx, drugName)
	if err != nil {
		return nil, err
	}
	return a.interactions.DrugInteractions(ctx, slug)
}

// FoodInteractions returns the food interactions text for a drug.
func (a *HealthAgent) FoodInteractions(ctx context.Context, drugName string) (string, error) {
	if err := a.requireInteractions(); err != nil {
		return "", err
	}
	slug, err := a.interactions.InteractionsSlug(ctx, drugName)
	if err != nil {
		return "", err
	}
	return a.interactions.FoodInteractions(ctx, slug)
}

// DiseaseInteractions returns the disease interactions text for a drug.
func (a *HealthAgent) DiseaseInteractions(ctx context.Context, drugName string) (string, error) {
	if err := a.requireInteractions(); err != nil {
		return "", err
	}
	slug, err := a.interactions.InteractionsSlug(ctx, drugName)
	if err != nil {
		return "", err
	}
	return a.interactions.DiseaseInteractions(ctx, slug)
}

// AllInteractions returns the full interaction report for a drug.
func (a *HealthAgent) AllInteractions(ctx context.Context, drugName string) (*drugscom.Report, error) {
	if err := a.requireInteractions(); err != nil {
		return nil, err
	}
	return a.interactions.AllInteractions(ctx, drugName)
}

// MedicationInteractionCheck cross-checks a profile's medications
// against the interaction source. It falls back to the count-based
// heuristic when no source is configured.
func (a *HealthAgent) MedicationInteractionCheck(ctx context.Context, medications []Medication) MedicationAnalysis {
	analysis := AnalyzeMedications(medications)
	if a.interactions == nil || len(medications) < 2 {
		return analysis
	}

	var findings []string
	for _, med := range medications {
		report, err := a.interactions.AllInteractions(ctx, med.Name)
		if err != nil {
			a.logger.Warn("Interaction lookup failed",
				zap.String("drug", med.Name),
				zap.Error(err),
			)
			continue
		}
		for _, other := range medications {
			if other.Name == med.Name {
				continue
			}
			if report.DrugInteractions.Contains(other.Name) {
				findings = append(findings,
					fmt.Sprintf("Known interaction between %s and %s.", med.Name, other.Name))
			}
		}
	}
	analysis.MedicationAnalysis = append(analysis.MedicationAnalysis, findings...)
	return analysis
}

// UpdateStatus sets the agent's mission status.
func (a *HealthAgent) UpdateStatus(status string) MissionStatus {
	a.mu.Lock()
	a.missionStatus = status
	a.mu.Unlock()
	a.logger.Info("Mission status updated", zap.String("status", status))
	return MissionStatus{Status: "updated", NewStatus: status}
}

// Status returns the current mission status.
func (a *HealthAgent) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.missionStatus
}

// MissionID returns the configured mission identifier.
func (a *HealthAgent) MissionID() string { return a.missionID }
