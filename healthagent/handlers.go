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
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Gannon44/sar-project/connectors/base"
)

// APIHandler exposes the health agent over HTTP.
type APIHandler struct {
	agent   *HealthAgent
	metrics *serviceMetrics
	logger  *zap.Logger
}

// NewAPIHandler creates the HTTP handler for the agent.
func NewAPIHandler(agent *HealthAgent, metrics *serviceMetrics, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = newServiceMetrics()
	}
	return &APIHandler{agent: agent, metrics: metrics, logger: logger}
}

// RegisterRoutes attaches all agent routes to the router.
func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/process", h.handleProcess).Methods("POST")

	r.HandleFunc("/api/v1/profiles", h.handleAssembleProfile).Methods("POST")
	r.HandleFunc("/api/v1/profiles", h.handleListProfiles).Methods("GET")
	r.HandleFunc("/api/v1/profiles/{id}", h.handleGetProfile).Methods("GET")
	r.HandleFunc("/api/v1/profiles/{id}", h.handleExtendProfile).Methods("PATCH")
	r.HandleFunc("/api/v1/profiles/{id}", h.handleDeleteProfile).Methods("DELETE")
	r.HandleFunc("/api/v1/profiles/{id}/status", h.handleProfileStatus).Methods("GET")
	r.HandleFunc("/api/v1/profiles/{id}/narrative", h.handleNarrative).Methods("POST")

	r.HandleFunc("/api/v1/assessments/survival", h.handleSurvival).Methods("POST")
	r.HandleFunc("/api/v1/assessments/environment", h.handleEnvironment).Methods("POST")
	r.HandleFunc("/api/v1/assessments/resources", h.handleResources).Methods("POST")
	r.HandleFunc("/api/v1/assessments/risk", h.handleRisk).Methods("POST")
	r.HandleFunc("/api/v1/assessments/advice", h.handleAdvice).Methods("POST")
	r.HandleFunc("/api/v1/assessments/medication", h.handleMedication).Methods("POST")

	r.HandleFunc("/api/v1/interactions/{drug}", h.handleDrugInteractions).Methods("GET")
	r.HandleFunc("/api/v1/interactions/{drug}/food", h.handleFoodInteractions).Methods("GET")
	r.HandleFunc("/api/v1/interactions/{drug}/disease", h.handleDiseaseInteractions).Methods("GET")
	r.HandleFunc("/api/v1/interactions/{drug}/all", h.handleAllInteractions).Methods("GET")

	r.HandleFunc("/api/v1/summary", h.handleSummary).Methods("GET")

	r.HandleFunc("/api/v1/mission/status", h.handleGetMissionStatus).Methods("GET")
	r.HandleFunc("/api/v1/mission/status", h.handleUpdateMissionStatus).Methods("PUT")
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnknownRequest):
		status = http.StatusBadRequest
	default:
		var connErr *base.ConnectorError
		if errors.As(err, &connErr) {
			status = http.StatusBadGateway
		}
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// observe records request metrics for one operation.
func (h *APIHandler) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start)
	promRequestsTotal.WithLabelValues(operation, status).Inc()
	promRequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
	h.metrics.record(operation, duration, err == nil)
}

func (h *APIHandler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	result, err := h.agent.ProcessRequest(r.Context(), req)
	h.observe(string(req.Operation), start, err)
	if isInteractionOperation(req.Operation) {
		countInteractionLookup(err)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) handleAssembleProfile(w http.ResponseWriter, r *http.Request) {
	var patient PatientProfile
	if !h.decode(w, r, &patient) {
		return
	}
	start := time.Now()
	result, err := h.agent.AssembleProfile(r.Context(), &patient)
	h.observe(string(OpAssembleProfile), start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) handleExtendProfile(w http.ResponseWriter, r *http.Request) {
	var update ProfileUpdate
	if !h.decode(w, r, &update) {
		return
	}
	start := time.Now()
	result, err := h.agent.ExtendProfile(r.Context(), mux.Vars(r)["id"], &update)
	h.observe(string(OpExtendProfile), start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.agent.GetProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.agent.ListProfiles(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

func (h *APIHandler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.agent.DeleteProfile(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleProfileStatus(w http.ResponseWriter, r *http.Request) {
	profile, err := h.agent.GetProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ExtrapolateStatus(profile))
}

// assessmentRequest carries the inputs shared by assessment endpoints.
type assessmentRequest struct {
	Profile            *PatientProfile   `json:"profile,omitempty"`
	ProfileID          string            `json:"profile_id,omitempty"`
	EnvironmentData    *EnvironmentData  `json:"environment_data,omitempty"`
	CurrentStatus      *StatusReport     `json:"current_status,omitempty"`
	SurvivalEstimation *SurvivalEstimate `json:"survival_estimation,omitempty"`
	Medications        []Medication      `json:"medication_data,omitempty"`
}

// resolveProfile loads the profile by ID when no inline profile is given.
func (h *APIHandler) resolveProfile(r *http.Request, req *assessmentRequest) (*PatientProfile, error) {
	if req.Profile != nil {
		return req.Profile, nil
	}
	if req.ProfileID != "" {
		return h.agent.GetProfile(r.Context(), req.ProfileID)
	}
	return &PatientProfile{}, nil
}

func (h *APIHandler) handleSurvival(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.resolveProfile(r, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, EstimateSurvival(profile, envOrDefault(req.EnvironmentData)))
}

func (h *APIHandler) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.resolveProfile(r, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, EvaluateEnvironment(envOrDefault(req.EnvironmentData), profile))
}

func (h *APIHandler) handleResources(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.resolveProfile(r, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := statusOrDefault(req.CurrentStatus)
	if req.CurrentStatus == nil {
		status = ExtrapolateStatus(profile)
	}
	h.writeJSON(w, http.StatusOK, PlanResources(profile, status))
}

func (h *APIHandler) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.resolveProfile(r, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AssessHealthRisk(profile, envOrDefault(req.EnvironmentData)))
}

func (h *APIHandler) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile, err := h.resolveProfile(r, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	env := envOrDefault(req.EnvironmentData)
	survival := SurvivalEstimate{EstimatedSurvivalHours: baseSurvivalHours}
	if req.SurvivalEstimation != nil {
		survival = *req.SurvivalEstimation
	}
	h.writeJSON(w, http.StatusOK, GenerateAdvice(profile, env, survival))
}

func (h *APIHandler) handleMedication(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.agent.MedicationInteractionCheck(r.Context(), req.Medications))
}

func (h *APIHandler) handleDrugInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := h.agent.DrugInteractions(r.Context(), mux.Vars(r)["drug"])
	h.observeInteraction(start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *APIHandler) handleFoodInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	text, err := h.agent.FoodInteractions(r.Context(), mux.Vars(r)["drug"])
	h.observeInteraction(start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"food_interactions": text})
}

func (h *APIHandler) handleDiseaseInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	text, err := h.agent.DiseaseInteractions(r.Context(), mux.Vars(r)["drug"])
	h.observeInteraction(start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"disease_interactions": text})
}

func (h *APIHandler) handleAllInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.agent.AllInteractions(r.Context(), mux.Vars(r)["drug"])
	h.observeInteraction(start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) observeInteraction(start time.Time, err error) {
	countInteractionLookup(err)
	h.metrics.record("interactions", time.Since(start), err == nil)
}

// countInteractionLookup increments the lookup counter regardless of
// which surface (direct endpoint or dispatcher) served the lookup.
func countInteractionLookup(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	promInteractionLookups.WithLabelValues(status).Inc()
}

func isInteractionOperation(op Operation) bool {
	switch op {
	case OpDrugInteractions, OpFoodInteractions, OpDiseaseInteractions, OpAllInteractions:
		return true
	}
	return false
}

func (h *APIHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary, err := h.agent.UnifiedSummary(r.Context())
	h.observe(string(OpUnifiedSummary), start, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// narrativeRequest carries the optional context for an LLM narrative.
type narrativeRequest struct {
	OtherInfo string `json:"other_info,omitempty"`
}

func (h *APIHandler) handleNarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}
	start := time.Now()
	narrative, err := h.agent.NarrativeForProfile(r.Context(), mux.Vars(r)["id"], req.OtherInfo)
	h.observe(string(OpNarrative), start, err)
	if err != nil {
		promLLMCalls.WithLabelValues("router", "error").Inc()
		h.writeError(w, err)
		return
	}
	promLLMCalls.WithLabelValues(narrative.Provider, "success").Inc()
	h.writeJSON(w, http.StatusOK, narrative)
}

func (h *APIHandler) handleGetMissionStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, MissionStatus{Status: h.agent.Status()})
}

func (h *APIHandler) handleUpdateMissionStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.agent.UpdateStatus(req.Status))
}

// handleMetrics serves the JSON service metrics.
func (h *APIHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.metrics.snapshot())
}
