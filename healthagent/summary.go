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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Gannon44/sar-project/healthagent/llm"
)

// systemMessage is the role prompt sent with every narrative request.
const systemMessage = `You are a health specialist for SAR operations. Your responsibilities include:
1. Assembling a general health profile of the missing person using available records.
2. Extrapolating current health status based on the assembled profile.
3. Analyzing medication data to assess potential drug interactions and effects.
4. Evaluating environmental impacts on the subject's health.
5. Estimating survival time under current conditions.
6. Planning appropriate medical resources for rescue operations.
7. Assessing health risks that may arise during SAR operations.
8. Generating medical advice for SAR teams in the field.
9. Providing information on drug, food, and disease interactions.
10. Updating and retrieving the current mission status.`

// narrativeMaxTokens bounds LLM narrative completions.
const narrativeMaxTokens = 2500

// UnifiedSummary builds the consolidated report across all stored
// profiles: one entry per patient with extrapolated status, health
// score and recommended resources.
func (a *HealthAgent) UnifiedSummary(ctx context.Context) (*UnifiedSummary, error) {
	profiles, err := a.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	summary := &UnifiedSummary{
		MissionID: a.missionID,
		Patients:  make([]SummaryEntry, 0, len(profiles)),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Unified patient summary (%d patient(s)):\n", len(profiles))

	for _, profile := range profiles {
		status := ExtrapolateStatus(profile)
		resources := PlanResources(profile, status)

		text := fmt.Sprintf("Patient %s: status %s, health score %s. Recommended resources: %s.",
			profile.ID,
			status.CurrentStatus,
			formatScore(status.HealthScore),
			strings.Join(resources.RecommendedResources, ", "),
		)

		summary.Patients = append(summary.Patients, SummaryEntry{
			ProfileID:            profile.ID,
			CurrentStatus:        status.CurrentStatus,
			HealthScore:          status.HealthScore,
			RecommendedResources: resources.RecommendedResources,
			Text:                 text,
		})
		b.WriteString(text)
		b.WriteString("\n")
	}

	summary.Text = strings.TrimRight(b.String(), "\n")
	a.logger.Debug("Unified summary generated", zap.Int("patients", len(profiles)))
	return summary, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// NarrativeForProfile prompts the LLM router with all known facts about
// one profile and returns the generated analysis. otherInfo defaults to
// "None" when empty.
func (a *HealthAgent) NarrativeForProfile(ctx context.Context, profileID, otherInfo string) (*Narrative, error) {
	if a.router == nil {
		return nil, llm.ErrNoProviders
	}

	profile, err := a.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	knownFacts, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize profile: %w", err)
	}
	if otherInfo == "" {
		otherInfo = "None"
	}

	prompt := fmt.Sprintf(
		"You are a health specialist for SAR operations.\n"+
			"Known facts about the health profile:\n%s\n"+
			"Other information supplied:\n%s\n"+
			"Please provide an analysis or suggest next steps.",
		knownFacts, otherInfo)

	resp, err := a.router.Query(ctx, prompt, llm.QueryOptions{
		SystemPrompt: systemMessage,
		MaxTokens:    narrativeMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Narrative generated",
		zap.String("profile_id", profileID),
		zap.String("provider", resp.Provider),
		zap.Int("tokens", resp.TokensUsed),
	)

	return &Narrative{
		Response: strings.TrimSpace(resp.Content),
		Provider: resp.Provider,
		Model:    resp.Model,
	}, nil
}
