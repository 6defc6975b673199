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

	"go.uber.org/zap"
)

// AssembleProfile normalizes incoming patient data into a profile and
// stores it. A missing ID falls back to "unknown"; missing list fields
// become empty lists.
func (a *HealthAgent) AssembleProfile(ctx context.Context, patientData *PatientProfile) (*ProfileResult, error) {
	if patientData == nil {
		return nil, errors.New("patient data is required")
	}

	profile := patientData.Clone()
	if profile.ID == "" {
		profile.ID = "unknown"
	}
	if profile.MedicalHistory == nil {
		profile.MedicalHistory = []string{}
	}
	if profile.Allergies == nil {
		profile.Allergies = []string{}
	}
	if profile.CurrentConditions == nil {
		profile.CurrentConditions = []string{}
	}
	if profile.Medications == nil {
		profile.Medications = []Medication{}
	}

	if err := a.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	a.logger.Info("Health profile assembled", zap.String("profile_id", profile.ID))

	return &ProfileResult{
		Profile: profile,
		Message: "Health profile assembled successfully.",
	}, nil
}

// ExtendProfile merges new data into the stored profile, creating the
// profile when absent. Unset fields in the update leave the stored
// fields untouched; notes merge per key.
func (a *HealthAgent) ExtendProfile(ctx context.Context, profileID string, update *ProfileUpdate) (*ProfileResult, error) {
	if profileID == "" {
		return nil, errors.New("profile ID is required")
	}
	if update == nil {
		return nil, errors.New("update data is required")
	}

	profile, err := a.store.GetProfile(ctx, profileID)
	if errors.Is(err, ErrProfileNotFound) {
		return a.AssembleProfile(ctx, &PatientProfile{
			ID:                profileID,
			Age:               derefInt(update.Age),
			MedicalHistory:    update.MedicalHistory,
			Allergies:         update.Allergies,
			CurrentConditions: update.CurrentConditions,
			Medications:       update.Medications,
			Notes:             update.Notes,
		})
	}
	if err != nil {
		return nil, err
	}

	if update.Age != nil {
		profile.Age = *update.Age
	}
	if update.MedicalHistory != nil {
		profile.MedicalHistory = update.MedicalHistory
	}
	if update.Allergies != nil {
		profile.Allergies = update.Allergies
	}
	if update.CurrentConditions != nil {
		profile.CurrentConditions = update.CurrentConditions
	}
	if update.Medications != nil {
		profile.Medications = update.Medications
	}
	if update.Notes != nil {
		if profile.Notes == nil {
			profile.Notes = make(map[string]string, len(update.Notes))
		}
		for k, v := range update.Notes {
			profile.Notes[k] = v
		}
	}

	if err := a.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	a.logger.Info("Health profile extended", zap.String("profile_id", profileID))

	return &ProfileResult{Profile: profile, Message: "Health profile updated successfully."}, nil
}

// GetProfile returns one stored profile.
func (a *HealthAgent) GetProfile(ctx context.Context, profileID string) (*PatientProfile, error) {
	return a.store.GetProfile(ctx, profileID)
}

// ListProfiles returns all stored profiles sorted by ID.
func (a *HealthAgent) ListProfiles(ctx context.Context) ([]*PatientProfile, error) {
	return a.store.ListProfiles(ctx)
}

// DeleteProfile removes a stored profile.
func (a *HealthAgent) DeleteProfile(ctx context.Context, profileID string) error {
	return a.store.DeleteProfile(ctx, profileID)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
