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
	"sort"
	"sync"
)

// ErrProfileNotFound is returned when a profile ID is not stored.
var ErrProfileNotFound = errors.New("profile not found")

// Storage persists patient profiles. Profile IDs are unique per mission.
type Storage interface {
	UpsertProfile(ctx context.Context, profile *PatientProfile) error
	GetProfile(ctx context.Context, id string) (*PatientProfile, error)
	ListProfiles(ctx context.Context) ([]*PatientProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	Close() error
}

// MemoryStorage is the default in-process profile store.
type MemoryStorage struct {
	profiles map[string]*PatientProfile
	mu       sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{profiles: make(map[string]*PatientProfile)}
}

// UpsertProfile stores a copy of the profile keyed by its ID.
func (s *MemoryStorage) UpsertProfile(_ context.Context, profile *PatientProfile) error {
	if profile == nil || profile.ID == "" {
		return errors.New("profile ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile.Clone()
	return nil
}

// GetProfile returns a copy of the stored profile.
func (s *MemoryStorage) GetProfile(_ context.Context, id string) (*PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

// ListProfiles returns copies of all profiles sorted by ID.
func (s *MemoryStorage) ListProfiles(_ context.Context) ([]*PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PatientProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteProfile removes a profile by ID.
func (s *MemoryStorage) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ErrProfileNotFound
	}
	delete(s.profiles, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStorage) Close() error { return nil }

var _ Storage = (*MemoryStorage)(nil)
