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
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// PostgresStorage persists profiles in PostgreSQL. The full profile is
// stored as a JSONB payload so schema changes never require migrations.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStorage connects to PostgreSQL and verifies the connection.
func NewPostgresStorage(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &PostgresStorage{db: db, logger: logger}, nil
}

// newPostgresStorageWithDB wraps an existing connection (tests).
func newPostgresStorageWithDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStorage{db: db, logger: logger}
}

// EnsureSchema creates the profiles table if it does not exist.
func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sar_profiles (
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// UpsertProfile inserts or replaces the stored profile for its ID.
func (s *PostgresStorage) UpsertProfile(ctx context.Context, profile *PatientProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sar_profiles (id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET payload = $2, updated_at = NOW()`,
		profile.ID, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	s.logger.Debug("Profile persisted", zap.String("profile_id", profile.ID))
	return nil
}

// GetProfile loads one profile by ID.
func (s *PostgresStorage) GetProfile(ctx context.Context, id string) (*PatientProfile, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sar_profiles WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	var profile PatientProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// ListProfiles loads all profiles ordered by ID.
func (s *PostgresStorage) ListProfiles(ctx context.Context) ([]*PatientProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM sar_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []*PatientProfile
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var profile PatientProfile
		if err := json.Unmarshal(payload, &profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		out = append(out, &profile)
	}
	return out, rows.Err()
}

// DeleteProfile removes a profile by ID.
func (s *PostgresStorage) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sar_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStorage) Close() error { return s.db.Close() }

var _ Storage = (*PostgresStorage)(nil)
