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
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newPostgresStorageWithDB(db, nil), mock
}

func mustPayload(t *testing.T, profile *PatientProfile) []byte {
	t.Helper()
	payload, err := json.Marshal(profile)
	require.NoError(t, err)
	return payload
}

func TestPostgresEnsureSchema(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sar_profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertProfile(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectExec("INSERT INTO sar_profiles").
		WithArgs("patient123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertProfile(context.Background(), &PatientProfile{ID: "patient123", Age: 45})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertRequiresID(t *testing.T) {
	store, _ := newMockStorage(t)
	assert.Error(t, store.UpsertProfile(context.Background(), &PatientProfile{}))
}

func TestPostgresGetProfile(t *testing.T) {
	store, mock := newMockStorage(t)
	payload := mustPayload(t, &PatientProfile{ID: "patient123", Age: 45})
	mock.ExpectQuery("SELECT payload FROM sar_profiles WHERE id").
		WithArgs("patient123").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	profile, err := store.GetProfile(context.Background(), "patient123")
	require.NoError(t, err)
	assert.Equal(t, 45, profile.Age)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfileNotFound(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectQuery("SELECT payload FROM sar_profiles WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPostgresListProfiles(t *testing.T) {
	store, mock := newMockStorage(t)
	rows := sqlmock.NewRows([]string{"payload"}).
		AddRow(mustPayload(t, &PatientProfile{ID: "alpha"})).
		AddRow(mustPayload(t, &PatientProfile{ID: "bravo"}))
	mock.ExpectQuery("SELECT payload FROM sar_profiles ORDER BY id").
		WillReturnRows(rows)

	profiles, err := store.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alpha", profiles[0].ID)
	assert.Equal(t, "bravo", profiles[1].ID)
}

func TestPostgresDeleteProfile(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectExec("DELETE FROM sar_profiles WHERE id").
		WithArgs("patient123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteProfile(context.Background(), "patient123"))
}

func TestPostgresDeleteProfileNotFound(t *testing.T) {
	store, mock := newMockStorage(t)
	mock.ExpectExec("DELETE FROM sar_profiles WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.DeleteProfile(context.Background(), "missing"), ErrProfileNotFound)
}
