package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthvault-data/internal/domain"
)

func setupMockVitalsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresVitalsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresVitalsRepository(db)
	return db, mock, repo
}

func TestUpsertObservation_Success(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	observationID := uuid.New().String()

	mock.ExpectQuery(`INSERT INTO vital_sign_records`).
		WillReturnRows(sqlmock.NewRows([]string{"observation_id"}).AddRow(observationID))

	savedID, err := repo.UpsertObservation(ctx, userID, &domain.VitalSignRecord{
		ObservedOn:       time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Vitals:           json.RawMessage(`{"systolic_bp":128,"heart_rate":72}`),
		Symptoms:         []string{"fatigue"},
		OverallCondition: 3,
		Source:           "device",
	})

	require.NoError(t, err)
	assert.Equal(t, observationID, savedID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertObservation_InvalidOverallCondition(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	_, err := repo.UpsertObservation(context.Background(), uuid.New().String(), &domain.VitalSignRecord{
		ObservedOn:       time.Now(),
		OverallCondition: 6,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overall_condition")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertObservation_MissingDate(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	_, err := repo.UpsertObservation(context.Background(), uuid.New().String(), &domain.VitalSignRecord{
		OverallCondition: 3,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "observed_on")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListObservations_ChronologicalOrder(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"observation_id", "user_id", "observed_on", "vitals", "symptoms",
		"overall_condition", "source", "created_at",
	}).
		AddRow(uuid.New().String(), userID, now.AddDate(0, 0, -2), `{"systolic_bp":120}`, `[]`, 4, "manual", now).
		AddRow(uuid.New().String(), userID, now.AddDate(0, 0, -1), `{"systolic_bp":124}`, `["headache"]`, 3, "manual", now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	records, err := repo.ListObservations(ctx, userID, time.Time{}, 0)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].ObservedOn.Before(records[1].ObservedOn))
	assert.Equal(t, []string{"headache"}, records[1].Symptoms)

	var vitals map[string]float64
	require.NoError(t, json.Unmarshal(records[0].Vitals, &vitals))
	assert.Equal(t, 120.0, vitals["systolic_bp"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteObservation_NotFound(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	observedOn := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM vital_sign_records`).
		WithArgs(userID, observedOn).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteObservation(ctx, userID, observedOn)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}
