package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthvault-data/internal/domain"
)

func setupMockRiskAssessmentsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRiskAssessmentsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresRiskAssessmentsRepository(db)
	return db, mock, repo
}

func TestReplaceFamilyAssessments_DeleteThenInsert(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM family_risk_assessments`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO family_risk_assessments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO family_risk_assessments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceFamilyAssessments(ctx, userID, []*domain.FamilyRiskAssessment{
		{
			ConditionName:     "Type 2 Diabetes",
			FamilyRiskScore:   0.3,
			AffectedRelatives: 1,
			RiskLevel:         domain.RiskModerate,
			Recommendations:   []string{"Schedule regular screenings"},
			CalculatedAt:      time.Now(),
		},
		{
			ConditionName:     "Hypertension",
			FamilyRiskScore:   0.15,
			AffectedRelatives: 1,
			RiskLevel:         domain.RiskLow,
			CalculatedAt:      time.Now(),
		},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFamilyAssessments_EmptyClearsAll(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	userID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM family_risk_assessments`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.ReplaceFamilyAssessments(context.Background(), userID, nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFamilyAssessments_Success(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"user_id", "condition_name", "family_risk_score",
		"affected_relatives", "risk_level", "recommendations", "calculated_at",
	}).
		AddRow(userID, "Type 2 Diabetes", 0.42, 2, "high", `["Schedule regular screenings"]`, now).
		AddRow(userID, "Hypertension", 0.18, 1, "low", `[]`, now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	assessments, err := repo.ListFamilyAssessments(ctx, userID)

	require.NoError(t, err)
	require.Len(t, assessments, 2)
	assert.Equal(t, "Type 2 Diabetes", assessments[0].ConditionName)
	assert.Equal(t, domain.RiskHigh, assessments[0].RiskLevel)
	assert.Equal(t, []string{"Schedule regular screenings"}, assessments[0].Recommendations)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePrediction_Success(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()

	mock.ExpectExec(`INSERT INTO health_risk_predictions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.SavePrediction(ctx, &domain.HealthRiskPrediction{
		UserID:      userID,
		DiseaseType: domain.DiseaseCardiovascular,
		RiskScore:   0.45,
		RiskLevel:   domain.RiskHigh,
		Timeframe:   "10_years",
		Confidence:  0.7,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePrediction_MissingDiseaseType(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	_, err := repo.SavePrediction(context.Background(), &domain.HealthRiskPrediction{
		UserID: uuid.New().String(),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPredictions_FilterByDiseaseType(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"prediction_id", "user_id", "disease_type", "risk_score", "risk_level",
		"timeframe", "contributing_factors", "recommendations", "confidence", "created_at",
	}).AddRow(
		uuid.New().String(), userID, "diabetes", 0.3, "moderate",
		"5_years", `{"genetic":0.15,"lifestyle":0.2,"medical_history":0,"family_history":0.15}`,
		`["Increase physical activity"]`, 0.65, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID, "diabetes").
		WillReturnRows(rows)

	predictions, err := repo.ListPredictions(ctx, userID, domain.DiseaseDiabetes, 10)

	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, domain.DiseaseDiabetes, predictions[0].DiseaseType)
	assert.InDelta(t, 0.15, predictions[0].ContributingFactors.Genetic, 1e-9)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePatterns_Batch(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO health_deterioration_patterns`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO health_deterioration_patterns`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SavePatterns(ctx, userID, []*domain.HealthDeteriorationPattern{
		{
			PatternType:     "vital_trend",
			Severity:        domain.SeveritySevere,
			TrendDirection:  domain.TrendDeclining,
			AffectedMetrics: []string{"systolic_bp"},
			Confidence:      0.7,
			AlertLevel:      domain.AlertCritical,
		},
		{
			PatternType:     "symptom_frequency",
			Severity:        domain.SeverityModerate,
			TrendDirection:  domain.TrendStable,
			AffectedMetrics: []string{"dizziness"},
			Confidence:      0.6,
			AlertLevel:      domain.AlertInfo,
		},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePatterns_EmptyIsNoop(t *testing.T) {
	db, mock, repo := setupMockRiskAssessmentsDB(t)
	defer db.Close()

	err := repo.SavePatterns(context.Background(), uuid.New().String(), nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
