package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresRiskAssessmentsRepository 风险评估Repository实现
type PostgresRiskAssessmentsRepository struct {
	db *sql.DB
}

// NewPostgresRiskAssessmentsRepository 创建风险评估Repository
func NewPostgresRiskAssessmentsRepository(db *sql.DB) *PostgresRiskAssessmentsRepository {
	return &PostgresRiskAssessmentsRepository{db: db}
}

var _ RiskAssessmentsRepository = (*PostgresRiskAssessmentsRepository)(nil)

// ReplaceFamilyAssessments 整体替换用户的家族遗传评估
// 家族树变更后全量重算，旧评估一律作废
func (r *PostgresRiskAssessmentsRepository) ReplaceFamilyAssessments(ctx context.Context, userID string, assessments []*domain.FamilyRiskAssessment) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM family_risk_assessments WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear family assessments: %w", err)
	}

	insert := `
		INSERT INTO family_risk_assessments (
			user_id, condition_name, family_risk_score,
			affected_relatives, risk_level, recommendations, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`

	for _, a := range assessments {
		if a == nil || a.ConditionName == "" {
			return fmt.Errorf("assessment condition_name is required")
		}
		recsJSON, err := json.Marshal(stringsOrEmpty(a.Recommendations))
		if err != nil {
			return fmt.Errorf("failed to marshal recommendations: %w", err)
		}
		_, err = tx.ExecContext(ctx, insert,
			userID,
			a.ConditionName,
			a.FamilyRiskScore,
			a.AffectedRelatives,
			string(a.RiskLevel),
			string(recsJSON),
			a.CalculatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert family assessment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit family assessments: %w", err)
	}
	return nil
}

// ListFamilyAssessments 查询用户的家族遗传评估（按分数倒序，名称升序打破并列）
func (r *PostgresRiskAssessmentsRepository) ListFamilyAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT user_id::text, condition_name, family_risk_score,
		       affected_relatives, risk_level,
		       COALESCE(recommendations, '[]'::jsonb)::text, calculated_at
		FROM family_risk_assessments
		WHERE user_id = $1
		ORDER BY family_risk_score DESC, condition_name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*domain.FamilyRiskAssessment
	for rows.Next() {
		var a domain.FamilyRiskAssessment
		var recsRaw string
		err := rows.Scan(
			&a.UserID,
			&a.ConditionName,
			&a.FamilyRiskScore,
			&a.AffectedRelatives,
			&a.RiskLevel,
			&recsRaw,
			&a.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(recsRaw), &a.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
		assessments = append(assessments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family assessments: %w", err)
	}
	return assessments, nil
}

// DeleteFamilyAssessments 删除用户的全部家族遗传评估
func (r *PostgresRiskAssessmentsRepository) DeleteFamilyAssessments(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM family_risk_assessments WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete family assessments: %w", err)
	}
	return nil
}

// SavePrediction 保存疾病风险预测（历史追加，不覆盖）
func (r *PostgresRiskAssessmentsRepository) SavePrediction(ctx context.Context, prediction *domain.HealthRiskPrediction) (string, error) {
	if prediction == nil {
		return "", fmt.Errorf("prediction is required")
	}
	if prediction.UserID == "" || prediction.DiseaseType == "" {
		return "", fmt.Errorf("user_id and disease_type are required")
	}

	predictionID := prediction.PredictionID
	if predictionID == "" {
		predictionID = uuid.New().String()
	}

	factorsJSON, err := json.Marshal(prediction.ContributingFactors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal contributing factors: %w", err)
	}
	recsJSON, err := json.Marshal(stringsOrEmpty(prediction.Recommendations))
	if err != nil {
		return "", fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO health_risk_predictions (
			prediction_id, user_id, disease_type, risk_score, risk_level,
			timeframe, contributing_factors, recommendations, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, NOW())`

	_, err = r.db.ExecContext(ctx, query,
		predictionID,
		prediction.UserID,
		string(prediction.DiseaseType),
		prediction.RiskScore,
		string(prediction.RiskLevel),
		prediction.Timeframe,
		string(factorsJSON),
		string(recsJSON),
		prediction.Confidence,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save prediction: %w", err)
	}
	return predictionID, nil
}

// ListPredictions 查询历史预测（按创建时间倒序）
func (r *PostgresRiskAssessmentsRepository) ListPredictions(ctx context.Context, userID string, diseaseType domain.DiseaseType, limit int) ([]*domain.HealthRiskPrediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT prediction_id::text, user_id::text, disease_type, risk_score, risk_level,
		       COALESCE(timeframe, ''), contributing_factors::text,
		       COALESCE(recommendations, '[]'::jsonb)::text, confidence, created_at
		FROM health_risk_predictions
		WHERE user_id = $1`
	args := []any{userID}
	if diseaseType != "" {
		query += ` AND disease_type = $2`
		args = append(args, string(diseaseType))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*domain.HealthRiskPrediction
	for rows.Next() {
		var p domain.HealthRiskPrediction
		var factorsRaw, recsRaw string
		err := rows.Scan(
			&p.PredictionID,
			&p.UserID,
			&p.DiseaseType,
			&p.RiskScore,
			&p.RiskLevel,
			&p.Timeframe,
			&factorsRaw,
			&recsRaw,
			&p.Confidence,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(factorsRaw), &p.ContributingFactors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contributing factors: %w", err)
		}
		if err := json.Unmarshal([]byte(recsRaw), &p.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
		predictions = append(predictions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

// SavePatterns 批量保存恶化模式（一次检测的结果一批写入）
func (r *PostgresRiskAssessmentsRepository) SavePatterns(ctx context.Context, userID string, patterns []*domain.HealthDeteriorationPattern) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(patterns) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO health_deterioration_patterns (
			pattern_id, user_id, pattern_type, severity, trend_direction,
			affected_metrics, timeframe, confidence, alert_level, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, NOW())`

	for _, p := range patterns {
		if p == nil || p.PatternType == "" {
			return fmt.Errorf("pattern_type is required")
		}
		patternID := p.PatternID
		if patternID == "" {
			patternID = uuid.New().String()
		}
		metricsJSON, err := json.Marshal(stringsOrEmpty(p.AffectedMetrics))
		if err != nil {
			return fmt.Errorf("failed to marshal affected metrics: %w", err)
		}
		_, err = tx.ExecContext(ctx, insert,
			patternID,
			userID,
			p.PatternType,
			string(p.Severity),
			string(p.TrendDirection),
			string(metricsJSON),
			p.Timeframe,
			p.Confidence,
			string(p.AlertLevel),
		)
		if err != nil {
			return fmt.Errorf("failed to save pattern: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patterns: %w", err)
	}
	return nil
}

// ListPatterns 查询恶化模式历史（按检测时间倒序）
func (r *PostgresRiskAssessmentsRepository) ListPatterns(ctx context.Context, userID string, limit int) ([]*domain.HealthDeteriorationPattern, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT pattern_id::text, user_id::text, pattern_type, severity, trend_direction,
		       COALESCE(affected_metrics, '[]'::jsonb)::text,
		       COALESCE(timeframe, ''), confidence, alert_level, detected_at
		FROM health_deterioration_patterns
		WHERE user_id = $1
		ORDER BY detected_at DESC
		LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*domain.HealthDeteriorationPattern
	for rows.Next() {
		var p domain.HealthDeteriorationPattern
		var metricsRaw string
		err := rows.Scan(
			&p.PatternID,
			&p.UserID,
			&p.PatternType,
			&p.Severity,
			&p.TrendDirection,
			&metricsRaw,
			&p.Timeframe,
			&p.Confidence,
			&p.AlertLevel,
			&p.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsRaw), &p.AffectedMetrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal affected metrics: %w", err)
		}
		patterns = append(patterns, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patterns: %w", err)
	}
	return patterns, nil
}

// stringsOrEmpty JSONB数组统一存 []，避免 null
func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
