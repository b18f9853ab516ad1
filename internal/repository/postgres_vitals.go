package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresVitalsRepository 体征观察Repository实现
type PostgresVitalsRepository struct {
	db *sql.DB
}

// NewPostgresVitalsRepository 创建体征观察Repository
func NewPostgresVitalsRepository(db *sql.DB) *PostgresVitalsRepository {
	return &PostgresVitalsRepository{db: db}
}

var _ VitalsRepository = (*PostgresVitalsRepository)(nil)

// UpsertObservation 按 (user_id, observed_on) 幂等写入
// 同一天重复上报（手动补录或设备重传）覆盖旧值
func (r *PostgresVitalsRepository) UpsertObservation(ctx context.Context, userID string, record *domain.VitalSignRecord) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if record == nil {
		return "", fmt.Errorf("record is required")
	}
	if record.ObservedOn.IsZero() {
		return "", fmt.Errorf("observed_on is required")
	}
	if record.OverallCondition < 1 || record.OverallCondition > 5 {
		return "", fmt.Errorf("overall_condition must be between 1 and 5")
	}

	observationID := record.ObservationID
	if observationID == "" {
		observationID = uuid.New().String()
	}

	vitals := record.Vitals
	if len(vitals) == 0 {
		vitals = json.RawMessage(`{}`)
	}
	symptomsJSON, err := json.Marshal(stringsOrEmpty(record.Symptoms))
	if err != nil {
		return "", fmt.Errorf("failed to marshal symptoms: %w", err)
	}

	source := record.Source
	if source == "" {
		source = "manual"
	}

	query := `
		INSERT INTO vital_sign_records (
			observation_id, user_id, observed_on, vitals, symptoms,
			overall_condition, source, created_at
		) VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, NOW())
		ON CONFLICT (user_id, observed_on) DO UPDATE SET
			vitals = EXCLUDED.vitals,
			symptoms = EXCLUDED.symptoms,
			overall_condition = EXCLUDED.overall_condition,
			source = EXCLUDED.source
		RETURNING observation_id::text`

	var savedID string
	err = r.db.QueryRowContext(ctx, query,
		observationID,
		userID,
		record.ObservedOn,
		string(vitals),
		string(symptomsJSON),
		record.OverallCondition,
		source,
	).Scan(&savedID)
	if err != nil {
		return "", fmt.Errorf("failed to upsert observation: %w", err)
	}
	return savedID, nil
}

// ListObservations 按观察日期升序查询
func (r *PostgresVitalsRepository) ListObservations(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.VitalSignRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 || limit > 1000 {
		limit = 365
	}

	query := `
		SELECT observation_id::text, user_id::text, observed_on,
		       COALESCE(vitals, '{}'::jsonb)::text,
		       COALESCE(symptoms, '[]'::jsonb)::text,
		       overall_condition, source, created_at
		FROM vital_sign_records
		WHERE user_id = $1`
	args := []any{userID}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(` AND observed_on >= $%d`, len(args))
	}
	query += fmt.Sprintf(` ORDER BY observed_on ASC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	var records []*domain.VitalSignRecord
	for rows.Next() {
		record, err := scanVitalSignRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return records, nil
}

// DeleteObservation 删除指定日期的观察记录
func (r *PostgresVitalsRepository) DeleteObservation(ctx context.Context, userID string, observedOn time.Time) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if observedOn.IsZero() {
		return fmt.Errorf("observed_on is required")
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM vital_sign_records WHERE user_id = $1 AND observed_on = $2`,
		userID, observedOn,
	)
	if err != nil {
		return fmt.Errorf("failed to delete observation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("observation not found")
	}
	return nil
}

func scanVitalSignRecord(row interface{ Scan(...any) error }) (*domain.VitalSignRecord, error) {
	var record domain.VitalSignRecord
	var vitalsRaw, symptomsRaw string

	err := row.Scan(
		&record.ObservationID,
		&record.UserID,
		&record.ObservedOn,
		&vitalsRaw,
		&symptomsRaw,
		&record.OverallCondition,
		&record.Source,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Vitals = json.RawMessage(vitalsRaw)
	if err := json.Unmarshal([]byte(symptomsRaw), &record.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symptoms: %w", err)
	}
	return &record, nil
}
