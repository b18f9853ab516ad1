package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresMedicationsRepository 用药记录Repository实现
type PostgresMedicationsRepository struct {
	db *sql.DB
}

// NewPostgresMedicationsRepository 创建用药记录Repository
func NewPostgresMedicationsRepository(db *sql.DB) *PostgresMedicationsRepository {
	return &PostgresMedicationsRepository{db: db}
}

var _ MedicationsRepository = (*PostgresMedicationsRepository)(nil)

const medicationColumns = `
	medication_id::text,
	user_id::text,
	name,
	COALESCE(dosage, '') as dosage,
	COALESCE(frequency, '') as frequency,
	start_date,
	end_date,
	is_active,
	COALESCE(notes, '') as notes,
	created_at,
	updated_at`

// GetMedication 获取单条用药记录
func (r *PostgresMedicationsRepository) GetMedication(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
	if userID == "" || medicationID == "" {
		return nil, fmt.Errorf("user_id and medication_id are required")
	}

	query := `SELECT ` + medicationColumns + `
		FROM medications
		WHERE user_id = $1 AND medication_id = $2`

	medication, err := scanMedication(r.db.QueryRowContext(ctx, query, userID, medicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("medication not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return medication, nil
}

// ListMedications 查询用药记录（当前用药优先，其次按开始日期倒序）
func (r *PostgresMedicationsRepository) ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT ` + medicationColumns + `
		FROM medications
		WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY is_active DESC, start_date DESC NULLS LAST, name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var medications []*domain.Medication
	for rows.Next() {
		medication, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		medications = append(medications, medication)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}
	return medications, nil
}

// CreateMedication 创建用药记录
func (r *PostgresMedicationsRepository) CreateMedication(ctx context.Context, userID string, medication *domain.Medication) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if medication == nil || medication.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	if medication.StartDate != nil && medication.EndDate != nil && medication.EndDate.Before(*medication.StartDate) {
		return "", fmt.Errorf("end_date must not be before start_date")
	}

	medicationID := medication.MedicationID
	if medicationID == "" {
		medicationID = uuid.New().String()
	}

	var dosageArg any = nil
	if medication.Dosage != "" {
		dosageArg = medication.Dosage
	}
	var frequencyArg any = nil
	if medication.Frequency != "" {
		frequencyArg = medication.Frequency
	}
	var notesArg any = nil
	if medication.Notes != "" {
		notesArg = medication.Notes
	}

	query := `
		INSERT INTO medications (
			medication_id, user_id, name, dosage, frequency,
			start_date, end_date, is_active, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		medicationID, userID, medication.Name, dosageArg, frequencyArg,
		medication.StartDate, medication.EndDate, medication.IsActive, notesArg,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create medication: %w", err)
	}
	return medicationID, nil
}

// UpdateMedication 更新用药记录
func (r *PostgresMedicationsRepository) UpdateMedication(ctx context.Context, userID, medicationID string, medication *domain.Medication) error {
	if userID == "" || medicationID == "" {
		return fmt.Errorf("user_id and medication_id are required")
	}
	if medication == nil || medication.Name == "" {
		return fmt.Errorf("name is required")
	}
	if medication.StartDate != nil && medication.EndDate != nil && medication.EndDate.Before(*medication.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}

	var dosageArg any = nil
	if medication.Dosage != "" {
		dosageArg = medication.Dosage
	}
	var frequencyArg any = nil
	if medication.Frequency != "" {
		frequencyArg = medication.Frequency
	}
	var notesArg any = nil
	if medication.Notes != "" {
		notesArg = medication.Notes
	}

	query := `
		UPDATE medications SET
			name = $3,
			dosage = $4,
			frequency = $5,
			start_date = $6,
			end_date = $7,
			is_active = $8,
			notes = $9,
			updated_at = NOW()
		WHERE user_id = $1 AND medication_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		userID, medicationID, medication.Name, dosageArg, frequencyArg,
		medication.StartDate, medication.EndDate, medication.IsActive, notesArg,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("medication not found")
	}
	return nil
}

// DeleteMedication 删除用药记录
func (r *PostgresMedicationsRepository) DeleteMedication(ctx context.Context, userID, medicationID string) error {
	if userID == "" || medicationID == "" {
		return fmt.Errorf("user_id and medication_id are required")
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM medications WHERE user_id = $1 AND medication_id = $2`,
		userID, medicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("medication not found")
	}
	return nil
}

func scanMedication(row interface{ Scan(...any) error }) (*domain.Medication, error) {
	var medication domain.Medication
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&medication.MedicationID,
		&medication.UserID,
		&medication.Name,
		&medication.Dosage,
		&medication.Frequency,
		&startDate,
		&endDate,
		&medication.IsActive,
		&medication.Notes,
		&medication.CreatedAt,
		&medication.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		medication.StartDate = &startDate.Time
	}
	if endDate.Valid {
		medication.EndDate = &endDate.Time
	}
	return &medication, nil
}
