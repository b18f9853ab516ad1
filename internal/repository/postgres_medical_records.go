package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresMedicalRecordsRepository 就诊记录Repository实现
type PostgresMedicalRecordsRepository struct {
	db *sql.DB
}

// NewPostgresMedicalRecordsRepository 创建就诊记录Repository
func NewPostgresMedicalRecordsRepository(db *sql.DB) *PostgresMedicalRecordsRepository {
	return &PostgresMedicalRecordsRepository{db: db}
}

var _ MedicalRecordsRepository = (*PostgresMedicalRecordsRepository)(nil)

const medicalRecordColumns = `
	record_id::text,
	user_id::text,
	record_type,
	title,
	COALESCE(provider, '') as provider,
	record_date,
	COALESCE(details, '') as details,
	created_at,
	updated_at`

// GetRecord 获取单条就诊记录
func (r *PostgresMedicalRecordsRepository) GetRecord(ctx context.Context, userID, recordID string) (*domain.MedicalRecord, error) {
	if userID == "" || recordID == "" {
		return nil, fmt.Errorf("user_id and record_id are required")
	}

	query := `SELECT ` + medicalRecordColumns + `
		FROM medical_records
		WHERE user_id = $1 AND record_id = $2`

	record, err := scanMedicalRecord(r.db.QueryRowContext(ctx, query, userID, recordID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("medical record not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return record, nil
}

// ListRecords 分页查询就诊记录
func (r *PostgresMedicalRecordsRepository) ListRecords(ctx context.Context, userID, recordType string, page, pageSize int) ([]*domain.MedicalRecord, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("user_id is required")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	where := `WHERE user_id = $1`
	args := []any{userID}
	if recordType != "" {
		where += ` AND record_type = $2`
		args = append(args, recordType)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM medical_records ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count medical records: %w", err)
	}

	query := `SELECT ` + medicalRecordColumns + `
		FROM medical_records ` + where + `
		ORDER BY record_date DESC NULLS LAST, created_at DESC
		` + fmt.Sprintf("LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list medical records: %w", err)
	}
	defer rows.Close()

	var records []*domain.MedicalRecord
	for rows.Next() {
		record, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan medical record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate medical records: %w", err)
	}
	return records, total, nil
}

// CreateRecord 创建就诊记录
func (r *PostgresMedicalRecordsRepository) CreateRecord(ctx context.Context, userID string, record *domain.MedicalRecord) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if record == nil || record.RecordType == "" || record.Title == "" {
		return "", fmt.Errorf("record_type and title are required")
	}

	recordID := record.RecordID
	if recordID == "" {
		recordID = uuid.New().String()
	}

	var providerArg any = nil
	if record.Provider != "" {
		providerArg = record.Provider
	}
	var detailsArg any = nil
	if record.Details != "" {
		detailsArg = record.Details
	}

	query := `
		INSERT INTO medical_records (
			record_id, user_id, record_type, title, provider,
			record_date, details, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		recordID, userID, record.RecordType, record.Title,
		providerArg, record.RecordDate, detailsArg,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create medical record: %w", err)
	}
	return recordID, nil
}

// UpdateRecord 更新就诊记录
func (r *PostgresMedicalRecordsRepository) UpdateRecord(ctx context.Context, userID, recordID string, record *domain.MedicalRecord) error {
	if userID == "" || recordID == "" {
		return fmt.Errorf("user_id and record_id are required")
	}
	if record == nil || record.RecordType == "" || record.Title == "" {
		return fmt.Errorf("record_type and title are required")
	}

	var providerArg any = nil
	if record.Provider != "" {
		providerArg = record.Provider
	}
	var detailsArg any = nil
	if record.Details != "" {
		detailsArg = record.Details
	}

	query := `
		UPDATE medical_records SET
			record_type = $3,
			title = $4,
			provider = $5,
			record_date = $6,
			details = $7,
			updated_at = NOW()
		WHERE user_id = $1 AND record_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		userID, recordID, record.RecordType, record.Title,
		providerArg, record.RecordDate, detailsArg,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("medical record not found")
	}
	return nil
}

// DeleteRecord 删除就诊记录
func (r *PostgresMedicalRecordsRepository) DeleteRecord(ctx context.Context, userID, recordID string) error {
	if userID == "" || recordID == "" {
		return fmt.Errorf("user_id and record_id are required")
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM medical_records WHERE user_id = $1 AND record_id = $2`,
		userID, recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("medical record not found")
	}
	return nil
}

func scanMedicalRecord(row interface{ Scan(...any) error }) (*domain.MedicalRecord, error) {
	var record domain.MedicalRecord
	var recordDate sql.NullTime

	err := row.Scan(
		&record.RecordID,
		&record.UserID,
		&record.RecordType,
		&record.Title,
		&record.Provider,
		&recordDate,
		&record.Details,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recordDate.Valid {
		record.RecordDate = &recordDate.Time
	}
	return &record, nil
}
