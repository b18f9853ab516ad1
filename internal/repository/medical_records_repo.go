package repository

import (
	"context"

	"healthvault-data/internal/domain"
)

// MedicalRecordsRepository 就诊记录Repository接口
type MedicalRecordsRepository interface {
	GetRecord(ctx context.Context, userID, recordID string) (*domain.MedicalRecord, error)
	// ListRecords recordType为空时返回全部类型；分页按 record_date DESC, created_at DESC
	ListRecords(ctx context.Context, userID, recordType string, page, pageSize int) ([]*domain.MedicalRecord, int, error)
	CreateRecord(ctx context.Context, userID string, record *domain.MedicalRecord) (string, error)
	UpdateRecord(ctx context.Context, userID, recordID string, record *domain.MedicalRecord) error
	DeleteRecord(ctx context.Context, userID, recordID string) error
}
