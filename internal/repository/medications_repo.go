package repository

import (
	"context"

	"healthvault-data/internal/domain"
)

// MedicationsRepository 用药记录Repository接口
type MedicationsRepository interface {
	GetMedication(ctx context.Context, userID, medicationID string) (*domain.Medication, error)
	// ListMedications activeOnly=true 时仅返回当前用药
	ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error)
	CreateMedication(ctx context.Context, userID string, medication *domain.Medication) (string, error)
	UpdateMedication(ctx context.Context, userID, medicationID string, medication *domain.Medication) error
	DeleteMedication(ctx context.Context, userID, medicationID string) error
}
