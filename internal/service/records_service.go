package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/repository"
)

// RecordsService 健康档案CRUD服务接口（就诊记录/用药/预约）
type RecordsService interface {
	// 就诊记录
	GetRecord(ctx context.Context, userID, recordID string) (*domain.MedicalRecord, error)
	ListRecords(ctx context.Context, userID, recordType string, page, pageSize int) ([]*domain.MedicalRecord, int, error)
	CreateRecord(ctx context.Context, userID string, record *domain.MedicalRecord) (string, error)
	UpdateRecord(ctx context.Context, userID, recordID string, record *domain.MedicalRecord) error
	DeleteRecord(ctx context.Context, userID, recordID string) error

	// 用药记录
	GetMedication(ctx context.Context, userID, medicationID string) (*domain.Medication, error)
	ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error)
	CreateMedication(ctx context.Context, userID string, medication *domain.Medication) (string, error)
	UpdateMedication(ctx context.Context, userID, medicationID string, medication *domain.Medication) error
	DeleteMedication(ctx context.Context, userID, medicationID string) error

	// 预约
	GetAppointment(ctx context.Context, userID, appointmentID string) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, userID, status string, from time.Time) ([]*domain.Appointment, error)
	CreateAppointment(ctx context.Context, userID string, appointment *domain.Appointment) (string, error)
	UpdateAppointment(ctx context.Context, userID, appointmentID string, appointment *domain.Appointment) error
	DeleteAppointment(ctx context.Context, userID, appointmentID string) error
}

// recordsService 实现
// 薄封装：校验在Repository层，此处只加日志
type recordsService struct {
	recordsRepo      repository.MedicalRecordsRepository
	medicationsRepo  repository.MedicationsRepository
	appointmentsRepo repository.AppointmentsRepository
	logger           *zap.Logger
}

// NewRecordsService 创建 RecordsService 实例
func NewRecordsService(
	recordsRepo repository.MedicalRecordsRepository,
	medicationsRepo repository.MedicationsRepository,
	appointmentsRepo repository.AppointmentsRepository,
	logger *zap.Logger,
) RecordsService {
	return &recordsService{
		recordsRepo:      recordsRepo,
		medicationsRepo:  medicationsRepo,
		appointmentsRepo: appointmentsRepo,
		logger:           logger,
	}
}

func (s *recordsService) GetRecord(ctx context.Context, userID, recordID string) (*domain.MedicalRecord, error) {
	return s.recordsRepo.GetRecord(ctx, userID, recordID)
}

func (s *recordsService) ListRecords(ctx context.Context, userID, recordType string, page, pageSize int) ([]*domain.MedicalRecord, int, error) {
	return s.recordsRepo.ListRecords(ctx, userID, recordType, page, pageSize)
}

func (s *recordsService) CreateRecord(ctx context.Context, userID string, record *domain.MedicalRecord) (string, error) {
	recordID, err := s.recordsRepo.CreateRecord(ctx, userID, record)
	if err != nil {
		return "", err
	}
	s.logger.Info("Medical record created",
		zap.String("user_id", userID), zap.String("record_id", recordID))
	return recordID, nil
}

func (s *recordsService) UpdateRecord(ctx context.Context, userID, recordID string, record *domain.MedicalRecord) error {
	return s.recordsRepo.UpdateRecord(ctx, userID, recordID, record)
}

func (s *recordsService) DeleteRecord(ctx context.Context, userID, recordID string) error {
	return s.recordsRepo.DeleteRecord(ctx, userID, recordID)
}

func (s *recordsService) GetMedication(ctx context.Context, userID, medicationID string) (*domain.Medication, error) {
	return s.medicationsRepo.GetMedication(ctx, userID, medicationID)
}

func (s *recordsService) ListMedications(ctx context.Context, userID string, activeOnly bool) ([]*domain.Medication, error) {
	return s.medicationsRepo.ListMedications(ctx, userID, activeOnly)
}

func (s *recordsService) CreateMedication(ctx context.Context, userID string, medication *domain.Medication) (string, error) {
	medicationID, err := s.medicationsRepo.CreateMedication(ctx, userID, medication)
	if err != nil {
		return "", err
	}
	s.logger.Info("Medication created",
		zap.String("user_id", userID), zap.String("medication_id", medicationID))
	return medicationID, nil
}

func (s *recordsService) UpdateMedication(ctx context.Context, userID, medicationID string, medication *domain.Medication) error {
	return s.medicationsRepo.UpdateMedication(ctx, userID, medicationID, medication)
}

func (s *recordsService) DeleteMedication(ctx context.Context, userID, medicationID string) error {
	return s.medicationsRepo.DeleteMedication(ctx, userID, medicationID)
}

func (s *recordsService) GetAppointment(ctx context.Context, userID, appointmentID string) (*domain.Appointment, error) {
	return s.appointmentsRepo.GetAppointment(ctx, userID, appointmentID)
}

func (s *recordsService) ListAppointments(ctx context.Context, userID, status string, from time.Time) ([]*domain.Appointment, error) {
	return s.appointmentsRepo.ListAppointments(ctx, userID, status, from)
}

func (s *recordsService) CreateAppointment(ctx context.Context, userID string, appointment *domain.Appointment) (string, error) {
	appointmentID, err := s.appointmentsRepo.CreateAppointment(ctx, userID, appointment)
	if err != nil {
		return "", err
	}
	s.logger.Info("Appointment created",
		zap.String("user_id", userID), zap.String("appointment_id", appointmentID))
	return appointmentID, nil
}

func (s *recordsService) UpdateAppointment(ctx context.Context, userID, appointmentID string, appointment *domain.Appointment) error {
	return s.appointmentsRepo.UpdateAppointment(ctx, userID, appointmentID, appointment)
}

func (s *recordsService) DeleteAppointment(ctx context.Context, userID, appointmentID string) error {
	return s.appointmentsRepo.DeleteAppointment(ctx, userID, appointmentID)
}
