package repository

import (
	"context"
	"time"

	"healthvault-data/internal/domain"
)

// AppointmentsRepository 预约Repository接口
type AppointmentsRepository interface {
	GetAppointment(ctx context.Context, userID, appointmentID string) (*domain.Appointment, error)
	// ListAppointments status为空返回全部；from非零时仅返回该时刻之后的预约
	ListAppointments(ctx context.Context, userID, status string, from time.Time) ([]*domain.Appointment, error)
	CreateAppointment(ctx context.Context, userID string, appointment *domain.Appointment) (string, error)
	UpdateAppointment(ctx context.Context, userID, appointmentID string, appointment *domain.Appointment) error
	DeleteAppointment(ctx context.Context, userID, appointmentID string) error
}
