package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"healthvault-data/internal/domain"
)

// PostgresAppointmentsRepository 预约Repository实现
type PostgresAppointmentsRepository struct {
	db *sql.DB
}

// NewPostgresAppointmentsRepository 创建预约Repository
func NewPostgresAppointmentsRepository(db *sql.DB) *PostgresAppointmentsRepository {
	return &PostgresAppointmentsRepository{db: db}
}

var _ AppointmentsRepository = (*PostgresAppointmentsRepository)(nil)

const appointmentColumns = `
	appointment_id::text,
	user_id::text,
	provider,
	COALESCE(purpose, '') as purpose,
	scheduled_at,
	status,
	COALESCE(location, '') as location,
	COALESCE(notes, '') as notes,
	created_at,
	updated_at`

var validAppointmentStatus = map[string]bool{
	"scheduled": true,
	"completed": true,
	"cancelled": true,
}

// GetAppointment 获取单条预约
func (r *PostgresAppointmentsRepository) GetAppointment(ctx context.Context, userID, appointmentID string) (*domain.Appointment, error) {
	if userID == "" || appointmentID == "" {
		return nil, fmt.Errorf("user_id and appointment_id are required")
	}

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1 AND appointment_id = $2`

	appointment, err := scanAppointment(r.db.QueryRowContext(ctx, query, userID, appointmentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("appointment not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

// ListAppointments 查询预约（按预约时间升序）
func (r *PostgresAppointmentsRepository) ListAppointments(ctx context.Context, userID, status string, from time.Time) ([]*domain.Appointment, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND scheduled_at >= $%d`, len(args))
	}
	query += ` ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*domain.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return appointments, nil
}

// CreateAppointment 创建预约
func (r *PostgresAppointmentsRepository) CreateAppointment(ctx context.Context, userID string, appointment *domain.Appointment) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	if appointment == nil || appointment.Provider == "" {
		return "", fmt.Errorf("provider is required")
	}
	if appointment.ScheduledAt.IsZero() {
		return "", fmt.Errorf("scheduled_at is required")
	}

	status := appointment.Status
	if status == "" {
		status = "scheduled"
	}
	if !validAppointmentStatus[status] {
		return "", fmt.Errorf("invalid status: %s", status)
	}

	appointmentID := appointment.AppointmentID
	if appointmentID == "" {
		appointmentID = uuid.New().String()
	}

	var purposeArg any = nil
	if appointment.Purpose != "" {
		purposeArg = appointment.Purpose
	}
	var locationArg any = nil
	if appointment.Location != "" {
		locationArg = appointment.Location
	}
	var notesArg any = nil
	if appointment.Notes != "" {
		notesArg = appointment.Notes
	}

	query := `
		INSERT INTO appointments (
			appointment_id, user_id, provider, purpose, scheduled_at,
			status, location, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query,
		appointmentID, userID, appointment.Provider, purposeArg,
		appointment.ScheduledAt, status, locationArg, notesArg,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create appointment: %w", err)
	}
	return appointmentID, nil
}

// UpdateAppointment 更新预约
func (r *PostgresAppointmentsRepository) UpdateAppointment(ctx context.Context, userID, appointmentID string, appointment *domain.Appointment) error {
	if userID == "" || appointmentID == "" {
		return fmt.Errorf("user_id and appointment_id are required")
	}
	if appointment == nil || appointment.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if appointment.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if appointment.Status != "" && !validAppointmentStatus[appointment.Status] {
		return fmt.Errorf("invalid status: %s", appointment.Status)
	}

	status := appointment.Status
	if status == "" {
		status = "scheduled"
	}

	var purposeArg any = nil
	if appointment.Purpose != "" {
		purposeArg = appointment.Purpose
	}
	var locationArg any = nil
	if appointment.Location != "" {
		locationArg = appointment.Location
	}
	var notesArg any = nil
	if appointment.Notes != "" {
		notesArg = appointment.Notes
	}

	query := `
		UPDATE appointments SET
			provider = $3,
			purpose = $4,
			scheduled_at = $5,
			status = $6,
			location = $7,
			notes = $8,
			updated_at = NOW()
		WHERE user_id = $1 AND appointment_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		userID, appointmentID, appointment.Provider, purposeArg,
		appointment.ScheduledAt, status, locationArg, notesArg,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

// DeleteAppointment 删除预约
func (r *PostgresAppointmentsRepository) DeleteAppointment(ctx context.Context, userID, appointmentID string) error {
	if userID == "" || appointmentID == "" {
		return fmt.Errorf("user_id and appointment_id are required")
	}
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE user_id = $1 AND appointment_id = $2`,
		userID, appointmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func scanAppointment(row interface{ Scan(...any) error }) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := row.Scan(
		&appointment.AppointmentID,
		&appointment.UserID,
		&appointment.Provider,
		&appointment.Purpose,
		&appointment.ScheduledAt,
		&appointment.Status,
		&appointment.Location,
		&appointment.Notes,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}
