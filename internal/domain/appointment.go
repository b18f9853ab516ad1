package domain

import (
	"time"
)

// Appointment 预约领域模型（对应 appointments 表）
type Appointment struct {
	// 主键
	AppointmentID string `db:"appointment_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	Provider    string    `db:"provider"`     // VARCHAR(200), NOT NULL
	Purpose     string    `db:"purpose"`      // VARCHAR(200), nullable
	ScheduledAt time.Time `db:"scheduled_at"` // TIMESTAMPTZ, NOT NULL
	Status      string    `db:"status"`       // VARCHAR(50), NOT NULL, DEFAULT 'scheduled' (scheduled/completed/cancelled)
	Location    string    `db:"location"`     // VARCHAR(200), nullable
	Notes       string    `db:"notes"`        // TEXT, nullable

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
