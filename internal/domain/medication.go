package domain

import (
	"time"
)

// Medication 用药记录领域模型（对应 medications 表）
type Medication struct {
	// 主键
	MedicationID string `db:"medication_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	Name      string     `db:"name"`       // VARCHAR(200), NOT NULL
	Dosage    string     `db:"dosage"`     // VARCHAR(100), nullable（如 "10mg"）
	Frequency string     `db:"frequency"`  // VARCHAR(100), nullable（如 "twice daily"）
	StartDate *time.Time `db:"start_date"` // DATE, nullable
	EndDate   *time.Time `db:"end_date"`   // DATE, nullable（IsActive=false 时通常有值）
	IsActive  bool       `db:"is_active"`  // BOOLEAN, NOT NULL, DEFAULT TRUE
	Notes     string     `db:"notes"`      // TEXT, nullable

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
