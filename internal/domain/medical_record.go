package domain

import (
	"time"
)

// MedicalRecord 就诊/诊断记录领域模型（对应 medical_records 表）
type MedicalRecord struct {
	// 主键
	RecordID string `db:"record_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	RecordType string     `db:"record_type"` // VARCHAR(50), NOT NULL (diagnosis/visit/procedure/lab)
	Title      string     `db:"title"`       // VARCHAR(200), NOT NULL
	Provider   string     `db:"provider"`    // VARCHAR(200), nullable（医疗机构/医生）
	RecordDate *time.Time `db:"record_date"` // DATE, nullable
	Details    string     `db:"details"`     // TEXT, nullable

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
