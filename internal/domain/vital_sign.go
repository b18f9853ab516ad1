package domain

import (
	"encoding/json"
	"time"
)

// VitalSignRecord 每日体征观察记录（对应 vital_sign_records 表）
// 趋势检测的 HealthObservation 由此行数据组装
type VitalSignRecord struct {
	// 主键
	ObservationID string `db:"observation_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	// 观察日期（同一用户每天一条，UNIQUE(user_id, observed_on)）
	ObservedOn time.Time `db:"observed_on"` // DATE, NOT NULL

	// 体征值（JSONB：体征名 → 数值，如 {"systolic_bp":128,"heart_rate":72}）
	Vitals json.RawMessage `db:"vitals"` // JSONB, NOT NULL, DEFAULT '{}'

	// 症状（JSONB 字符串数组）
	Symptoms []string `db:"symptoms"` // JSONB, NOT NULL, DEFAULT '[]'

	// 总体状态评分 1-5
	OverallCondition int `db:"overall_condition"` // INTEGER, NOT NULL

	// 数据来源（manual/device）
	Source string `db:"source"` // VARCHAR(50), NOT NULL, DEFAULT 'manual'

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
}
