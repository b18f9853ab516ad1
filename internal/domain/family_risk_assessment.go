package domain

import (
	"time"
)

// RiskLevel 风险等级（[0,1] 连续分数的粗分桶）
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// FamilyRiskAssessment 家族遗传风险评估结果（对应 family_risk_assessments 表）
// 派生/缓存数据，键为 (user_id, condition_name)。
// 家族成员病史变更或成员删除时整体重算覆盖，不做增量更新。
type FamilyRiskAssessment struct {
	// 缓存键
	UserID        string `db:"user_id"`        // UUID, NOT NULL
	ConditionName string `db:"condition_name"` // VARCHAR(200), NOT NULL, UNIQUE(user_id, condition_name)

	// 评估结果
	FamilyRiskScore   float64   `db:"family_risk_score"`  // DOUBLE PRECISION, NOT NULL, 0-1
	AffectedRelatives int       `db:"affected_relatives"` // INTEGER, NOT NULL
	RiskLevel         RiskLevel `db:"risk_level"`         // VARCHAR(20), NOT NULL
	Recommendations   []string  `db:"recommendations"`    // JSONB 有序数组

	CalculatedAt time.Time `db:"calculated_at"` // TIMESTAMPTZ, NOT NULL
}
