package domain

import (
	"time"
)

// DiseaseType 预测疾病类型
type DiseaseType string

const (
	DiseaseCardiovascular DiseaseType = "cardiovascular"
	DiseaseDiabetes       DiseaseType = "diabetes"
	DiseaseDeterioration  DiseaseType = "general_deterioration"
)

// ContributingFactors 风险构成拆解（各项独立 clamp 到 0-1）
type ContributingFactors struct {
	Genetic        float64 `json:"genetic"`
	Lifestyle      float64 `json:"lifestyle"`
	MedicalHistory float64 `json:"medical_history"`
	FamilyHistory  float64 `json:"family_history"`
}

// HealthRiskPrediction 疾病风险预测结果（对应 health_risk_predictions 表）
type HealthRiskPrediction struct {
	// 主键
	PredictionID string `db:"prediction_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	DiseaseType         DiseaseType         `db:"disease_type"`         // VARCHAR(50), NOT NULL
	RiskScore           float64             `db:"risk_score"`           // DOUBLE PRECISION, NOT NULL, 0-1
	RiskLevel           RiskLevel           `db:"risk_level"`           // VARCHAR(20), NOT NULL
	Timeframe           string              `db:"timeframe"`            // VARCHAR(50)（如 "10_years"）
	ContributingFactors ContributingFactors `db:"contributing_factors"` // JSONB
	Recommendations     []string            `db:"recommendations"`      // JSONB 有序数组
	Confidence          float64             `db:"confidence"`           // DOUBLE PRECISION（每个预测器固定值）

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
}

// PatternSeverity 恶化模式严重程度
type PatternSeverity string

const (
	SeverityMild     PatternSeverity = "mild"
	SeverityModerate PatternSeverity = "moderate"
	SeveritySevere   PatternSeverity = "severe"
)

// TrendDirection 趋势方向
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// AlertLevel 告警等级
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// HealthDeteriorationPattern 健康恶化模式（对应 health_deterioration_patterns 表）
type HealthDeteriorationPattern struct {
	// 主键
	PatternID string `db:"pattern_id"` // UUID, PRIMARY KEY

	// 归属用户
	UserID string `db:"user_id"` // UUID, NOT NULL

	PatternType     string          `db:"pattern_type"`     // VARCHAR(50)（vital_trend/symptom_frequency/overall_condition）
	Severity        PatternSeverity `db:"severity"`         // VARCHAR(20), NOT NULL
	TrendDirection  TrendDirection  `db:"trend_direction"`  // VARCHAR(20), NOT NULL
	AffectedMetrics []string        `db:"affected_metrics"` // JSONB 数组
	Timeframe       string          `db:"timeframe"`        // VARCHAR(100)（描述文字）
	Confidence      float64         `db:"confidence"`       // DOUBLE PRECISION, 0-1
	AlertLevel      AlertLevel      `db:"alert_level"`      // VARCHAR(20), NOT NULL

	DetectedAt time.Time `db:"detected_at"` // TIMESTAMPTZ, NOT NULL
}

// RiskFactorCategory 风险因子分类
type RiskFactorCategory string

const (
	CategoryLifestyle     RiskFactorCategory = "lifestyle"
	CategoryMedical       RiskFactorCategory = "medical"
	CategoryGenetic       RiskFactorCategory = "genetic"
	CategoryEnvironmental RiskFactorCategory = "environmental"
)

// RiskFactor 单个风险/保护因子
type RiskFactor struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        RiskFactorCategory `json:"category"`
	Severity        string             `json:"severity"` // low/moderate/high/critical
	Impact          float64            `json:"impact"`   // 0-1
	Modifiable      bool               `json:"modifiable"`
	Description     string             `json:"description"`
	Recommendations []string           `json:"recommendations"`
	TimeToImpact    string             `json:"time_to_impact"` // immediate/short_term/long_term
}

// RiskFactorAnalysis 风险因子分析结果
type RiskFactorAnalysis struct {
	RiskFactors       []RiskFactor `json:"risk_factors"`
	ProtectiveFactors []RiskFactor `json:"protective_factors"`
	TotalRiskScore    float64      `json:"total_risk_score"` // 0-1
	PriorityActions   []string     `json:"priority_actions"` // 最多8条
	RiskTrend         string       `json:"risk_trend"`       // increasing/stable/decreasing
}
