package repository

import (
	"context"

	"healthvault-data/internal/domain"
)

// RiskAssessmentsRepository 风险评估持久化接口
// 覆盖三类派生数据：家族遗传评估、疾病风险预测、恶化模式
type RiskAssessmentsRepository interface {
	// ReplaceFamilyAssessments 整体替换用户的家族遗传评估（先删后插，同一事务）
	ReplaceFamilyAssessments(ctx context.Context, userID string, assessments []*domain.FamilyRiskAssessment) error
	ListFamilyAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error)
	DeleteFamilyAssessments(ctx context.Context, userID string) error

	SavePrediction(ctx context.Context, prediction *domain.HealthRiskPrediction) (string, error)
	// ListPredictions 按创建时间倒序；diseaseType为空时返回全部类型
	ListPredictions(ctx context.Context, userID string, diseaseType domain.DiseaseType, limit int) ([]*domain.HealthRiskPrediction, error)

	SavePatterns(ctx context.Context, userID string, patterns []*domain.HealthDeteriorationPattern) error
	ListPatterns(ctx context.Context, userID string, limit int) ([]*domain.HealthDeteriorationPattern, error)
}
