package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/analytics"
	"healthvault-data/internal/domain"
	"healthvault-data/internal/repository"
)

// MonitoringService 健康监测服务接口
// 覆盖体征记录、恶化趋势检测、疾病风险预测和风险因子分析
type MonitoringService interface {
	// 体征观察
	RecordObservation(ctx context.Context, userID string, record *domain.VitalSignRecord) (string, error)
	ListObservations(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.VitalSignRecord, error)
	DeleteObservation(ctx context.Context, userID string, observedOn time.Time) error

	// 趋势检测：加载观察序列，检测恶化模式并持久化
	DetectDeterioration(ctx context.Context, userID string, windowDays int) ([]domain.HealthDeteriorationPattern, error)
	GetPatternHistory(ctx context.Context, userID string, limit int) ([]*domain.HealthDeteriorationPattern, error)

	// 疾病风险预测：运行全部预测器并持久化
	PredictRisks(ctx context.Context, userID string, input domain.HealthDataInput) ([]analytics.DiseasePrediction, error)
	GetPredictionHistory(ctx context.Context, userID string, diseaseType domain.DiseaseType, limit int) ([]*domain.HealthRiskPrediction, error)

	// 风险因子分析（纯计算，不持久化）
	AnalyzeRiskFactors(input domain.HealthDataInput) domain.RiskFactorAnalysis
}

// monitoringService 实现
type monitoringService struct {
	vitalsRepo      repository.VitalsRepository
	assessmentsRepo repository.RiskAssessmentsRepository
	logger          *zap.Logger
}

// NewMonitoringService 创建 MonitoringService 实例
func NewMonitoringService(
	vitalsRepo repository.VitalsRepository,
	assessmentsRepo repository.RiskAssessmentsRepository,
	logger *zap.Logger,
) MonitoringService {
	return &monitoringService{
		vitalsRepo:      vitalsRepo,
		assessmentsRepo: assessmentsRepo,
		logger:          logger,
	}
}

// RecordObservation 记录每日体征观察（同日覆盖）
func (s *monitoringService) RecordObservation(ctx context.Context, userID string, record *domain.VitalSignRecord) (string, error) {
	return s.vitalsRepo.UpsertObservation(ctx, userID, record)
}

// ListObservations 查询体征观察序列（时间正序）
func (s *monitoringService) ListObservations(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.VitalSignRecord, error) {
	return s.vitalsRepo.ListObservations(ctx, userID, since, limit)
}

// DeleteObservation 删除指定日期的观察记录
func (s *monitoringService) DeleteObservation(ctx context.Context, userID string, observedOn time.Time) error {
	return s.vitalsRepo.DeleteObservation(ctx, userID, observedOn)
}

// DetectDeterioration 在最近 windowDays 天的观察序列上检测恶化模式
// 检出的模式批量持久化后返回
func (s *monitoringService) DetectDeterioration(ctx context.Context, userID string, windowDays int) ([]domain.HealthDeteriorationPattern, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	records, err := s.vitalsRepo.ListObservations(ctx, userID, since, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	observations, err := toHealthObservations(records)
	if err != nil {
		return nil, err
	}

	patterns := analytics.DetectPatterns(observations)
	if len(patterns) > 0 {
		saved := make([]*domain.HealthDeteriorationPattern, 0, len(patterns))
		for i := range patterns {
			patterns[i].UserID = userID
			saved = append(saved, &patterns[i])
		}
		if err := s.assessmentsRepo.SavePatterns(ctx, userID, saved); err != nil {
			return nil, fmt.Errorf("failed to persist patterns: %w", err)
		}
	}

	s.logger.Info("Deterioration detection completed",
		zap.String("user_id", userID),
		zap.Int("observation_count", len(observations)),
		zap.Int("pattern_count", len(patterns)),
	)
	return patterns, nil
}

// GetPatternHistory 查询历史恶化模式
func (s *monitoringService) GetPatternHistory(ctx context.Context, userID string, limit int) ([]*domain.HealthDeteriorationPattern, error) {
	return s.assessmentsRepo.ListPatterns(ctx, userID, limit)
}

// PredictRisks 运行全部疾病预测器并持久化每项结果
func (s *monitoringService) PredictRisks(ctx context.Context, userID string, input domain.HealthDataInput) ([]analytics.DiseasePrediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	predictions := []analytics.DiseasePrediction{
		analytics.PredictCardiovascularRisk(input),
		analytics.PredictDiabetesRisk(input),
		analytics.PredictGeneralDeterioration(input),
	}

	for _, p := range predictions {
		_, err := s.assessmentsRepo.SavePrediction(ctx, &domain.HealthRiskPrediction{
			UserID:              userID,
			DiseaseType:         p.DiseaseType,
			RiskScore:           p.RiskScore,
			RiskLevel:           p.RiskLevel,
			Timeframe:           p.Timeframe,
			ContributingFactors: p.ContributingFactors,
			Recommendations:     p.Recommendations,
			Confidence:          p.Confidence,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to persist prediction: %w", err)
		}
	}

	s.logger.Info("Risk predictions completed",
		zap.String("user_id", userID),
		zap.Int("prediction_count", len(predictions)),
	)
	return predictions, nil
}

// GetPredictionHistory 查询历史疾病风险预测
func (s *monitoringService) GetPredictionHistory(ctx context.Context, userID string, diseaseType domain.DiseaseType, limit int) ([]*domain.HealthRiskPrediction, error) {
	return s.assessmentsRepo.ListPredictions(ctx, userID, diseaseType, limit)
}

// AnalyzeRiskFactors 风险因子分析（纯计算）
func (s *monitoringService) AnalyzeRiskFactors(input domain.HealthDataInput) domain.RiskFactorAnalysis {
	return analytics.AnalyzeRiskFactors(input)
}

// toHealthObservations 行数据 → 分析输入
// Vitals JSONB 解析失败视为数据损坏，整批报错
func toHealthObservations(records []*domain.VitalSignRecord) ([]domain.HealthObservation, error) {
	observations := make([]domain.HealthObservation, 0, len(records))
	for _, r := range records {
		vitals := map[string]float64{}
		if len(r.Vitals) > 0 {
			if err := json.Unmarshal(r.Vitals, &vitals); err != nil {
				return nil, fmt.Errorf("failed to parse vitals for %s: %w", r.ObservedOn.Format("2006-01-02"), err)
			}
		}
		observations = append(observations, domain.HealthObservation{
			Date:             r.ObservedOn,
			Vitals:           vitals,
			Symptoms:         r.Symptoms,
			OverallCondition: r.OverallCondition,
		})
	}
	return observations, nil
}
