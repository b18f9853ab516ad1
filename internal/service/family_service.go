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
	"healthvault-data/internal/store"
)

// 家族树缓存TTL；成员变更时主动失效，TTL只是兜底
const familyTreeCacheTTL = 10 * time.Minute

// FamilyService 家族病史管理服务接口
type FamilyService interface {
	// 成员管理
	ListMembers(ctx context.Context, userID string) ([]*domain.FamilyMember, error)
	GetMember(ctx context.Context, userID, memberID string) (*domain.FamilyMember, error)
	CreateMember(ctx context.Context, userID string, member *domain.FamilyMember) (string, error)
	UpdateMember(ctx context.Context, userID, memberID string, member *domain.FamilyMember) error
	DeleteMember(ctx context.Context, userID, memberID string) error

	// 家族树
	GetFamilyTree(ctx context.Context, userID string) ([]*analytics.FamilyTreeNode, error)

	// 遗传风险评估
	GetRiskAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error)
	RecalculateAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error)
}

// familyService 实现
type familyService struct {
	membersRepo     repository.FamilyMembersRepository
	conditionsRepo  repository.GeneticConditionsRepository
	assessmentsRepo repository.RiskAssessmentsRepository
	kv              store.KV
	logger          *zap.Logger
}

// NewFamilyService 创建 FamilyService 实例
// kv 可为 nil（无 Redis 时退化为每次现算）
func NewFamilyService(
	membersRepo repository.FamilyMembersRepository,
	conditionsRepo repository.GeneticConditionsRepository,
	assessmentsRepo repository.RiskAssessmentsRepository,
	kv store.KV,
	logger *zap.Logger,
) FamilyService {
	return &familyService{
		membersRepo:     membersRepo,
		conditionsRepo:  conditionsRepo,
		assessmentsRepo: assessmentsRepo,
		kv:              kv,
		logger:          logger,
	}
}

func familyTreeCacheKey(userID string) string {
	return "family:tree:" + userID
}

// ListMembers 查询家族成员列表
func (s *familyService) ListMembers(ctx context.Context, userID string) ([]*domain.FamilyMember, error) {
	return s.membersRepo.ListMembers(ctx, userID)
}

// GetMember 获取单个家族成员
func (s *familyService) GetMember(ctx context.Context, userID, memberID string) (*domain.FamilyMember, error) {
	return s.membersRepo.GetMember(ctx, userID, memberID)
}

// CreateMember 创建家族成员并触发遗传风险重算
func (s *familyService) CreateMember(ctx context.Context, userID string, member *domain.FamilyMember) (string, error) {
	memberID, err := s.membersRepo.CreateMember(ctx, userID, member)
	if err != nil {
		return "", err
	}

	s.afterMutation(ctx, userID)
	return memberID, nil
}

// UpdateMember 更新家族成员并触发遗传风险重算
func (s *familyService) UpdateMember(ctx context.Context, userID, memberID string, member *domain.FamilyMember) error {
	if err := s.membersRepo.UpdateMember(ctx, userID, memberID, member); err != nil {
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

// DeleteMember 删除家族成员并触发遗传风险重算
func (s *familyService) DeleteMember(ctx context.Context, userID, memberID string) error {
	if err := s.membersRepo.DeleteMember(ctx, userID, memberID); err != nil {
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

// GetFamilyTree 获取家族树（Redis 缓存优先）
func (s *familyService) GetFamilyTree(ctx context.Context, userID string) ([]*analytics.FamilyTreeNode, error) {
	if s.kv != nil {
		cached, err := s.kv.Get(ctx, familyTreeCacheKey(userID))
		if err == nil {
			var tree []*analytics.FamilyTreeNode
			if err := json.Unmarshal([]byte(cached), &tree); err == nil {
				return tree, nil
			}
			// 缓存内容损坏：忽略并重建
			s.logger.Warn("Corrupt family tree cache, rebuilding",
				zap.String("user_id", userID))
		} else if err != store.ErrMiss {
			// Redis 故障不阻塞读取
			s.logger.Warn("Family tree cache read failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	members, err := s.membersRepo.ListMembers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family members: %w", err)
	}

	tree := analytics.BuildFamilyTree(members)

	if s.kv != nil {
		if data, err := json.Marshal(tree); err == nil {
			if err := s.kv.Set(ctx, familyTreeCacheKey(userID), string(data), familyTreeCacheTTL); err != nil {
				s.logger.Warn("Family tree cache write failed",
					zap.String("user_id", userID), zap.Error(err))
			}
		}
	}
	return tree, nil
}

// GetRiskAssessments 读取已持久化的遗传风险评估
// 为空时现算一轮（首次访问或成员从未变更过）
func (s *familyService) GetRiskAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error) {
	assessments, err := s.assessmentsRepo.ListFamilyAssessments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(assessments) > 0 {
		return assessments, nil
	}
	return s.RecalculateAssessments(ctx, userID)
}

// RecalculateAssessments 全量重算家族遗传风险并持久化
func (s *familyService) RecalculateAssessments(ctx context.Context, userID string) ([]*domain.FamilyRiskAssessment, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	members, err := s.membersRepo.ListMembers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family members: %w", err)
	}

	catalog, err := s.conditionsRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load genetic catalog: %w", err)
	}

	risks := analytics.AssessAllConditions(members, catalog)
	now := time.Now()

	assessments := make([]*domain.FamilyRiskAssessment, 0, len(risks))
	for _, r := range risks {
		assessments = append(assessments, &domain.FamilyRiskAssessment{
			UserID:            userID,
			ConditionName:     r.ConditionName,
			FamilyRiskScore:   r.Score,
			AffectedRelatives: r.AffectedRelatives,
			RiskLevel:         r.RiskLevel,
			Recommendations:   r.Recommendations,
			CalculatedAt:      now,
		})
	}

	if err := s.assessmentsRepo.ReplaceFamilyAssessments(ctx, userID, assessments); err != nil {
		return nil, fmt.Errorf("failed to persist assessments: %w", err)
	}

	s.logger.Info("Recalculated family risk assessments",
		zap.String("user_id", userID),
		zap.Int("member_count", len(members)),
		zap.Int("assessment_count", len(assessments)),
	)
	return assessments, nil
}

// afterMutation 成员变更后的统一处理：缓存失效 + 评估重算
// 重算失败只记日志，不影响写入主流程
func (s *familyService) afterMutation(ctx context.Context, userID string) {
	if s.kv != nil {
		if err := s.kv.Delete(ctx, familyTreeCacheKey(userID)); err != nil {
			s.logger.Warn("Family tree cache invalidation failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	if _, err := s.RecalculateAssessments(ctx, userID); err != nil {
		s.logger.Error("Risk assessment recalculation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
