package repository

import (
	"context"

	"healthvault-data/internal/domain"
)

// FamilyMembersRepository 家族成员Repository接口
// 使用强类型领域模型；Repository层只负责数据访问
type FamilyMembersRepository interface {
	GetMember(ctx context.Context, userID, memberID string) (*domain.FamilyMember, error)
	ListMembers(ctx context.Context, userID string) ([]*domain.FamilyMember, error)
	// ListMembersWithCondition 查询患有指定疾病的成员（按病史条目名称精确匹配）
	ListMembersWithCondition(ctx context.Context, userID, conditionName string) ([]*domain.FamilyMember, error)

	CreateMember(ctx context.Context, userID string, member *domain.FamilyMember) (string, error)
	UpdateMember(ctx context.Context, userID, memberID string, member *domain.FamilyMember) error
	DeleteMember(ctx context.Context, userID, memberID string) error
}
