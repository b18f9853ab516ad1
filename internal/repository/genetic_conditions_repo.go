package repository

import (
	"context"

	"healthvault-data/internal/domain"
)

// GeneticConditionsRepository 遗传疾病目录Repository接口
// 目录为只读参考数据，由种子/同步流程写入
type GeneticConditionsRepository interface {
	GetByName(ctx context.Context, name string) (*domain.GeneticCondition, error)
	ListAll(ctx context.Context) ([]*domain.GeneticCondition, error)
	// ListHereditary 仅返回 is_hereditary=true 的条目（综合评估候选集）
	ListHereditary(ctx context.Context) ([]*domain.GeneticCondition, error)
	// UpsertCondition 按 name 幂等写入（种子化和远程目录同步共用）
	UpsertCondition(ctx context.Context, condition *domain.GeneticCondition) error
}
