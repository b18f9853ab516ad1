package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/repository"
)

// CatalogService 基因疾病目录服务接口
type CatalogService interface {
	ListConditions(ctx context.Context) ([]*domain.GeneticCondition, error)
	GetCondition(ctx context.Context, name string) (*domain.GeneticCondition, error)
	// Seed 写入内置目录（幂等，启动时调用）
	Seed(ctx context.Context) error
	// SyncRemote 从远端目录服务拉取更新（可选）
	SyncRemote(ctx context.Context) error
}

// catalogService 实现
type catalogService struct {
	conditionsRepo repository.GeneticConditionsRepository
	client         *CatalogClient // 可为 nil（未配置远端目录服务）
	logger         *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(conditionsRepo repository.GeneticConditionsRepository, client *CatalogClient, logger *zap.Logger) CatalogService {
	return &catalogService{
		conditionsRepo: conditionsRepo,
		client:         client,
		logger:         logger,
	}
}

func (s *catalogService) ListConditions(ctx context.Context) ([]*domain.GeneticCondition, error) {
	return s.conditionsRepo.ListAll(ctx)
}

func (s *catalogService) GetCondition(ctx context.Context, name string) (*domain.GeneticCondition, error) {
	return s.conditionsRepo.GetByName(ctx, name)
}

// Seed 写入内置目录
func (s *catalogService) Seed(ctx context.Context) error {
	for _, c := range builtinCatalog {
		condition := c
		if err := s.conditionsRepo.UpsertCondition(ctx, &condition); err != nil {
			return fmt.Errorf("failed to seed condition %q: %w", c.Name, err)
		}
	}
	s.logger.Info("Genetic condition catalog seeded",
		zap.Int("condition_count", len(builtinCatalog)))
	return nil
}

// SyncRemote 拉取远端目录并按名称合并
func (s *catalogService) SyncRemote(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("catalog service is not configured")
	}

	entries, err := s.client.FetchConditions()
	if err != nil {
		return err
	}

	updated := 0
	for _, e := range entries {
		if e.Name == "" || e.Category == "" {
			s.logger.Warn("Skipping invalid catalog entry", zap.String("name", e.Name))
			continue
		}
		err := s.conditionsRepo.UpsertCondition(ctx, &domain.GeneticCondition{
			Name:               e.Name,
			Category:           e.Category,
			InheritancePattern: domain.InheritancePattern(e.InheritancePattern),
			Prevalence:         e.Prevalence,
			Penetrance:         e.Penetrance,
			IsHereditary:       e.IsHereditary,
			Description:        e.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to sync condition %q: %w", e.Name, err)
		}
		updated++
	}

	s.logger.Info("Genetic condition catalog synced",
		zap.Int("updated_count", updated))
	return nil
}

func f(v float64) *float64 { return &v }

// builtinCatalog 内置基因疾病目录
// 流行率/外显率为文献常见估计值，远端目录同步时可被覆盖
var builtinCatalog = []domain.GeneticCondition{
	{
		Name:               "Coronary Artery Disease",
		Category:           "cardiovascular",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.065),
		IsHereditary:       true,
		Description:        "Narrowing of coronary arteries with a strong familial component",
	},
	{
		Name:               "Hypertension",
		Category:           "cardiovascular",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.30),
		IsHereditary:       true,
		Description:        "Chronic elevated blood pressure",
	},
	{
		Name:               "Familial Hypercholesterolemia",
		Category:           "cardiovascular",
		InheritancePattern: domain.InheritanceAutosomalDominant,
		Prevalence:         f(0.004),
		Penetrance:         f(0.9),
		IsHereditary:       true,
		Description:        "Inherited high LDL cholesterol from birth",
	},
	{
		Name:               "Type 2 Diabetes",
		Category:           "metabolic",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.105),
		IsHereditary:       true,
		Description:        "Insulin resistance with substantial heritability",
	},
	{
		Name:               "Type 1 Diabetes",
		Category:           "metabolic",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.004),
		IsHereditary:       true,
		Description:        "Autoimmune destruction of insulin-producing cells",
	},
	{
		Name:               "Breast Cancer",
		Category:           "cancer",
		InheritancePattern: domain.InheritanceAutosomalDominant,
		Prevalence:         f(0.13),
		Penetrance:         f(0.7),
		IsHereditary:       true,
		Description:        "BRCA1/BRCA2 variants confer high lifetime risk",
	},
	{
		Name:               "Colorectal Cancer",
		Category:           "cancer",
		InheritancePattern: domain.InheritanceAutosomalDominant,
		Prevalence:         f(0.042),
		Penetrance:         f(0.8),
		IsHereditary:       true,
		Description:        "Lynch syndrome and familial adenomatous polyposis raise risk sharply",
	},
	{
		Name:               "Prostate Cancer",
		Category:           "cancer",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.126),
		IsHereditary:       true,
		Description:        "Risk roughly doubles with an affected first-degree relative",
	},
	{
		Name:               "Alzheimer's Disease",
		Category:           "neurological",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.063),
		IsHereditary:       true,
		Description:        "Late-onset form associated with APOE-e4",
	},
	{
		Name:               "Huntington's Disease",
		Category:           "neurological",
		InheritancePattern: domain.InheritanceAutosomalDominant,
		Prevalence:         f(0.00007),
		Penetrance:         f(1.0),
		IsHereditary:       true,
		Description:        "Fully penetrant CAG repeat expansion disorder",
	},
	{
		Name:               "Parkinson's Disease",
		Category:           "neurological",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.003),
		IsHereditary:       true,
		Description:        "Small heritable fraction, mostly sporadic",
	},
	{
		Name:               "Cystic Fibrosis",
		Category:           "respiratory",
		InheritancePattern: domain.InheritanceAutosomalRecessive,
		Prevalence:         f(0.0004),
		Penetrance:         f(1.0),
		IsHereditary:       true,
		Description:        "CFTR mutations, recessive inheritance",
	},
	{
		Name:               "Sickle Cell Disease",
		Category:           "hematological",
		InheritancePattern: domain.InheritanceAutosomalRecessive,
		Prevalence:         f(0.003),
		Penetrance:         f(1.0),
		IsHereditary:       true,
		Description:        "Hemoglobin S variant, recessive inheritance",
	},
	{
		Name:               "Hemophilia A",
		Category:           "hematological",
		InheritancePattern: domain.InheritanceXLinked,
		Prevalence:         f(0.0001),
		Penetrance:         f(1.0),
		IsHereditary:       true,
		Description:        "X-linked factor VIII deficiency",
	},
	{
		Name:               "Asthma",
		Category:           "respiratory",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.08),
		IsHereditary:       true,
		Description:        "Airway inflammation with moderate heritability",
	},
	{
		Name:               "Depression",
		Category:           "psychiatric",
		InheritancePattern: domain.InheritanceMultifactorial,
		Prevalence:         f(0.08),
		IsHereditary:       true,
		Description:        "Major depressive disorder, moderate familial aggregation",
	},
}
