package domain

// InheritancePattern 遗传模式
type InheritancePattern string

const (
	InheritanceAutosomalDominant  InheritancePattern = "autosomal_dominant"
	InheritanceAutosomalRecessive InheritancePattern = "autosomal_recessive"
	InheritanceXLinked            InheritancePattern = "x_linked"
	InheritanceMitochondrial      InheritancePattern = "mitochondrial"
	InheritanceMultifactorial     InheritancePattern = "multifactorial"
)

// GeneticCondition 遗传疾病目录条目（对应 genetic_conditions 表）
// 目录数据：启动时从固定目录种子化，之后对分析核心只读
type GeneticCondition struct {
	// 主键
	ConditionID string `db:"condition_id"` // UUID, PRIMARY KEY

	// 疾病名称（唯一）
	Name string `db:"name"` // VARCHAR(200), NOT NULL, UNIQUE

	// 分类（cardiovascular/cancer/neurological/metabolic/...）
	Category string `db:"category"` // VARCHAR(50), NOT NULL

	// 遗传模式
	InheritancePattern InheritancePattern `db:"inheritance_pattern"` // VARCHAR(50), NOT NULL

	// 流行率/外显率（0-1 概率，可选）
	Prevalence *float64 `db:"prevalence"` // DOUBLE PRECISION, nullable
	Penetrance *float64 `db:"penetrance"` // DOUBLE PRECISION, nullable

	// 是否遗传性疾病（综合评估时纳入候选集）
	IsHereditary bool `db:"is_hereditary"` // BOOLEAN, NOT NULL, DEFAULT FALSE

	Description string `db:"description"` // TEXT, nullable
}
