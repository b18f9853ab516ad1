package analytics

import (
	"sort"

	"healthvault-data/internal/domain"
)

// 遗传风险评分公式权重
const (
	prevalenceWeight = 0.4 // 家族流行率项权重
	closenessWeight  = 0.4 // 亲缘项权重

	dominantMultiplier   = 1.2 // 常染色体显性遗传
	recessiveMultiplier  = 0.8 // 常染色体隐性遗传
	earlyOnsetMultiplier = 1.3 // 早发病例（确诊年龄 < 50）
	earlyOnsetAgeLimit   = 50
)

// ConditionRisk 单个疾病的家族遗传风险评估结果
type ConditionRisk struct {
	ConditionName     string
	Score             float64 // 0-1
	AffectedRelatives int
	RiskLevel         domain.RiskLevel
	Recommendations   []string
}

// ScoreHereditaryRisk 计算指定疾病的家族遗传风险分数（0-1）
//
// 评分步骤：
//  1. 无患病成员 ⇒ 0
//  2. 流行率项 = (患病人数 / max(总人数,1)) × 0.4
//  3. 亲缘项 = min(1, Σ患病成员代际权重) × 0.4
//  4. 匹配到遗传疾病目录时：乘以外显率（如有）；
//     常染色体显性 ×1.2，常染色体隐性 ×0.8，其他模式不调整
//  5. 任一患病成员早发（确诊年份-出生年份 < 50）⇒ ×1.3
//  6. clamp 到 [0,1]
func ScoreHereditaryRisk(condition string, affected, all []*domain.FamilyMember, gc *domain.GeneticCondition) float64 {
	if len(affected) == 0 {
		return 0
	}

	total := len(all)
	if total < 1 {
		total = 1
	}
	score := float64(len(affected)) / float64(total) * prevalenceWeight

	closeness := 0.0
	for _, m := range affected {
		closeness += ClosenessWeight(m.Generation)
	}
	if closeness > 1 {
		closeness = 1
	}
	score += closeness * closenessWeight

	if gc != nil {
		if gc.Penetrance != nil {
			score *= *gc.Penetrance
		}
		switch gc.InheritancePattern {
		case domain.InheritanceAutosomalDominant:
			score *= dominantMultiplier
		case domain.InheritanceAutosomalRecessive:
			score *= recessiveMultiplier
		}
	}

	if hasEarlyOnset(condition, affected) {
		score *= earlyOnsetMultiplier
	}

	return clamp01(score)
}

// hasEarlyOnset 任一患病成员在50岁前确诊即视为早发
func hasEarlyOnset(condition string, affected []*domain.FamilyMember) bool {
	for _, m := range affected {
		if m.BirthYear == nil {
			continue
		}
		for _, c := range m.Conditions {
			if c.Name != condition || c.DiagnosedYear == nil {
				continue
			}
			if *c.DiagnosedYear-*m.BirthYear < earlyOnsetAgeLimit {
				return true
			}
		}
	}
	return false
}

// ClassifyRiskLevel 分数 → 风险等级
// 半开区间，边界值归入较高等级：0.2⇒moderate, 0.4⇒high, 0.7⇒very_high
func ClassifyRiskLevel(score float64) domain.RiskLevel {
	switch {
	case score < 0.2:
		return domain.RiskLow
	case score < 0.4:
		return domain.RiskModerate
	case score < 0.7:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// 等级建议（固定文案，按等级递进）
var tierRecommendations = map[domain.RiskLevel][]string{
	domain.RiskLow: {
		"Maintain regular health checkups",
		"Keep a record of any new family diagnoses",
	},
	domain.RiskModerate: {
		"Discuss your family history with your primary care physician",
		"Schedule screening earlier than standard guidelines suggest",
	},
	domain.RiskHigh: {
		"Consult a genetic counselor about your family history",
		"Begin enhanced screening for this condition",
		"Review lifestyle factors that affect this condition",
	},
	domain.RiskVeryHigh: {
		"Seek a genetic counseling appointment as soon as possible",
		"Ask your physician about genetic testing options",
		"Establish an intensive screening schedule",
		"Inform close relatives about the elevated family risk",
	},
}

// 疾病分类建议（固定文案，按匹配到的遗传疾病目录分类）
var categoryRecommendations = map[string][]string{
	"cardiovascular": {
		"Monitor blood pressure and cholesterol regularly",
		"Follow a heart-healthy diet",
	},
	"cancer": {
		"Follow age-appropriate cancer screening guidelines",
		"Report unexplained symptoms to your physician promptly",
	},
	"neurological": {
		"Track cognitive or motor changes over time",
		"Discuss neurological baseline testing with a specialist",
	},
	"metabolic": {
		"Monitor blood glucose periodically",
		"Maintain a balanced diet and regular exercise",
	},
}

// HereditaryRecommendations 生成建议列表
// 顺序固定：先等级建议，后分类建议；不去重
func HereditaryRecommendations(level domain.RiskLevel, gc *domain.GeneticCondition) []string {
	recs := make([]string, 0, 6)
	recs = append(recs, tierRecommendations[level]...)
	if gc != nil {
		recs = append(recs, categoryRecommendations[gc.Category]...)
	}
	return recs
}

// AssessCondition 评估单个疾病，返回完整评估结果
func AssessCondition(condition string, affected, all []*domain.FamilyMember, gc *domain.GeneticCondition) ConditionRisk {
	score := ScoreHereditaryRisk(condition, affected, all, gc)
	level := ClassifyRiskLevel(score)
	return ConditionRisk{
		ConditionName:     condition,
		Score:             score,
		AffectedRelatives: len(affected),
		RiskLevel:         level,
		Recommendations:   HereditaryRecommendations(level, gc),
	}
}

// AssessAllConditions 综合评估
// 候选集 = 家族成员中出现过的所有疾病 ∪ 目录中标记为遗传性的疾病。
// 仅出现在目录中（家族无人患病扩展出）的结果只在 score > 0.1 时保留。
// 返回按分数降序排列。
func AssessAllConditions(members []*domain.FamilyMember, catalog []*domain.GeneticCondition) []ConditionRisk {
	byName := make(map[string]*domain.GeneticCondition, len(catalog))
	for _, gc := range catalog {
		byName[gc.Name] = gc
	}

	observed := make(map[string]bool)
	for _, m := range members {
		for _, c := range m.Conditions {
			observed[c.Name] = true
		}
	}

	candidates := make(map[string]bool, len(observed))
	for name := range observed {
		candidates[name] = true
	}
	for _, gc := range catalog {
		if gc.IsHereditary {
			candidates[gc.Name] = true
		}
	}

	results := make([]ConditionRisk, 0, len(candidates))
	for name := range candidates {
		var affected []*domain.FamilyMember
		for _, m := range members {
			if m.HasCondition(name) {
				affected = append(affected, m)
			}
		}
		risk := AssessCondition(name, affected, members, byName[name])
		if !observed[name] && risk.Score <= 0.1 {
			// 纯目录候选且分数过低：不值得上报
			continue
		}
		results = append(results, risk)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ConditionName < results[j].ConditionName
	})

	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
