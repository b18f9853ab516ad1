// Package analytics 健康风险分析核心
//
// 纯函数集合：家族遗传风险评分、疾病风险预测、健康趋势检测、风险因子分析。
// 本包不做任何 I/O，不持有状态；相同输入永远产生相同输出。
// 数据读写由 Service 层负责。
package analytics

// GenerationForRelationship 亲属关系 → 代际偏移
// 负数为长辈，正数为晚辈；未知关系按同代（0）处理
func GenerationForRelationship(relationship string) int {
	switch relationship {
	// 祖辈（-2）
	case "grandmother", "grandfather",
		"maternal_grandmother", "maternal_grandfather",
		"paternal_grandmother", "paternal_grandfather":
		return -2
	// 父辈（-1）
	case "mother", "father", "stepmother", "stepfather",
		"aunt", "uncle", "maternal_aunt", "maternal_uncle",
		"paternal_aunt", "paternal_uncle":
		return -1
	// 同代（0）
	case "brother", "sister", "half_brother", "half_sister",
		"twin_brother", "twin_sister", "cousin":
		return 0
	// 子辈（+1）
	case "son", "daughter", "niece", "nephew":
		return 1
	// 孙辈（+2）
	case "grandson", "granddaughter":
		return 2
	default:
		// 未知关系按同代处理（有意的宽松降级，不报错）
		return 0
	}
}

// ClosenessWeight 代际偏移 → 亲缘权重
// 父辈（一级亲属为主）权重最高，随亲缘距离递减
func ClosenessWeight(generation int) float64 {
	switch generation {
	case -1:
		return 0.5
	case 0:
		return 0.3
	case 1, -2:
		return 0.2
	default:
		return 0.1
	}
}
