package analytics

import (
	"fmt"

	"healthvault-data/internal/domain"
)

// 趋势检测参数
const (
	minObservations      = 7   // 少于7次观察不输出任何模式
	minVitalSamples      = 5   // 单个体征至少5个非缺测值才拟合
	directionSlopeEps    = 0.1 // |slope| ≤ 0.1 视为平稳
	symptomWindow        = 3   // 症状频率统计窗口（最近N次观察）
	symptomFreqThreshold = 0.5 // 频率超过此值才上报
	symptomSevereFreq    = 0.8 // 频率超过此值升级为 severe/warning
	weekSamples          = 7   // 阈值表按周变化率表达，斜率按日样本折算
)

// VitalThreshold 单个体征的趋势阈值（每周变化量）
type VitalThreshold struct {
	Moderate float64
	Severe   float64
}

// vitalThresholds 固定体征集及其阈值表
// 未收录的体征使用默认 {1, 3}
var vitalThresholds = map[string]VitalThreshold{
	"systolic_bp":       {Moderate: 2, Severe: 5},
	"diastolic_bp":      {Moderate: 1.5, Severe: 3},
	"heart_rate":        {Moderate: 2, Severe: 4},
	"weight":            {Moderate: 0.5, Severe: 1},
	"blood_glucose":     {Moderate: 5, Severe: 10},
	"temperature":       {Moderate: 0.1, Severe: 0.3},
	"oxygen_saturation": {Moderate: 0.5, Severe: 1},
	"respiratory_rate":  {Moderate: 1, Severe: 2},
}

var defaultVitalThreshold = VitalThreshold{Moderate: 1, Severe: 3}

// thresholdFor 查阈值表，未知体征给默认值
func thresholdFor(vital string) VitalThreshold {
	if t, ok := vitalThresholds[vital]; ok {
		return t
	}
	return defaultVitalThreshold
}

// DetectPatterns 从按时间升序的观察序列中检测健康恶化模式
// 观察少于7次时返回空列表（数据不足不是错误）
func DetectPatterns(observations []domain.HealthObservation) []domain.HealthDeteriorationPattern {
	if len(observations) < minObservations {
		return nil
	}

	patterns := []domain.HealthDeteriorationPattern{}
	patterns = append(patterns, detectVitalTrends(observations)...)
	patterns = append(patterns, detectSymptomPatterns(observations)...)
	if p := detectOverallConditionTrend(observations); p != nil {
		patterns = append(patterns, *p)
	}
	return patterns
}

// detectVitalTrends 逐体征最小二乘趋势检测
// 斜率以观察序号（0基）为自变量：slope = (nΣxy − ΣxΣy)/(nΣx² − (Σx)²)。
// 阈值表为每周变化量，斜率按 ×7 折算后比较；低于 moderate 的趋势不上报。
func detectVitalTrends(observations []domain.HealthObservation) []domain.HealthDeteriorationPattern {
	names := make(map[string]bool)
	for _, obs := range observations {
		for name := range obs.Vitals {
			names[name] = true
		}
	}

	var patterns []domain.HealthDeteriorationPattern
	for name := range names {
		var xs, ys []float64
		for i, obs := range observations {
			if v, ok := obs.Vitals[name]; ok {
				xs = append(xs, float64(i))
				ys = append(ys, v)
			}
		}
		if len(ys) < minVitalSamples {
			continue
		}

		slope := leastSquaresSlope(xs, ys)
		weeklyChange := slope * weekSamples
		threshold := thresholdFor(name)

		var severity domain.PatternSeverity
		switch {
		case abs(weeklyChange) >= threshold.Severe:
			severity = domain.SeveritySevere
		case abs(weeklyChange) >= threshold.Moderate:
			severity = domain.SeverityModerate
		default:
			// mild 级别的波动不上报
			continue
		}

		alert := domain.AlertWarning
		if severity == domain.SeveritySevere {
			alert = domain.AlertCritical
		}

		patterns = append(patterns, domain.HealthDeteriorationPattern{
			PatternType:     "vital_trend",
			Severity:        severity,
			TrendDirection:  directionFromSlope(slope),
			AffectedMetrics: []string{name},
			Timeframe:       fmt.Sprintf("last %d observations", len(ys)),
			Confidence:      sampleConfidence(len(ys)),
			AlertLevel:      alert,
		})
	}
	return patterns
}

// directionFromSlope 体征趋势方向
// 数值上升视为恶化（declining）：固定体征集内上升均为不利信号
func directionFromSlope(slope float64) domain.TrendDirection {
	switch {
	case slope > directionSlopeEps:
		return domain.TrendDeclining
	case slope < -directionSlopeEps:
		return domain.TrendImproving
	default:
		return domain.TrendStable
	}
}

// detectSymptomPatterns 症状频率检测
// 统计每个症状在最近3次观察（历史不足时取实际长度）中的出现频率
func detectSymptomPatterns(observations []domain.HealthObservation) []domain.HealthDeteriorationPattern {
	window := symptomWindow
	if len(observations) < window {
		window = len(observations)
	}
	recent := observations[len(observations)-window:]

	counts := make(map[string]int)
	for _, obs := range recent {
		seen := make(map[string]bool, len(obs.Symptoms))
		for _, s := range obs.Symptoms {
			if !seen[s] {
				counts[s]++
				seen[s] = true
			}
		}
	}

	var patterns []domain.HealthDeteriorationPattern
	for symptom, count := range counts {
		freq := float64(count) / float64(window)
		if freq <= symptomFreqThreshold {
			continue
		}

		severity := domain.SeverityModerate
		alert := domain.AlertInfo
		if freq > symptomSevereFreq {
			severity = domain.SeveritySevere
			alert = domain.AlertWarning
		}

		patterns = append(patterns, domain.HealthDeteriorationPattern{
			PatternType:     "symptom_frequency",
			Severity:        severity,
			TrendDirection:  domain.TrendDeclining,
			AffectedMetrics: []string{symptom},
			Timeframe:       fmt.Sprintf("last %d observations", window),
			Confidence:      freq,
			AlertLevel:      alert,
		})
	}
	return patterns
}

// detectOverallConditionTrend 总体状态（1-5 评分）趋势检测
// 评分下降（负斜率）为恶化；|slope| < 0.1 不上报。
// 严重程度取决于序列均值：<2.5 severe，<3.5 moderate，否则 mild
func detectOverallConditionTrend(observations []domain.HealthObservation) *domain.HealthDeteriorationPattern {
	xs := make([]float64, len(observations))
	ys := make([]float64, len(observations))
	sum := 0.0
	for i, obs := range observations {
		xs[i] = float64(i)
		ys[i] = float64(obs.OverallCondition)
		sum += ys[i]
	}

	slope := leastSquaresSlope(xs, ys)
	if abs(slope) < directionSlopeEps {
		return nil
	}

	avg := sum / float64(len(observations))
	var severity domain.PatternSeverity
	switch {
	case avg < 2.5:
		severity = domain.SeveritySevere
	case avg < 3.5:
		severity = domain.SeverityModerate
	default:
		severity = domain.SeverityMild
	}

	direction := domain.TrendImproving
	if slope < 0 {
		direction = domain.TrendDeclining
	}

	alert := domain.AlertInfo
	if slope < -0.2 {
		alert = domain.AlertWarning
	}

	return &domain.HealthDeteriorationPattern{
		PatternType:     "overall_condition",
		Severity:        severity,
		TrendDirection:  direction,
		AffectedMetrics: []string{"overall_condition"},
		Timeframe:       fmt.Sprintf("last %d observations", len(observations)),
		Confidence:      sampleConfidence(len(observations)),
		AlertLevel:      alert,
	}
}

// leastSquaresSlope 普通最小二乘斜率
func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// sampleConfidence 置信度 = min(0.9, 样本数/10)
func sampleConfidence(samples int) float64 {
	c := float64(samples) / 10
	if c > 0.9 {
		return 0.9
	}
	return c
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
