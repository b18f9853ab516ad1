package analytics

import (
	"testing"
	"time"

	"healthvault-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observationSeries(vital string, values []float64) []domain.HealthObservation {
	obs := make([]domain.HealthObservation, len(values))
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		obs[i] = domain.HealthObservation{
			Date:             start.AddDate(0, 0, i),
			Vitals:           map[string]float64{vital: v},
			OverallCondition: 4,
		}
	}
	return obs
}

func TestDetectPatterns_InsufficientObservations(t *testing.T) {
	obs := observationSeries("systolic_bp", []float64{120, 122, 124, 126, 128, 130})
	assert.Empty(t, DetectPatterns(obs))
}

func TestDetectPatterns_RisingSystolicBP(t *testing.T) {
	// [120..132] 步进2：slope=2，周变化14 ≥ severe阈值5 ⇒ severe/critical/declining
	obs := observationSeries("systolic_bp", []float64{120, 122, 124, 126, 128, 130, 132})
	patterns := DetectPatterns(obs)

	var vital *domain.HealthDeteriorationPattern
	for i := range patterns {
		if patterns[i].PatternType == "vital_trend" {
			vital = &patterns[i]
		}
	}
	require.NotNil(t, vital)
	assert.Equal(t, domain.SeveritySevere, vital.Severity)
	assert.Equal(t, domain.AlertCritical, vital.AlertLevel)
	assert.Equal(t, domain.TrendDeclining, vital.TrendDirection)
	assert.Equal(t, []string{"systolic_bp"}, vital.AffectedMetrics)
	assert.InDelta(t, 0.7, vital.Confidence, 1e-9) // min(0.9, 7/10)
}

func TestDetectPatterns_FallingSeriesIsImproving(t *testing.T) {
	obs := observationSeries("systolic_bp", []float64{140, 138, 136, 134, 132, 130, 128})
	patterns := DetectPatterns(obs)

	var vital *domain.HealthDeteriorationPattern
	for i := range patterns {
		if patterns[i].PatternType == "vital_trend" {
			vital = &patterns[i]
		}
	}
	require.NotNil(t, vital)
	assert.Equal(t, domain.TrendImproving, vital.TrendDirection)
}

func TestDetectPatterns_FlatSeriesSuppressed(t *testing.T) {
	obs := observationSeries("systolic_bp", []float64{120, 120, 121, 120, 120, 121, 120})
	for _, p := range DetectPatterns(obs) {
		assert.NotEqual(t, "vital_trend", p.PatternType)
	}
}

func TestDetectPatterns_UnknownVitalUsesDefaultThresholds(t *testing.T) {
	// 未知体征默认阈值 {moderate:1, severe:3}：slope=0.5 ⇒ 周变化3.5 ≥ 3 ⇒ severe
	obs := observationSeries("custom_marker", []float64{10, 10.5, 11, 11.5, 12, 12.5, 13})
	patterns := DetectPatterns(obs)

	require.Len(t, patterns, 1)
	assert.Equal(t, domain.SeveritySevere, patterns[0].Severity)
}

func TestDetectPatterns_VitalNeedsFiveSamples(t *testing.T) {
	// 观察7次但该体征只有4个非缺测值：不拟合
	obs := observationSeries("systolic_bp", []float64{120, 125, 130, 135, 140, 145, 150})
	for i := 0; i < 3; i++ {
		obs[i].Vitals = map[string]float64{}
	}
	for _, p := range DetectPatterns(obs) {
		assert.NotEqual(t, "vital_trend", p.PatternType)
	}
}

func TestDetectPatterns_SymptomFrequency(t *testing.T) {
	obs := observationSeries("heart_rate", []float64{70, 70, 71, 70, 70, 71, 70})
	// 最近3次观察中出现3次 ⇒ 频率1.0 > 0.8 ⇒ severe/warning
	for i := 4; i < 7; i++ {
		obs[i].Symptoms = []string{"dizziness"}
	}
	patterns := DetectPatterns(obs)

	var symptom *domain.HealthDeteriorationPattern
	for i := range patterns {
		if patterns[i].PatternType == "symptom_frequency" {
			symptom = &patterns[i]
		}
	}
	require.NotNil(t, symptom)
	assert.Equal(t, domain.SeveritySevere, symptom.Severity)
	assert.Equal(t, domain.AlertWarning, symptom.AlertLevel)
	assert.Equal(t, []string{"dizziness"}, symptom.AffectedMetrics)
}

func TestDetectPatterns_SymptomBelowThresholdIgnored(t *testing.T) {
	obs := observationSeries("heart_rate", []float64{70, 70, 71, 70, 70, 71, 70})
	// 最近3次中仅出现1次 ⇒ 频率 ≈0.33 ≤ 0.5 ⇒ 不上报
	obs[6].Symptoms = []string{"headache"}
	for _, p := range DetectPatterns(obs) {
		assert.NotEqual(t, "symptom_frequency", p.PatternType)
	}
}

func TestDetectPatterns_OverallConditionDecline(t *testing.T) {
	obs := observationSeries("heart_rate", []float64{70, 70, 71, 70, 70, 71, 70})
	ratings := []int{5, 4, 4, 3, 3, 2, 2}
	for i := range obs {
		obs[i].OverallCondition = ratings[i]
	}
	patterns := DetectPatterns(obs)

	var overall *domain.HealthDeteriorationPattern
	for i := range patterns {
		if patterns[i].PatternType == "overall_condition" {
			overall = &patterns[i]
		}
	}
	require.NotNil(t, overall)
	assert.Equal(t, domain.TrendDeclining, overall.TrendDirection)
	// 均值 ≈3.29 < 3.5 ⇒ moderate；slope ≈ -0.5 < -0.2 ⇒ warning
	assert.Equal(t, domain.SeverityModerate, overall.Severity)
	assert.Equal(t, domain.AlertWarning, overall.AlertLevel)
}

func TestDetectPatterns_StableOverallConditionSuppressed(t *testing.T) {
	obs := observationSeries("heart_rate", []float64{70, 70, 71, 70, 70, 71, 70})
	for _, p := range DetectPatterns(obs) {
		assert.NotEqual(t, "overall_condition", p.PatternType)
	}
}

func TestLeastSquaresSlope(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5, 6}
	ys := []float64{120, 122, 124, 126, 128, 130, 132}
	assert.InDelta(t, 2.0, leastSquaresSlope(xs, ys), 1e-9)

	// 常数序列斜率为0
	flat := []float64{5, 5, 5, 5, 5, 5, 5}
	assert.InDelta(t, 0.0, leastSquaresSlope(xs, flat), 1e-9)
}

func TestDetectPatterns_Idempotent(t *testing.T) {
	obs := observationSeries("systolic_bp", []float64{120, 122, 124, 126, 128, 130, 132})
	assert.Equal(t, DetectPatterns(obs), DetectPatterns(obs))
}
