package analytics

import (
	"testing"

	"healthvault-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRiskFactors_HealthyProfileIsProtective(t *testing.T) {
	analysis := AnalyzeRiskFactors(healthyInput())

	assert.Empty(t, analysis.RiskFactors)
	require.Len(t, analysis.ProtectiveFactors, 3)
	// never_smoked + regular_exercise + healthy_bmi ⇒ 0 − 0.5×0.35 ⇒ clamp 到 0
	assert.Equal(t, 0.0, analysis.TotalRiskScore)
	assert.Equal(t, "stable", analysis.RiskTrend)
	assert.Empty(t, analysis.PriorityActions)
}

func TestAnalyzeRiskFactors_NeverBothRiskAndProtectiveForSameCondition(t *testing.T) {
	inputs := []domain.HealthDataInput{
		{SmokingStatus: "current", BMI: 32, ExerciseFrequency: 0},
		{SmokingStatus: "never", BMI: 22, ExerciseFrequency: 5},
		{SmokingStatus: "former", BMI: 26, ExerciseFrequency: 2},
	}

	exclusivePairs := map[string]string{
		"smoking_current":     "never_smoked",
		"physical_inactivity": "regular_exercise",
		"obesity":             "healthy_bmi",
	}

	for _, input := range inputs {
		analysis := AnalyzeRiskFactors(input)
		riskIDs := make(map[string]bool)
		for _, f := range analysis.RiskFactors {
			riskIDs[f.ID] = true
		}
		protectiveIDs := make(map[string]bool)
		for _, f := range analysis.ProtectiveFactors {
			protectiveIDs[f.ID] = true
		}
		for risk, protective := range exclusivePairs {
			assert.False(t, riskIDs[risk] && protectiveIDs[protective],
				"risk %q and protective %q must be mutually exclusive", risk, protective)
		}
	}
}

func TestAnalyzeRiskFactors_TotalScoreClamped(t *testing.T) {
	input := domain.HealthDataInput{
		SmokingStatus:      "current",
		AlcoholConsumption: "heavy",
		BMI:                34,
		SleepHours:         4,
		StressLevel:        9,
		HasHypertension:    true,
		HasDiabetes:        true,
		HasHeartDisease:    true,
		HasHighCholesterol: true,
		FamilyHeartDisease: true,
		FamilyDiabetes:     true,
		FamilyCancer:       true,
	}
	analysis := AnalyzeRiskFactors(input)

	assert.Equal(t, 1.0, analysis.TotalRiskScore)
	assert.LessOrEqual(t, len(analysis.PriorityActions), 8)
}

func TestAnalyzeRiskFactors_ProtectiveDiscount(t *testing.T) {
	// 高血压 0.25 − 0.5×(0.1+0.15+0.1 保护) = 0.075
	input := domain.HealthDataInput{
		SmokingStatus:     "never",
		BMI:               22,
		ExerciseFrequency: 4,
		SleepHours:        8,
		HasHypertension:   true,
	}
	analysis := AnalyzeRiskFactors(input)
	assert.InDelta(t, 0.075, analysis.TotalRiskScore, 1e-9)
}

func TestAnalyzeRiskFactors_PriorityActionsRankedByImpact(t *testing.T) {
	input := domain.HealthDataInput{
		SmokingStatus:   "current", // critical, 0.35×1.5 = 0.525，排第一
		HasHypertension: true,      // 0.25
		SleepHours:      5,         // 0.1
	}
	analysis := AnalyzeRiskFactors(input)

	require.NotEmpty(t, analysis.PriorityActions)
	// 第一条行动来自排序最高的吸烟因子
	assert.Equal(t, "Enroll in a smoking cessation program", analysis.PriorityActions[0])
	// 每个因子最多取前2条建议
	assert.Equal(t, "Discuss nicotine replacement therapy with your physician", analysis.PriorityActions[1])
}

func TestAnalyzeRiskFactors_NonModifiableExcludedFromActions(t *testing.T) {
	input := domain.HealthDataInput{
		BMI:                22,
		SmokingStatus:      "never",
		ExerciseFrequency:  4,
		SleepHours:         8,
		FamilyHeartDisease: true,
		FamilyCancer:       true,
	}
	analysis := AnalyzeRiskFactors(input)

	assert.NotEmpty(t, analysis.RiskFactors)
	assert.Empty(t, analysis.PriorityActions)
}

func TestAnalyzeRiskFactors_RiskTrend(t *testing.T) {
	// immediate 因子占比 >50% ⇒ increasing
	increasing := AnalyzeRiskFactors(domain.HealthDataInput{
		BMI:               22,
		SleepHours:        8,
		HasHypertension:   true,
		HasDiabetes:       true,
		StressLevel:       8,
		ExerciseFrequency: 4,
		SmokingStatus:     "former",
	})
	assert.Equal(t, "increasing", increasing.RiskTrend)

	// 全部为 long_term 家族史因子 ⇒ immediate 占比0 < 20% ⇒ decreasing
	decreasing := AnalyzeRiskFactors(domain.HealthDataInput{
		BMI:               26,
		SleepHours:        8,
		ExerciseFrequency: 2,
		SmokingStatus:     "former",
		FamilyDiabetes:    true,
		FamilyCancer:      true,
	})
	assert.Equal(t, "decreasing", decreasing.RiskTrend)
}

func TestAnalyzeRiskFactors_Idempotent(t *testing.T) {
	input := domain.HealthDataInput{
		SmokingStatus:   "current",
		BMI:             31,
		StressLevel:     7,
		HasHypertension: true,
	}
	assert.Equal(t, AnalyzeRiskFactors(input), AnalyzeRiskFactors(input))
}
