package analytics

import (
	"testing"

	"healthvault-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyInput() domain.HealthDataInput {
	return domain.HealthDataInput{
		Age:                30,
		Gender:             "female",
		BMI:                22,
		SystolicBP:         115,
		DiastolicBP:        75,
		RestingHR:          62,
		SmokingStatus:      "never",
		AlcoholConsumption: "none",
		ExerciseFrequency:  4,
		SleepHours:         8,
		StressLevel:        3,
	}
}

func TestPredictCardiovascularRisk_HealthyProfile(t *testing.T) {
	p := PredictCardiovascularRisk(healthyInput())

	assert.Equal(t, domain.DiseaseCardiovascular, p.DiseaseType)
	assert.Equal(t, 0.0, p.RiskScore)
	assert.Equal(t, domain.RiskLow, p.RiskLevel)
	assert.Equal(t, "10_years", p.Timeframe)
	assert.Equal(t, 0.7, p.Confidence)
	assert.Equal(t, 0.0, p.ContributingFactors.FamilyHistory)
}

func TestPredictCardiovascularRisk_HighRiskProfile(t *testing.T) {
	input := domain.HealthDataInput{
		Age:                68,
		BMI:                31,
		SystolicBP:         150,
		SmokingStatus:      "current",
		HasHighCholesterol: true,
		HasDiabetes:        true,
		FamilyHeartDisease: true,
	}
	p := PredictCardiovascularRisk(input)

	// 0.2+0.15+0.2+0.2+0.15+0.15+0.1+0.05(无运动) = 1.2 ⇒ clamp 到 1.0
	assert.Equal(t, 1.0, p.RiskScore)
	assert.Equal(t, domain.RiskVeryHigh, p.RiskLevel)
	assert.Equal(t, 0.1, p.ContributingFactors.FamilyHistory)
	assert.Equal(t, 0.1, p.ContributingFactors.Genetic)

	// 高风险等级必须触发专科就诊建议
	require.NotEmpty(t, p.Recommendations)
	assert.Contains(t, p.Recommendations[0], "cardiologist")
}

func TestPredictCardiovascularRisk_KeywordTriggeredRecommendations(t *testing.T) {
	input := healthyInput()
	input.SystolicBP = 145
	p := PredictCardiovascularRisk(input)

	found := false
	for _, r := range p.Recommendations {
		if r == "Monitor blood pressure regularly and reduce sodium intake" {
			found = true
		}
	}
	assert.True(t, found, "blood pressure reason should trigger the matching recommendation")
}

func TestPredictDiabetesRisk_LabValuesOnlyWhenPresent(t *testing.T) {
	input := healthyInput()
	base := PredictDiabetesRisk(input)
	assert.Equal(t, 0.0, base.RiskScore)

	input.FastingGlucose = floatPtr(130)
	input.HbA1c = floatPtr(6.8)
	withLabs := PredictDiabetesRisk(input)

	// 0.25 (glucose) + 0.25 (HbA1c)
	assert.InDelta(t, 0.5, withLabs.RiskScore, 1e-9)
	assert.Equal(t, domain.RiskHigh, withLabs.RiskLevel)
	assert.Equal(t, "5_years", withLabs.Timeframe)
}

func TestPredictDiabetesRisk_PrediabetesBrackets(t *testing.T) {
	input := healthyInput()
	input.FastingGlucose = floatPtr(110)
	input.HbA1c = floatPtr(5.9)
	p := PredictDiabetesRisk(input)
	assert.InDelta(t, 0.3, p.RiskScore, 1e-9)
}

func TestPredictGeneralDeterioration_SevenOfNine(t *testing.T) {
	// 九个固定布尔条件中命中7个 ⇒ 0.7 ⇒ high
	input := domain.HealthDataInput{
		SmokingStatus:      "current",
		BMI:                32,
		ExerciseFrequency:  0,
		AlcoholConsumption: "heavy",
		SleepHours:         5,
		StressLevel:        8,
		HasHypertension:    true,
		HasDiabetes:        true,
		HasHeartDisease:    false,
	}
	p := PredictGeneralDeterioration(input)

	assert.InDelta(t, 0.7, p.RiskScore, 1e-9)
	assert.Equal(t, domain.RiskHigh, p.RiskLevel)
	assert.Equal(t, "1_year", p.Timeframe)
	assert.Equal(t, 0.6, p.Confidence)
}

func TestPredictGeneralDeterioration_AllNine(t *testing.T) {
	input := domain.HealthDataInput{
		SmokingStatus:      "current",
		BMI:                35,
		ExerciseFrequency:  0,
		AlcoholConsumption: "heavy",
		SleepHours:         4,
		StressLevel:        9,
		HasHypertension:    true,
		HasDiabetes:        true,
		HasHeartDisease:    true,
	}
	p := PredictGeneralDeterioration(input)
	assert.InDelta(t, 0.9, p.RiskScore, 1e-9)
	assert.Equal(t, domain.RiskVeryHigh, p.RiskLevel)
}

func TestPredictGeneralDeterioration_NoRiskConditions(t *testing.T) {
	p := PredictGeneralDeterioration(healthyInput())
	assert.Equal(t, 0.0, p.RiskScore)
	assert.Equal(t, domain.RiskLow, p.RiskLevel)
}

func TestLifestyleRisk_IndependentlyClamped(t *testing.T) {
	input := domain.HealthDataInput{
		SmokingStatus:      "current",
		AlcoholConsumption: "heavy",
		ExerciseFrequency:  0,
		BMI:                33,
		SleepHours:         4,
	}
	// 0.3+0.2+0.2+0.2+0.1 = 1.0
	assert.InDelta(t, 1.0, lifestyleRisk(input), 1e-9)
}

func TestMedicalHistoryRisk_IndependentlyClamped(t *testing.T) {
	input := domain.HealthDataInput{
		HasHypertension:    true,
		HasDiabetes:        true,
		HasHeartDisease:    true,
		HasHighCholesterol: true,
	}
	// 0.3+0.3+0.3+0.2 = 1.1 ⇒ clamp 到 1.0
	assert.Equal(t, 1.0, medicalHistoryRisk(input))
}

func TestPredictors_Idempotent(t *testing.T) {
	input := domain.HealthDataInput{
		Age:           50,
		BMI:           27,
		SmokingStatus: "former",
		SleepHours:    6,
	}
	assert.Equal(t, PredictCardiovascularRisk(input), PredictCardiovascularRisk(input))
	assert.Equal(t, PredictDiabetesRisk(input), PredictDiabetesRisk(input))
	assert.Equal(t, PredictGeneralDeterioration(input), PredictGeneralDeterioration(input))
}
