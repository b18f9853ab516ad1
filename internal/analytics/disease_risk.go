package analytics

import (
	"strings"

	"healthvault-data/internal/domain"
)

// 各预测器的固定置信度和时间范围
const (
	cardioConfidence        = 0.7
	cardioTimeframe         = "10_years"
	diabetesConfidence      = 0.65
	diabetesTimeframe       = "5_years"
	deteriorationConfidence = 0.6
	deteriorationTimeframe  = "1_year"
)

// DiseasePrediction 疾病风险预测结果（未含持久化字段，由 Service 层补齐）
type DiseasePrediction struct {
	DiseaseType         domain.DiseaseType
	RiskScore           float64
	RiskLevel           domain.RiskLevel
	Timeframe           string
	ContributingFactors domain.ContributingFactors
	Recommendations     []string
	Confidence          float64
}

// PredictCardiovascularRisk 心血管疾病风险预测
// 加法计分：每个阈值/布尔检查贡献固定权重并附带原因说明，总分 clamp 到 [0,1]
func PredictCardiovascularRisk(input domain.HealthDataInput) DiseasePrediction {
	score := 0.0
	var reasons []string

	// 年龄分段
	switch {
	case input.Age >= 65:
		score += 0.2
		reasons = append(reasons, "Advanced age increases cardiovascular risk")
	case input.Age >= 55:
		score += 0.15
		reasons = append(reasons, "Age over 55 increases cardiovascular risk")
	case input.Age >= 45:
		score += 0.1
		reasons = append(reasons, "Age over 45 adds cardiovascular risk")
	}

	// BMI 分段
	switch {
	case input.BMI >= 30:
		score += 0.15
		reasons = append(reasons, "BMI indicates obesity")
	case input.BMI >= 25:
		score += 0.1
		reasons = append(reasons, "BMI indicates overweight")
	}

	// 血压（体征阈值或已确诊高血压）
	if input.SystolicBP >= 140 || input.DiastolicBP >= 90 || input.HasHypertension {
		score += 0.2
		reasons = append(reasons, "Elevated blood pressure")
	}

	// 吸烟
	switch input.SmokingStatus {
	case "current":
		score += 0.2
		reasons = append(reasons, "Current smoking significantly increases risk")
	case "former":
		score += 0.05
		reasons = append(reasons, "History of smoking")
	}

	// 胆固醇（化验值或已确诊）
	if (input.TotalCholesterol != nil && *input.TotalCholesterol >= 240) || input.HasHighCholesterol {
		score += 0.15
		reasons = append(reasons, "High cholesterol level")
	}

	// 糖尿病
	if input.HasDiabetes {
		score += 0.15
		reasons = append(reasons, "Diabetes increases cardiovascular risk")
	}

	// 家族史
	if input.FamilyHeartDisease {
		score += 0.1
		reasons = append(reasons, "Family history of heart disease")
	}

	// 缺乏运动
	if input.ExerciseFrequency == 0 {
		score += 0.05
		reasons = append(reasons, "No regular physical activity")
	}

	score = clamp01(score)
	level := ClassifyRiskLevel(score)

	familyWeight := 0.0
	if input.FamilyHeartDisease {
		familyWeight = 0.1
	}

	return DiseasePrediction{
		DiseaseType: domain.DiseaseCardiovascular,
		RiskScore:   score,
		RiskLevel:   level,
		Timeframe:   cardioTimeframe,
		ContributingFactors: domain.ContributingFactors{
			Genetic:        familyWeight,
			Lifestyle:      lifestyleRisk(input),
			MedicalHistory: medicalHistoryRisk(input),
			FamilyHistory:  familyWeight,
		},
		Recommendations: assembleRecommendations(level, reasons, "cardiologist"),
		Confidence:      cardioConfidence,
	}
}

// PredictDiabetesRisk 2型糖尿病风险预测
func PredictDiabetesRisk(input domain.HealthDataInput) DiseasePrediction {
	score := 0.0
	var reasons []string

	if input.Age >= 45 {
		score += 0.1
		reasons = append(reasons, "Age over 45 increases diabetes risk")
	}

	switch {
	case input.BMI >= 30:
		score += 0.2
		reasons = append(reasons, "BMI indicates obesity")
	case input.BMI >= 25:
		score += 0.1
		reasons = append(reasons, "BMI indicates overweight")
	}

	if input.FamilyDiabetes {
		score += 0.15
		reasons = append(reasons, "Family history of diabetes")
	}

	if input.HasHypertension {
		score += 0.1
		reasons = append(reasons, "Elevated blood pressure")
	}

	if input.ExerciseFrequency == 0 {
		score += 0.1
		reasons = append(reasons, "No regular physical activity")
	}

	// 空腹血糖（仅在化验值存在时检查）
	if input.FastingGlucose != nil {
		switch {
		case *input.FastingGlucose >= 126:
			score += 0.25
			reasons = append(reasons, "Fasting glucose in diabetic range")
		case *input.FastingGlucose >= 100:
			score += 0.15
			reasons = append(reasons, "Fasting glucose indicates prediabetes")
		}
	}

	// HbA1c（仅在化验值存在时检查）
	if input.HbA1c != nil {
		switch {
		case *input.HbA1c >= 6.5:
			score += 0.25
			reasons = append(reasons, "HbA1c in diabetic range")
		case *input.HbA1c >= 5.7:
			score += 0.15
			reasons = append(reasons, "HbA1c indicates prediabetes")
		}
	}

	if input.SmokingStatus == "current" {
		score += 0.05
		reasons = append(reasons, "Current smoking increases insulin resistance")
	}

	score = clamp01(score)
	level := ClassifyRiskLevel(score)

	familyWeight := 0.0
	if input.FamilyDiabetes {
		familyWeight = 0.15
	}

	return DiseasePrediction{
		DiseaseType: domain.DiseaseDiabetes,
		RiskScore:   score,
		RiskLevel:   level,
		Timeframe:   diabetesTimeframe,
		ContributingFactors: domain.ContributingFactors{
			Genetic:        familyWeight,
			Lifestyle:      lifestyleRisk(input),
			MedicalHistory: medicalHistoryRisk(input),
			FamilyHistory:  familyWeight,
		},
		Recommendations: assembleRecommendations(level, reasons, "endocrinologist"),
		Confidence:      diabetesConfidence,
	}
}

// PredictGeneralDeterioration 整体健康恶化风险预测
// 统计九个固定布尔风险条件的命中数，线性缩放（count × 0.1，clamp 到 1.0）
func PredictGeneralDeterioration(input domain.HealthDataInput) DiseasePrediction {
	conditions := []bool{
		input.SmokingStatus == "current",
		input.BMI > 30,
		input.ExerciseFrequency == 0,
		input.AlcoholConsumption == "heavy",
		input.SleepHours < 5,
		input.StressLevel > 7,
		input.HasHypertension,
		input.HasDiabetes,
		input.HasHeartDisease,
	}

	count := 0
	for _, hit := range conditions {
		if hit {
			count++
		}
	}

	score := clamp01(float64(count) * 0.1)
	level := classifyDeteriorationLevel(score)

	recs := []string{}
	if level == domain.RiskHigh || level == domain.RiskVeryHigh {
		recs = append(recs, "Schedule a comprehensive health evaluation with your physician")
	}
	if input.SmokingStatus == "current" {
		recs = append(recs, "Quitting smoking is the single most impactful change you can make")
	}
	if input.ExerciseFrequency == 0 {
		recs = append(recs, "Introduce light physical activity such as daily walks")
	}
	if input.SleepHours < 5 {
		recs = append(recs, "Prioritize sleep: aim for 7-9 hours per night")
	}
	if input.StressLevel > 7 {
		recs = append(recs, "Consider stress management techniques or counseling")
	}
	recs = append(recs, generalClosingAdvice...)

	return DiseasePrediction{
		DiseaseType: domain.DiseaseDeterioration,
		RiskScore:   score,
		RiskLevel:   level,
		Timeframe:   deteriorationTimeframe,
		ContributingFactors: domain.ContributingFactors{
			Genetic:        0,
			Lifestyle:      lifestyleRisk(input),
			MedicalHistory: medicalHistoryRisk(input),
			FamilyHistory:  0,
		},
		Recommendations: recs,
		Confidence:      deteriorationConfidence,
	}
}

// classifyDeteriorationLevel 恶化预测器使用自己的分级边界
// 与通用分级不同：计数型分数（0.1 步进）下 0.7 仍属 high，0.8 起 very_high
func classifyDeteriorationLevel(score float64) domain.RiskLevel {
	switch {
	case score < 0.3:
		return domain.RiskLow
	case score < 0.5:
		return domain.RiskModerate
	case score < 0.8:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// lifestyleRisk 生活方式风险辅助加权和（独立 clamp 到 0-1）
func lifestyleRisk(input domain.HealthDataInput) float64 {
	risk := 0.0
	switch input.SmokingStatus {
	case "current":
		risk += 0.3
	case "former":
		risk += 0.1
	}
	switch input.AlcoholConsumption {
	case "heavy":
		risk += 0.2
	case "moderate":
		risk += 0.1
	}
	if input.ExerciseFrequency < 2 {
		risk += 0.2
	}
	switch {
	case input.BMI >= 30:
		risk += 0.2
	case input.BMI >= 25:
		risk += 0.1
	}
	if input.SleepHours < 6 || input.SleepHours > 9 {
		risk += 0.1
	}
	return clamp01(risk)
}

// medicalHistoryRisk 病史风险辅助加权和（独立 clamp 到 0-1）
func medicalHistoryRisk(input domain.HealthDataInput) float64 {
	risk := 0.0
	if input.HasHypertension {
		risk += 0.3
	}
	if input.HasDiabetes {
		risk += 0.3
	}
	if input.HasHeartDisease {
		risk += 0.3
	}
	if input.HasHighCholesterol {
		risk += 0.2
	}
	return clamp01(risk)
}

// generalClosingAdvice 固定收尾建议
var generalClosingAdvice = []string{
	"Maintain a balanced diet rich in vegetables and whole grains",
	"Stay up to date with routine health screenings",
}

// assembleRecommendations 组装建议列表
// 顺序固定：等级触发的就诊建议 → 按原因关键词触发的针对性建议 → 固定收尾建议。
// 关键词匹配沿用原因字符串的子串包含判断（与产出文案强耦合，修改文案需同步检查）。
func assembleRecommendations(level domain.RiskLevel, reasons []string, specialist string) []string {
	recs := []string{}

	if level == domain.RiskHigh || level == domain.RiskVeryHigh {
		recs = append(recs, "Consult a "+specialist+" for a detailed evaluation")
	}

	joined := strings.Join(reasons, "; ")
	if strings.Contains(joined, "blood pressure") {
		recs = append(recs, "Monitor blood pressure regularly and reduce sodium intake")
	}
	if strings.Contains(joined, "smoking") {
		recs = append(recs, "Enroll in a smoking cessation program")
	}
	if strings.Contains(joined, "cholesterol") {
		recs = append(recs, "Reduce saturated fat intake and recheck lipid panel in 3 months")
	}
	if strings.Contains(joined, "glucose") {
		recs = append(recs, "Reduce refined sugar intake and monitor fasting glucose")
	}
	if strings.Contains(joined, "HbA1c") {
		recs = append(recs, "Repeat HbA1c testing in 3 months")
	}
	if strings.Contains(joined, "BMI") {
		recs = append(recs, "Work toward gradual weight loss through diet and exercise")
	}

	recs = append(recs, generalClosingAdvice...)
	return recs
}
