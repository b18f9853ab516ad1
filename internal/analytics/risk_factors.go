package analytics

import (
	"sort"

	"healthvault-data/internal/domain"
)

// 风险因子分析参数
const (
	protectiveDiscount   = 0.5 // 保护因子按半权重抵扣
	criticalRankBoost    = 1.5 // critical 严重度的排序加权
	maxPriorityFactors   = 5   // 参与行动清单的因子数上限
	maxPriorityActions   = 8   // 行动清单总条数上限
	recsPerFactor        = 2   // 每个因子取前N条建议
	increasingTrendRatio = 0.5 // immediate 因子占比超过此值 ⇒ increasing
	decreasingTrendRatio = 0.2 // immediate 因子占比低于此值 ⇒ decreasing
)

// AnalyzeRiskFactors 风险因子枚举与分析
// 对同一底层状态（如吸烟状况）最多产出风险因子或保护因子之一，绝不同时产出。
// 总分 = Σ风险因子影响 − 0.5×Σ保护因子影响，clamp 到 [0,1]。
func AnalyzeRiskFactors(input domain.HealthDataInput) domain.RiskFactorAnalysis {
	var risks, protective []domain.RiskFactor

	// ---------- 生活方式 ----------
	switch input.SmokingStatus {
	case "current":
		risks = append(risks, domain.RiskFactor{
			ID:         "smoking_current",
			Name:       "Current smoking",
			Category:   domain.CategoryLifestyle,
			Severity:   "critical",
			Impact:     0.35,
			Modifiable: true,
			Description: "Active tobacco use damages nearly every organ system " +
				"and is the leading preventable cause of disease",
			Recommendations: []string{
				"Enroll in a smoking cessation program",
				"Discuss nicotine replacement therapy with your physician",
				"Set a quit date within the next 30 days",
			},
			TimeToImpact: "immediate",
		})
	case "never":
		protective = append(protective, domain.RiskFactor{
			ID:              "never_smoked",
			Name:            "Never smoked",
			Category:        domain.CategoryLifestyle,
			Severity:        "low",
			Impact:          0.1,
			Modifiable:      false,
			Description:     "No history of tobacco use",
			Recommendations: []string{"Continue avoiding tobacco products"},
			TimeToImpact:    "long_term",
		})
	}

	if input.AlcoholConsumption == "heavy" {
		risks = append(risks, domain.RiskFactor{
			ID:          "alcohol_heavy",
			Name:        "Heavy alcohol consumption",
			Category:    domain.CategoryLifestyle,
			Severity:    "high",
			Impact:      0.2,
			Modifiable:  true,
			Description: "Heavy drinking raises blood pressure and liver disease risk",
			Recommendations: []string{
				"Reduce alcohol intake to moderate levels or below",
				"Track weekly consumption",
			},
			TimeToImpact: "short_term",
		})
	}

	switch {
	case input.ExerciseFrequency < 1:
		risks = append(risks, domain.RiskFactor{
			ID:          "physical_inactivity",
			Name:        "Physical inactivity",
			Category:    domain.CategoryLifestyle,
			Severity:    "moderate",
			Impact:      0.15,
			Modifiable:  true,
			Description: "Sedentary lifestyle with no weekly exercise",
			Recommendations: []string{
				"Start with 20-minute walks three times per week",
				"Build up to 150 minutes of moderate activity weekly",
			},
			TimeToImpact: "short_term",
		})
	case input.ExerciseFrequency >= 3:
		protective = append(protective, domain.RiskFactor{
			ID:              "regular_exercise",
			Name:            "Regular exercise",
			Category:        domain.CategoryLifestyle,
			Severity:        "low",
			Impact:          0.15,
			Modifiable:      false,
			Description:     "Exercises three or more times per week",
			Recommendations: []string{"Maintain your current activity level"},
			TimeToImpact:    "long_term",
		})
	}

	switch {
	case input.BMI >= 30:
		risks = append(risks, domain.RiskFactor{
			ID:          "obesity",
			Name:        "Obesity",
			Category:    domain.CategoryLifestyle,
			Severity:    "high",
			Impact:      0.2,
			Modifiable:  true,
			Description: "BMI of 30 or above",
			Recommendations: []string{
				"Work toward gradual weight loss through diet and exercise",
				"Consider a referral to a dietitian",
			},
			TimeToImpact: "long_term",
		})
	case input.BMI >= 18.5 && input.BMI < 25:
		protective = append(protective, domain.RiskFactor{
			ID:              "healthy_bmi",
			Name:            "Healthy BMI",
			Category:        domain.CategoryLifestyle,
			Severity:        "low",
			Impact:          0.1,
			Modifiable:      false,
			Description:     "BMI within the healthy range",
			Recommendations: []string{"Maintain your current weight"},
			TimeToImpact:    "long_term",
		})
	}

	if input.SleepHours > 0 && input.SleepHours < 6 {
		risks = append(risks, domain.RiskFactor{
			ID:          "sleep_deprivation",
			Name:        "Chronic sleep deprivation",
			Category:    domain.CategoryLifestyle,
			Severity:    "moderate",
			Impact:      0.1,
			Modifiable:  true,
			Description: "Averaging fewer than 6 hours of sleep per night",
			Recommendations: []string{
				"Establish a consistent sleep schedule",
				"Aim for 7-9 hours per night",
			},
			TimeToImpact: "short_term",
		})
	}

	if input.StressLevel >= 7 {
		risks = append(risks, domain.RiskFactor{
			ID:          "chronic_stress",
			Name:        "High stress level",
			Category:    domain.CategoryLifestyle,
			Severity:    "moderate",
			Impact:      0.1,
			Modifiable:  true,
			Description: "Self-reported stress level of 7 or above",
			Recommendations: []string{
				"Practice daily relaxation techniques",
				"Consider counseling or stress management programs",
			},
			TimeToImpact: "immediate",
		})
	}

	// ---------- 病史 ----------
	if input.HasHypertension {
		risks = append(risks, domain.RiskFactor{
			ID:          "hypertension",
			Name:        "Hypertension",
			Category:    domain.CategoryMedical,
			Severity:    "high",
			Impact:      0.25,
			Modifiable:  true,
			Description: "Diagnosed high blood pressure",
			Recommendations: []string{
				"Take prescribed medication consistently",
				"Monitor blood pressure at home",
			},
			TimeToImpact: "immediate",
		})
	}

	if input.HasDiabetes {
		risks = append(risks, domain.RiskFactor{
			ID:          "diabetes",
			Name:        "Diabetes",
			Category:    domain.CategoryMedical,
			Severity:    "high",
			Impact:      0.25,
			Modifiable:  true,
			Description: "Diagnosed diabetes",
			Recommendations: []string{
				"Keep HbA1c within your target range",
				"Attend regular diabetic checkups",
			},
			TimeToImpact: "immediate",
		})
	}

	if input.HasHeartDisease {
		risks = append(risks, domain.RiskFactor{
			ID:          "heart_disease",
			Name:        "Heart disease",
			Category:    domain.CategoryMedical,
			Severity:    "critical",
			Impact:      0.3,
			Modifiable:  false,
			Description: "Diagnosed cardiovascular disease",
			Recommendations: []string{
				"Follow your cardiologist's treatment plan",
				"Report new chest pain or breathlessness immediately",
			},
			TimeToImpact: "immediate",
		})
	}

	if input.HasHighCholesterol {
		risks = append(risks, domain.RiskFactor{
			ID:          "high_cholesterol",
			Name:        "High cholesterol",
			Category:    domain.CategoryMedical,
			Severity:    "moderate",
			Impact:      0.15,
			Modifiable:  true,
			Description: "Diagnosed elevated cholesterol",
			Recommendations: []string{
				"Reduce saturated fat intake",
				"Recheck lipid panel as advised",
			},
			TimeToImpact: "short_term",
		})
	}

	// ---------- 遗传/家族史 ----------
	if input.FamilyHeartDisease {
		risks = append(risks, domain.RiskFactor{
			ID:          "family_heart_disease",
			Name:        "Family history of heart disease",
			Category:    domain.CategoryGenetic,
			Severity:    "moderate",
			Impact:      0.15,
			Modifiable:  false,
			Description: "Close relatives diagnosed with cardiovascular disease",
			Recommendations: []string{
				"Begin cardiovascular screening earlier than standard guidelines",
				"Keep blood pressure and cholesterol well controlled",
			},
			TimeToImpact: "long_term",
		})
	}

	if input.FamilyDiabetes {
		risks = append(risks, domain.RiskFactor{
			ID:          "family_diabetes",
			Name:        "Family history of diabetes",
			Category:    domain.CategoryGenetic,
			Severity:    "moderate",
			Impact:      0.1,
			Modifiable:  false,
			Description: "Close relatives diagnosed with diabetes",
			Recommendations: []string{
				"Screen fasting glucose annually",
				"Maintain a healthy weight",
			},
			TimeToImpact: "long_term",
		})
	}

	if input.FamilyCancer {
		risks = append(risks, domain.RiskFactor{
			ID:          "family_cancer",
			Name:        "Family history of cancer",
			Category:    domain.CategoryGenetic,
			Severity:    "moderate",
			Impact:      0.1,
			Modifiable:  false,
			Description: "Close relatives diagnosed with cancer",
			Recommendations: []string{
				"Follow age-appropriate cancer screening guidelines",
				"Discuss family history with your physician",
			},
			TimeToImpact: "long_term",
		})
	}

	return domain.RiskFactorAnalysis{
		RiskFactors:       risks,
		ProtectiveFactors: protective,
		TotalRiskScore:    totalRiskScore(risks, protective),
		PriorityActions:   priorityActions(risks),
		RiskTrend:         riskTrend(risks),
	}
}

// totalRiskScore 总分 = Σ风险影响 − 0.5×Σ保护影响，clamp [0,1]
func totalRiskScore(risks, protective []domain.RiskFactor) float64 {
	total := 0.0
	for _, f := range risks {
		total += f.Impact
	}
	for _, f := range protective {
		total -= protectiveDiscount * f.Impact
	}
	return clamp01(total)
}

// priorityActions 优先行动清单
// 仅可改变的风险因子参与；按 impact ×（critical 时 1.5）降序；
// 取前5个因子，各取前2条建议，总数截断到8条
func priorityActions(risks []domain.RiskFactor) []string {
	var modifiable []domain.RiskFactor
	for _, f := range risks {
		if f.Modifiable {
			modifiable = append(modifiable, f)
		}
	}

	sort.SliceStable(modifiable, func(i, j int) bool {
		return rankWeight(modifiable[i]) > rankWeight(modifiable[j])
	})

	if len(modifiable) > maxPriorityFactors {
		modifiable = modifiable[:maxPriorityFactors]
	}

	actions := []string{}
	for _, f := range modifiable {
		recs := f.Recommendations
		if len(recs) > recsPerFactor {
			recs = recs[:recsPerFactor]
		}
		actions = append(actions, recs...)
	}
	if len(actions) > maxPriorityActions {
		actions = actions[:maxPriorityActions]
	}
	return actions
}

func rankWeight(f domain.RiskFactor) float64 {
	w := f.Impact
	if f.Severity == "critical" {
		w *= criticalRankBoost
	}
	return w
}

// riskTrend 粗粒度趋势判断
// immediate 因子占比 >50% ⇒ increasing，<20% ⇒ decreasing，否则 stable
func riskTrend(risks []domain.RiskFactor) string {
	if len(risks) == 0 {
		return "stable"
	}
	immediate := 0
	for _, f := range risks {
		if f.TimeToImpact == "immediate" {
			immediate++
		}
	}
	ratio := float64(immediate) / float64(len(risks))
	switch {
	case ratio > increasingTrendRatio:
		return "increasing"
	case ratio < decreasingTrendRatio:
		return "decreasing"
	default:
		return "stable"
	}
}
