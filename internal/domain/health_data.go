package domain

import (
	"time"
)

// HealthDataInput 单次评分调用的健康数据快照
// 由调用方（Service 层）从存储数据组装，临时对象，核心从不持久化
type HealthDataInput struct {
	// 人口学
	Age    int    `json:"age"`
	Gender string `json:"gender"` // male/female/other
	BMI    float64 `json:"bmi"`

	// 体征
	SystolicBP   float64 `json:"systolic_bp"`   // mmHg
	DiastolicBP  float64 `json:"diastolic_bp"`  // mmHg
	RestingHR    float64 `json:"resting_hr"`    // bpm

	// 生活方式
	SmokingStatus      string  `json:"smoking_status"` // never/former/current
	AlcoholConsumption string  `json:"alcohol_consumption"` // none/light/moderate/heavy
	ExerciseFrequency  int     `json:"exercise_frequency"`  // 次/周
	SleepHours         float64 `json:"sleep_hours"`
	StressLevel        int     `json:"stress_level"` // 1-10

	// 病史布尔标记
	HasHypertension    bool `json:"has_hypertension"`
	HasDiabetes        bool `json:"has_diabetes"`
	HasHeartDisease    bool `json:"has_heart_disease"`
	HasHighCholesterol bool `json:"has_high_cholesterol"`

	// 家族史布尔标记
	FamilyHeartDisease bool `json:"family_heart_disease"`
	FamilyDiabetes     bool `json:"family_diabetes"`
	FamilyCancer       bool `json:"family_cancer"`

	// 化验值（可选，缺失时相应检查跳过）
	FastingGlucose   *float64 `json:"fasting_glucose,omitempty"`   // mg/dL
	HbA1c            *float64 `json:"hba1c,omitempty"`             // %
	TotalCholesterol *float64 `json:"total_cholesterol,omitempty"` // mg/dL
	HDLCholesterol   *float64 `json:"hdl_cholesterol,omitempty"`   // mg/dL
	LDLCholesterol   *float64 `json:"ldl_cholesterol,omitempty"`   // mg/dL
}

// HealthObservation 单日健康观察（趋势检测输入，按时间升序）
type HealthObservation struct {
	Date             time.Time          `json:"date"`
	Vitals           map[string]float64 `json:"vitals"`            // 体征名 → 数值（缺测不出现）
	Symptoms         []string           `json:"symptoms"`          // 自由文本症状
	OverallCondition int                `json:"overall_condition"` // 1-5 总体状态评分
}
