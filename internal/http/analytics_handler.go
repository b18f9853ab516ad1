package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/service"
)

// AnalyticsHandler 健康分析 Handler（疾病风险预测/趋势检测/风险因子）
type AnalyticsHandler struct {
	monitoringService service.MonitoringService
	logger            *zap.Logger
}

// NewAnalyticsHandler 创建健康分析 Handler
func NewAnalyticsHandler(monitoringService service.MonitoringService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		monitoringService: monitoringService,
		logger:            logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AnalyticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/data/api/v1/analytics/predictions" && r.Method == http.MethodPost:
		h.RunPredictions(w, r)
	case path == "/data/api/v1/analytics/predictions" && r.Method == http.MethodGet:
		h.GetPredictionHistory(w, r)
	case path == "/data/api/v1/analytics/patterns/detect" && r.Method == http.MethodPost:
		h.DetectPatterns(w, r)
	case path == "/data/api/v1/analytics/patterns" && r.Method == http.MethodGet:
		h.GetPatternHistory(w, r)
	case path == "/data/api/v1/analytics/risk-factors" && r.Method == http.MethodPost:
		h.AnalyzeRiskFactors(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// RunPredictions POST /data/api/v1/analytics/predictions
// 请求体为 HealthDataInput；运行全部预测器并持久化
func (h *AnalyticsHandler) RunPredictions(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var input domain.HealthDataInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	predictions, err := h.monitoringService.PredictRisks(r.Context(), userID, input)
	if err != nil {
		h.logger.Error("Failed to run predictions", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to run predictions: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": predictions, "total": len(predictions)}))
}

// GetPredictionHistory GET /data/api/v1/analytics/predictions?type=&limit=
func (h *AnalyticsHandler) GetPredictionHistory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	q := r.URL.Query()
	predictions, err := h.monitoringService.GetPredictionHistory(
		r.Context(), userID, domain.DiseaseType(q.Get("type")), parseInt(q.Get("limit"), 20))
	if err != nil {
		h.logger.Error("Failed to get prediction history", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get predictions: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": predictions, "total": len(predictions)}))
}

// DetectPatterns POST /data/api/v1/analytics/patterns/detect?window_days=
func (h *AnalyticsHandler) DetectPatterns(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	windowDays := parseInt(r.URL.Query().Get("window_days"), 30)
	patterns, err := h.monitoringService.DetectDeterioration(r.Context(), userID, windowDays)
	if err != nil {
		h.logger.Error("Failed to detect patterns", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to detect patterns: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": patterns, "total": len(patterns)}))
}

// GetPatternHistory GET /data/api/v1/analytics/patterns?limit=
func (h *AnalyticsHandler) GetPatternHistory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	patterns, err := h.monitoringService.GetPatternHistory(r.Context(), userID, parseInt(r.URL.Query().Get("limit"), 20))
	if err != nil {
		h.logger.Error("Failed to get pattern history", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get patterns: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": patterns, "total": len(patterns)}))
}

// AnalyzeRiskFactors POST /data/api/v1/analytics/risk-factors
// 纯计算接口，不持久化
func (h *AnalyticsHandler) AnalyzeRiskFactors(w http.ResponseWriter, r *http.Request) {
	var input domain.HealthDataInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	analysis := h.monitoringService.AnalyzeRiskFactors(input)
	writeJSON(w, http.StatusOK, Ok(analysis))
}
