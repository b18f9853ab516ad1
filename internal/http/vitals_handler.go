package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/service"
)

// VitalsHandler 体征观察 Handler
type VitalsHandler struct {
	monitoringService service.MonitoringService
	logger            *zap.Logger
}

// NewVitalsHandler 创建体征观察 Handler
func NewVitalsHandler(monitoringService service.MonitoringService, logger *zap.Logger) *VitalsHandler {
	return &VitalsHandler{
		monitoringService: monitoringService,
		logger:            logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *VitalsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/data/api/v1/vitals/observations" && r.Method == http.MethodGet:
		h.ListObservations(w, r)
	case path == "/data/api/v1/vitals/observations" && r.Method == http.MethodPost:
		h.RecordObservation(w, r)
	case strings.HasPrefix(path, "/data/api/v1/vitals/observations/") && r.Method == http.MethodDelete:
		date := strings.TrimPrefix(path, "/data/api/v1/vitals/observations/")
		if date == "" || strings.Contains(date, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeleteObservation(w, r, date)
	case path == "/data/api/v1/vitals/export" && r.Method == http.MethodGet:
		h.ExportObservations(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// observationPayload 观察记录请求体
type observationPayload struct {
	ObservedOn       string             `json:"observed_on"` // YYYY-MM-DD
	Vitals           map[string]float64 `json:"vitals"`
	Symptoms         []string           `json:"symptoms"`
	OverallCondition int                `json:"overall_condition"`
	Source           string             `json:"source"`
}

// ListObservations GET /data/api/v1/vitals/observations?since=&limit=
func (h *VitalsHandler) ListObservations(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	q := r.URL.Query()
	var since time.Time
	if s := q.Get("since"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("invalid since date: %s", s)))
			return
		}
		since = d
	}

	records, err := h.monitoringService.ListObservations(r.Context(), userID, since, parseInt(q.Get("limit"), 0))
	if err != nil {
		h.logger.Error("Failed to list observations", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list observations: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": records, "total": len(records)}))
}

// RecordObservation POST /data/api/v1/vitals/observations
func (h *VitalsHandler) RecordObservation(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload observationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	observedOn, err := parseDate(payload.ObservedOn)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("invalid observed_on date: %s", payload.ObservedOn)))
		return
	}

	vitals := payload.Vitals
	if vitals == nil {
		vitals = map[string]float64{}
	}
	vitalsJSON, err := json.Marshal(vitals)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid vitals"))
		return
	}

	observationID, err := h.monitoringService.RecordObservation(r.Context(), userID, &domain.VitalSignRecord{
		ObservedOn:       observedOn,
		Vitals:           vitalsJSON,
		Symptoms:         payload.Symptoms,
		OverallCondition: payload.OverallCondition,
		Source:           payload.Source,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to record observation: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"observation_id": observationID}))
}

// DeleteObservation DELETE /data/api/v1/vitals/observations/:date
func (h *VitalsHandler) DeleteObservation(w http.ResponseWriter, r *http.Request, date string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	observedOn, err := parseDate(date)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("invalid date: %s", date)))
		return
	}

	if err := h.monitoringService.DeleteObservation(r.Context(), userID, observedOn); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete observation: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// ExportObservations GET /data/api/v1/vitals/export?since=
func (h *VitalsHandler) ExportObservations(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("invalid since date: %s", s)))
			return
		}
		since = d
	}

	records, err := h.monitoringService.ListObservations(r.Context(), userID, since, 0)
	if err != nil {
		h.logger.Error("Failed to load observations for export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to load observations: %v", err)))
		return
	}

	data, err := GenerateVitalsExport(records)
	if err != nil {
		h.logger.Error("Failed to generate vitals export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	filename := fmt.Sprintf("vital-signs-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
