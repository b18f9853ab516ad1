package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/models"
	"healthvault-data/internal/service"
)

// RecordsHandler 健康档案CRUD Handler（就诊记录/用药/预约）
type RecordsHandler struct {
	recordsService service.RecordsService
	logger         *zap.Logger
}

// NewRecordsHandler 创建健康档案 Handler
func NewRecordsHandler(recordsService service.RecordsService, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{
		recordsService: recordsService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/data/api/v1/records" && r.Method == http.MethodGet:
		h.ListRecords(w, r)
	case path == "/data/api/v1/records" && r.Method == http.MethodPost:
		h.CreateRecord(w, r)
	case strings.HasPrefix(path, "/data/api/v1/records/"):
		h.recordByID(w, r, strings.TrimPrefix(path, "/data/api/v1/records/"))
	case path == "/data/api/v1/medications" && r.Method == http.MethodGet:
		h.ListMedications(w, r)
	case path == "/data/api/v1/medications" && r.Method == http.MethodPost:
		h.CreateMedication(w, r)
	case strings.HasPrefix(path, "/data/api/v1/medications/"):
		h.medicationByID(w, r, strings.TrimPrefix(path, "/data/api/v1/medications/"))
	case path == "/data/api/v1/appointments" && r.Method == http.MethodGet:
		h.ListAppointments(w, r)
	case path == "/data/api/v1/appointments" && r.Method == http.MethodPost:
		h.CreateAppointment(w, r)
	case strings.HasPrefix(path, "/data/api/v1/appointments/"):
		h.appointmentByID(w, r, strings.TrimPrefix(path, "/data/api/v1/appointments/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *RecordsHandler) recordByID(w http.ResponseWriter, r *http.Request, recordID string) {
	if recordID == "" || strings.Contains(recordID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.GetRecord(w, r, recordID)
	case http.MethodPut:
		h.UpdateRecord(w, r, recordID)
	case http.MethodDelete:
		h.DeleteRecord(w, r, recordID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordsHandler) medicationByID(w http.ResponseWriter, r *http.Request, medicationID string) {
	if medicationID == "" || strings.Contains(medicationID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.GetMedication(w, r, medicationID)
	case http.MethodPut:
		h.UpdateMedication(w, r, medicationID)
	case http.MethodDelete:
		h.DeleteMedication(w, r, medicationID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordsHandler) appointmentByID(w http.ResponseWriter, r *http.Request, appointmentID string) {
	if appointmentID == "" || strings.Contains(appointmentID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.GetAppointment(w, r, appointmentID)
	case http.MethodPut:
		h.UpdateAppointment(w, r, appointmentID)
	case http.MethodDelete:
		h.DeleteAppointment(w, r, appointmentID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ============================================
// 就诊记录
// ============================================

// recordPayload 就诊记录创建/更新请求体
type recordPayload struct {
	RecordType string `json:"record_type"`
	Title      string `json:"title"`
	Provider   string `json:"provider"`
	RecordDate string `json:"record_date"` // YYYY-MM-DD
	Details    string `json:"details"`
}

func (p *recordPayload) toDomain() (*domain.MedicalRecord, error) {
	record := &domain.MedicalRecord{
		RecordType: p.RecordType,
		Title:      p.Title,
		Provider:   p.Provider,
		Details:    p.Details,
	}
	if p.RecordDate != "" {
		d, err := parseDate(p.RecordDate)
		if err != nil {
			return nil, fmt.Errorf("invalid record_date: %s", p.RecordDate)
		}
		record.RecordDate = &d
	}
	return record, nil
}

// ListRecords GET /data/api/v1/records?type=&page=&size=
func (h *RecordsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	q := r.URL.Query()
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 50)

	records, total, err := h.recordsService.ListRecords(r.Context(), userID, q.Get("type"), page, size)
	if err != nil {
		h.logger.Error("Failed to list medical records", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list records: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": records,
		"pagination": models.BackendPagination{
			Size:  size,
			Page:  page,
			Count: total,
		},
	}))
}

// GetRecord GET /data/api/v1/records/:id
func (h *RecordsHandler) GetRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	record, err := h.recordsService.GetRecord(r.Context(), userID, recordID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get record: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(record))
}

// CreateRecord POST /data/api/v1/records
func (h *RecordsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	record, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	recordID, err := h.recordsService.CreateRecord(r.Context(), userID, record)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create record: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"record_id": recordID}))
}

// UpdateRecord PUT /data/api/v1/records/:id
func (h *RecordsHandler) UpdateRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	record, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if err := h.recordsService.UpdateRecord(r.Context(), userID, recordID, record); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update record: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// DeleteRecord DELETE /data/api/v1/records/:id
func (h *RecordsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request, recordID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	if err := h.recordsService.DeleteRecord(r.Context(), userID, recordID); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete record: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// ============================================
// 用药记录
// ============================================

// medicationPayload 用药创建/更新请求体
type medicationPayload struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	IsActive  *bool  `json:"is_active"`
	Notes     string `json:"notes"`
}

func (p *medicationPayload) toDomain() (*domain.Medication, error) {
	medication := &domain.Medication{
		Name:      p.Name,
		Dosage:    p.Dosage,
		Frequency: p.Frequency,
		IsActive:  true,
		Notes:     p.Notes,
	}
	if p.IsActive != nil {
		medication.IsActive = *p.IsActive
	}
	if p.StartDate != "" {
		d, err := parseDate(p.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %s", p.StartDate)
		}
		medication.StartDate = &d
	}
	if p.EndDate != "" {
		d, err := parseDate(p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %s", p.EndDate)
		}
		medication.EndDate = &d
	}
	return medication, nil
}

// ListMedications GET /data/api/v1/medications?active=true
func (h *RecordsHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	medications, err := h.recordsService.ListMedications(r.Context(), userID, activeOnly)
	if err != nil {
		h.logger.Error("Failed to list medications", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list medications: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": medications, "total": len(medications)}))
}

// GetMedication GET /data/api/v1/medications/:id
func (h *RecordsHandler) GetMedication(w http.ResponseWriter, r *http.Request, medicationID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	medication, err := h.recordsService.GetMedication(r.Context(), userID, medicationID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get medication: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(medication))
}

// CreateMedication POST /data/api/v1/medications
func (h *RecordsHandler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload medicationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	medication, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	medicationID, err := h.recordsService.CreateMedication(r.Context(), userID, medication)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create medication: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"medication_id": medicationID}))
}

// UpdateMedication PUT /data/api/v1/medications/:id
func (h *RecordsHandler) UpdateMedication(w http.ResponseWriter, r *http.Request, medicationID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload medicationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	medication, err := payload.toDomain()
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	if err := h.recordsService.UpdateMedication(r.Context(), userID, medicationID, medication); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update medication: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// DeleteMedication DELETE /data/api/v1/medications/:id
func (h *RecordsHandler) DeleteMedication(w http.ResponseWriter, r *http.Request, medicationID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	if err := h.recordsService.DeleteMedication(r.Context(), userID, medicationID); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete medication: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// ============================================
// 预约
// ============================================

// appointmentPayload 预约创建/更新请求体
type appointmentPayload struct {
	Provider    string    `json:"provider"`
	Purpose     string    `json:"purpose"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
}

func (p *appointmentPayload) toDomain() *domain.Appointment {
	return &domain.Appointment{
		Provider:    p.Provider,
		Purpose:     p.Purpose,
		ScheduledAt: p.ScheduledAt,
		Status:      p.Status,
		Location:    p.Location,
		Notes:       p.Notes,
	}
}

// ListAppointments GET /data/api/v1/appointments?status=&upcoming=true
func (h *RecordsHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	q := r.URL.Query()
	var from time.Time
	if q.Get("upcoming") == "true" {
		from = time.Now()
	}

	appointments, err := h.recordsService.ListAppointments(r.Context(), userID, q.Get("status"), from)
	if err != nil {
		h.logger.Error("Failed to list appointments", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list appointments: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": appointments, "total": len(appointments)}))
}

// GetAppointment GET /data/api/v1/appointments/:id
func (h *RecordsHandler) GetAppointment(w http.ResponseWriter, r *http.Request, appointmentID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	appointment, err := h.recordsService.GetAppointment(r.Context(), userID, appointmentID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get appointment: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(appointment))
}

// CreateAppointment POST /data/api/v1/appointments
func (h *RecordsHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload appointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	appointmentID, err := h.recordsService.CreateAppointment(r.Context(), userID, payload.toDomain())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create appointment: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"appointment_id": appointmentID}))
}

// UpdateAppointment PUT /data/api/v1/appointments/:id
func (h *RecordsHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request, appointmentID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload appointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	if err := h.recordsService.UpdateAppointment(r.Context(), userID, appointmentID, payload.toDomain()); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update appointment: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// DeleteAppointment DELETE /data/api/v1/appointments/:id
func (h *RecordsHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request, appointmentID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	if err := h.recordsService.DeleteAppointment(r.Context(), userID, appointmentID); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete appointment: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}
