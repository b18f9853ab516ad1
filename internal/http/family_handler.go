package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"healthvault-data/internal/analytics"
	"healthvault-data/internal/domain"
	"healthvault-data/internal/service"
)

// FamilyHandler 家族病史 Handler
type FamilyHandler struct {
	familyService service.FamilyService
	logger        *zap.Logger
}

// NewFamilyHandler 创建家族病史 Handler
func NewFamilyHandler(familyService service.FamilyService, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *FamilyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/data/api/v1/family/members" && r.Method == http.MethodGet:
		h.ListMembers(w, r)
	case path == "/data/api/v1/family/members" && r.Method == http.MethodPost:
		h.CreateMember(w, r)
	case strings.HasPrefix(path, "/data/api/v1/family/members/"):
		memberID := strings.TrimPrefix(path, "/data/api/v1/family/members/")
		if memberID == "" || strings.Contains(memberID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetMember(w, r, memberID)
		case http.MethodPut:
			h.UpdateMember(w, r, memberID)
		case http.MethodDelete:
			h.DeleteMember(w, r, memberID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == "/data/api/v1/family/tree" && r.Method == http.MethodGet:
		h.GetFamilyTree(w, r)
	case path == "/data/api/v1/family/risk-assessments" && r.Method == http.MethodGet:
		h.GetRiskAssessments(w, r)
	case path == "/data/api/v1/family/risk-assessments/recalculate" && r.Method == http.MethodPost:
		h.RecalculateAssessments(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// memberPayload 成员创建/更新请求体
type memberPayload struct {
	Relationship string                   `json:"relationship"`
	Name         string                   `json:"name"`
	Gender       string                   `json:"gender"`
	BirthYear    *int                     `json:"birth_year"`
	DeathYear    *int                     `json:"death_year"`
	IsAlive      *bool                    `json:"is_alive"`
	Generation   *int                     `json:"generation"`
	Position     int                      `json:"position"`
	ParentID     *string                  `json:"parent_id"`
	Conditions   []domain.FamilyCondition `json:"conditions"`
	Notes        string                   `json:"notes"`
}

// toDomain 请求体 → 领域模型
// generation 未显式给出时按 relationship 推导；is_alive 默认 true
func (p *memberPayload) toDomain() *domain.FamilyMember {
	member := &domain.FamilyMember{
		Relationship: p.Relationship,
		Name:         p.Name,
		Gender:       p.Gender,
		BirthYear:    p.BirthYear,
		DeathYear:    p.DeathYear,
		IsAlive:      true,
		Position:     p.Position,
		ParentID:     p.ParentID,
		Conditions:   p.Conditions,
		Notes:        p.Notes,
	}
	if p.IsAlive != nil {
		member.IsAlive = *p.IsAlive
	}
	if p.Generation != nil {
		member.Generation = *p.Generation
	} else {
		member.Generation = analytics.GenerationForRelationship(p.Relationship)
	}
	return member
}

// ListMembers GET /data/api/v1/family/members
func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	members, err := h.familyService.ListMembers(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list family members", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list family members: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": members, "total": len(members)}))
}

// GetMember GET /data/api/v1/family/members/:id
func (h *FamilyHandler) GetMember(w http.ResponseWriter, r *http.Request, memberID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	member, err := h.familyService.GetMember(r.Context(), userID, memberID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get family member: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(member))
}

// CreateMember POST /data/api/v1/family/members
func (h *FamilyHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload memberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	memberID, err := h.familyService.CreateMember(r.Context(), userID, payload.toDomain())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to create family member: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"member_id": memberID}))
}

// UpdateMember PUT /data/api/v1/family/members/:id
func (h *FamilyHandler) UpdateMember(w http.ResponseWriter, r *http.Request, memberID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	var payload memberPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	if err := h.familyService.UpdateMember(r.Context(), userID, memberID, payload.toDomain()); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to update family member: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// DeleteMember DELETE /data/api/v1/family/members/:id
func (h *FamilyHandler) DeleteMember(w http.ResponseWriter, r *http.Request, memberID string) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	if err := h.familyService.DeleteMember(r.Context(), userID, memberID); err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to delete family member: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// GetFamilyTree GET /data/api/v1/family/tree
func (h *FamilyHandler) GetFamilyTree(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	tree, err := h.familyService.GetFamilyTree(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build family tree", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to build family tree: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"roots": tree}))
}

// GetRiskAssessments GET /data/api/v1/family/risk-assessments
func (h *FamilyHandler) GetRiskAssessments(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	assessments, err := h.familyService.GetRiskAssessments(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get risk assessments", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get risk assessments: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": assessments, "total": len(assessments)}))
}

// RecalculateAssessments POST /data/api/v1/family/risk-assessments/recalculate
func (h *FamilyHandler) RecalculateAssessments(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromReq(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, Fail("user_id is required"))
		return
	}

	assessments, err := h.familyService.RecalculateAssessments(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to recalculate assessments", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to recalculate assessments: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": assessments, "total": len(assessments)}))
}
