package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"healthvault-data/internal/service"
)

// CatalogHandler 基因疾病目录 Handler
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler 创建目录 Handler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/data/api/v1/catalog/conditions" && r.Method == http.MethodGet:
		h.ListConditions(w, r)
	case strings.HasPrefix(path, "/data/api/v1/catalog/conditions/") && r.Method == http.MethodGet:
		name := strings.TrimPrefix(path, "/data/api/v1/catalog/conditions/")
		if name == "" || strings.Contains(name, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetCondition(w, r, name)
	case path == "/data/api/v1/catalog/sync" && r.Method == http.MethodPost:
		h.SyncCatalog(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListConditions GET /data/api/v1/catalog/conditions
func (h *CatalogHandler) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.catalogService.ListConditions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list catalog conditions", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list conditions: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": conditions, "total": len(conditions)}))
}

// GetCondition GET /data/api/v1/catalog/conditions/:name
// 疾病名称可能含空格，路径段做 URL 解码
func (h *CatalogHandler) GetCondition(w http.ResponseWriter, r *http.Request, name string) {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		decoded = name
	}

	condition, err := h.catalogService.GetCondition(r.Context(), decoded)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to get condition: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(condition))
}

// SyncCatalog POST /data/api/v1/catalog/sync
func (h *CatalogHandler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.SyncRemote(r.Context()); err != nil {
		h.logger.Error("Catalog sync failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("catalog sync failed: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}
