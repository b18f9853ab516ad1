package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterFamilyRoutes 家族病史 + 家族树 + 遗传风险评估
func (r *Router) RegisterFamilyRoutes(h *FamilyHandler) {
	r.Handle("/data/api/v1/family/members", h.ServeHTTP)
	r.Handle("/data/api/v1/family/members/", h.ServeHTTP)
	r.Handle("/data/api/v1/family/tree", h.ServeHTTP)
	r.Handle("/data/api/v1/family/risk-assessments", h.ServeHTTP)
	r.Handle("/data/api/v1/family/risk-assessments/recalculate", h.ServeHTTP)
}

// RegisterRecordsRoutes 就诊记录/用药/预约 CRUD
func (r *Router) RegisterRecordsRoutes(h *RecordsHandler) {
	r.Handle("/data/api/v1/records", h.ServeHTTP)
	r.Handle("/data/api/v1/records/", h.ServeHTTP)
	r.Handle("/data/api/v1/medications", h.ServeHTTP)
	r.Handle("/data/api/v1/medications/", h.ServeHTTP)
	r.Handle("/data/api/v1/appointments", h.ServeHTTP)
	r.Handle("/data/api/v1/appointments/", h.ServeHTTP)
}

// RegisterVitalsRoutes 体征观察 + Excel 导出
func (r *Router) RegisterVitalsRoutes(h *VitalsHandler) {
	r.Handle("/data/api/v1/vitals/observations", h.ServeHTTP)
	r.Handle("/data/api/v1/vitals/observations/", h.ServeHTTP)
	r.Handle("/data/api/v1/vitals/export", h.ServeHTTP)
}

// RegisterAnalyticsRoutes 疾病风险预测 + 趋势检测 + 风险因子分析
func (r *Router) RegisterAnalyticsRoutes(h *AnalyticsHandler) {
	r.Handle("/data/api/v1/analytics/predictions", h.ServeHTTP)
	r.Handle("/data/api/v1/analytics/patterns", h.ServeHTTP)
	r.Handle("/data/api/v1/analytics/patterns/detect", h.ServeHTTP)
	r.Handle("/data/api/v1/analytics/risk-factors", h.ServeHTTP)
}

// RegisterCatalogRoutes 基因疾病目录
func (r *Router) RegisterCatalogRoutes(h *CatalogHandler) {
	r.Handle("/data/api/v1/catalog/conditions", h.ServeHTTP)
	r.Handle("/data/api/v1/catalog/conditions/", h.ServeHTTP)
	r.Handle("/data/api/v1/catalog/sync", h.ServeHTTP)
}
