package handlers

import (
	"errors"
	"net/http"

	"github.com/ukydev/autodetail/internal/dashboard"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/models"
)

// PageHandler serves the tenant-facing page routes
type PageHandler struct {
	services db.ServiceCollection
}

// NewPageHandler creates a new page handler
func NewPageHandler(services db.ServiceCollection) *PageHandler {
	return &PageHandler{services: services}
}

// TenantContext describes the resolved tenant to the front-end
func (h *PageHandler) TenantContext(w http.ResponseWriter, r *http.Request) {
	tenant, ok := middleware.TenantFromContext(r.Context())
	if !ok || tenant.Slug != r.PathValue("slug") {
		http.Redirect(w, r, middleware.TenantNotFound, http.StatusTemporaryRedirect)
		return
	}

	services, err := h.services.ListServices(r.Context(), tenant.ID.Hex())
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	if services == nil {
		services = []models.Service{}
	}

	config := tenant.Config()
	writeJSON(w, http.StatusOK, models.TenantContext{
		ID:                  tenant.ID.Hex(),
		Slug:                tenant.Slug,
		Name:                tenant.Name,
		AllowedVehicleTypes: config.AllowedVehicleTypes,
		MaxImages:           config.MaxImages,
		MaxVideos:           config.MaxVideos,
		Services:            services,
	})
}

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Organization not found</title></head>
<body>
<h1>Organization not found</h1>
<p>The organization you are looking for does not exist or is no longer available.</p>
</body>
</html>
`

// TenantNotFound renders the page unresolvable tenants are redirected to
func (h *PageHandler) TenantNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundPage))
}

// DashboardHandler serves the role-specific landing view
type DashboardHandler struct {
	dashboards *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Get returns the caller's dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboards.For(r.Context(), currentUser(r))
	if errors.Is(err, dashboard.ErrUnknownRole) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if err != nil {
		dbError(w, err, "Dashboard not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
