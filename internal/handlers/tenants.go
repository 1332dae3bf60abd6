package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/domains"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
)

// DomainClient manages the hosting project's domains.
type DomainClient interface {
	CreateSubdomain(ctx context.Context, subdomain, domain string) (*domains.Domain, error)
	VerifyDomain(ctx context.Context, domain string) error
	ListDomains(ctx context.Context) ([]domains.Domain, error)
}

// Integration is an external service a tenant can connect.
type Integration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsConnected bool   `json:"is_connected"`
}

var integrationCatalog = []Integration{
	{ID: "google-calendar", Name: "Google Calendar", Description: "Sync appointments with a shared calendar"},
	{ID: "quickbooks", Name: "QuickBooks", Description: "Export invoices to accounting"},
	{ID: "stripe", Name: "Stripe", Description: "Collect invoice payments online"},
	{ID: "mailchimp", Name: "Mailchimp", Description: "Add clients to marketing lists"},
	{ID: "twilio", Name: "Twilio", Description: "Send appointment reminders by SMS"},
}

func knownIntegration(id string) bool {
	for _, i := range integrationCatalog {
		if i.ID == id {
			return true
		}
	}
	return false
}

// TenantHandler handles organization requests
type TenantHandler struct {
	tenants    db.TenantCollection
	users      db.UserCollection
	reports    db.ReportCollection
	domains    DomainClient // nil when the hosting provider is not configured
	events     events.Publisher
	rootDomain string
}

// NewTenantHandler creates a new tenant handler. domainClient may be nil.
func NewTenantHandler(tenants db.TenantCollection, users db.UserCollection, reports db.ReportCollection, domainClient DomainClient, publisher events.Publisher, rootDomain string) *TenantHandler {
	return &TenantHandler{
		tenants:    tenants,
		users:      users,
		reports:    reports,
		domains:    domainClient,
		events:     publisher,
		rootDomain: rootDomain,
	}
}

type createTenantResponse struct {
	Tenant      *models.Tenant `json:"tenant"`
	DomainError string         `json:"domain_error,omitempty"`
}

// Create registers a new organization owned by the caller
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.CreateTenantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if user.TenantID != "" {
		writeError(w, http.StatusConflict, "User already belongs to an organization")
		return
	}

	tenant := &models.Tenant{
		Name:    req.Name,
		Slug:    req.Subdomain,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if err := h.tenants.InsertTenant(r.Context(), tenant); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Subdomain is already taken")
			return
		}
		dbError(w, err, "Organization not found")
		return
	}

	if _, err := h.users.AttachToTenant(r.Context(), user.ID.Hex(), tenant.ID.Hex(), models.RoleAdmin); err != nil {
		// Release the slug of the organization nobody owns.
		if delErr := h.tenants.DeleteTenant(r.Context(), tenant.ID.Hex()); delErr != nil {
			log.WithError(delErr).WithField("tenant_id", tenant.ID.Hex()).Error("Failed to remove unowned organization")
		}
		dbError(w, err, "User not found")
		return
	}

	logger := log.WithFields(log.Fields{"tenant_id": tenant.ID.Hex(), "slug": tenant.Slug})
	logger.Info("Organization created")

	resp := createTenantResponse{Tenant: tenant}
	if h.domains != nil {
		domain, err := h.attachSubdomain(r.Context(), tenant)
		if err != nil {
			logger.WithError(err).Error("Failed to attach subdomain")
			resp.DomainError = err.Error()
		} else {
			tenant.VerifiedDomain = domain
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *TenantHandler) attachSubdomain(ctx context.Context, tenant *models.Tenant) (string, error) {
	created, err := h.domains.CreateSubdomain(ctx, tenant.Slug, h.rootDomain)
	if err != nil {
		return "", err
	}
	if err := h.domains.VerifyDomain(ctx, created.Name); err != nil {
		return "", err
	}
	if err := h.tenants.UpdateTenantDomain(ctx, tenant.ID.Hex(), created.Name); err != nil {
		return "", fmt.Errorf("store domain: %w", err)
	}
	return created.Name, nil
}

// UpdateDomain sets the verified custom domain of the caller's organization
func (h *TenantHandler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.UpdateDomainRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.tenants.UpdateTenantDomain(r.Context(), user.TenantID, req.Domain); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Domain is already in use")
			return
		}
		dbError(w, err, "Organization not found")
		return
	}

	events.PublishAsync(h.events, user.TenantID, events.TenantUpdated, map[string]string{"verified_domain": req.Domain})
	writeJSON(w, http.StatusOK, map[string]string{"domain": req.Domain})
}

// GetConfig returns the assessment configuration of the caller's organization
func (h *TenantHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.FindTenantByID(r.Context(), currentUser(r).TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	writeJSON(w, http.StatusOK, tenant.Config())
}

// UpdateConfig merges the given assessment configuration
func (h *TenantHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.UpdateTenantConfigRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tenant, err := h.tenants.UpdateTenantConfig(r.Context(), user.TenantID, req)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}

	config := tenant.Config()
	events.PublishAsync(h.events, user.TenantID, events.TenantUpdated, config)
	writeJSON(w, http.StatusOK, config)
}

// GetSettings returns the advanced settings
func (h *TenantHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.FindTenantByID(r.Context(), currentUser(r).TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	writeJSON(w, http.StatusOK, tenant.Settings)
}

// UpdateSettings replaces the advanced settings
func (h *TenantHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.TenantSettings
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tenant, err := h.tenants.UpdateTenantSettings(r.Context(), user.TenantID, req)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	writeJSON(w, http.StatusOK, tenant.Settings)
}

// Export returns an archive of all organization data
func (h *TenantHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	export, err := h.reports.ExportTenant(r.Context(), user.TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "user_id": user.ID.Hex()}).Info("Organization data exported")
	filename := fmt.Sprintf("%s-export-%s.json", export.Tenant.Slug, export.ExportedAt.Format(time.DateOnly))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, export)
}

// ListIntegrations lists the integration catalog with the organization's state
func (h *TenantHandler) ListIntegrations(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.FindTenantByID(r.Context(), currentUser(r).TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}

	list := make([]Integration, len(integrationCatalog))
	for i, integration := range integrationCatalog {
		integration.IsConnected = tenant.Integrations[integration.ID]
		list[i] = integration
	}
	writeJSON(w, http.StatusOK, list)
}

// ToggleIntegration connects or disconnects one integration
func (h *TenantHandler) ToggleIntegration(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := r.PathValue("id")
	if !knownIntegration(id) {
		writeError(w, http.StatusNotFound, "Integration not found")
		return
	}

	var req models.ToggleIntegrationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.tenants.SetIntegration(r.Context(), user.TenantID, id, req.IsConnected); err != nil {
		dbError(w, err, "Organization not found")
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "integration": id, "connected": req.IsConnected}).Info("Integration toggled")
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_connected": req.IsConnected})
}

// ListDomains lists the domains of the hosting project
func (h *TenantHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	if h.domains == nil {
		writeError(w, http.StatusServiceUnavailable, "Domain management is not configured")
		return
	}

	list, err := h.domains.ListDomains(r.Context())
	if err != nil {
		if errors.Is(err, domains.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "Domain API rate limit reached, please try again later")
			return
		}
		log.WithError(err).Error("Failed to list domains")
		writeError(w, http.StatusBadGateway, "Failed to list domains")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
