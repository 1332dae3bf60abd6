package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
)

const serviceNotFound = "Service not found or unauthorized"

// ServiceHandler handles the service catalog
type ServiceHandler struct {
	services db.ServiceCollection
	events   events.Publisher
}

// NewServiceHandler creates a new service catalog handler
func NewServiceHandler(services db.ServiceCollection, publisher events.Publisher) *ServiceHandler {
	return &ServiceHandler{services: services, events: publisher}
}

// List returns the caller's catalog
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListServices(r.Context(), currentUser(r).TenantID)
	if err != nil {
		dbError(w, err, serviceNotFound)
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// Create adds a service to the catalog
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.CreateServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	service := &models.Service{
		TenantID:    user.TenantID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	}
	if err := h.services.InsertService(r.Context(), service); err != nil {
		dbError(w, err, serviceNotFound)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "service_id": service.ID.Hex()}).Info("Service created")
	events.PublishAsync(h.events, user.TenantID, events.ServiceCatalogChanged, service)
	writeJSON(w, http.StatusCreated, service)
}

// Update patches a service of the catalog
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.UpdateServiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	service, err := h.services.UpdateService(r.Context(), user.TenantID, r.PathValue("id"), req)
	if err != nil {
		dbError(w, err, serviceNotFound)
		return
	}

	events.PublishAsync(h.events, user.TenantID, events.ServiceCatalogChanged, service)
	writeJSON(w, http.StatusOK, service)
}

// Delete removes a service from the catalog
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := r.PathValue("id")

	if err := h.services.DeleteService(r.Context(), user.TenantID, id); err != nil {
		dbError(w, err, serviceNotFound)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "service_id": id}).Info("Service deleted")
	events.PublishAsync(h.events, user.TenantID, events.ServiceCatalogChanged, map[string]string{"deleted": id})
	w.WriteHeader(http.StatusNoContent)
}
