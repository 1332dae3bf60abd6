package handlers

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
	"github.com/ukydev/autodetail/internal/vin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const assessmentNotFound = "Assessment not found or unauthorized"

// AssessmentHandler handles vehicle assessments
type AssessmentHandler struct {
	assessments db.AssessmentCollection
	services    db.ServiceCollection
	tenants     db.TenantCollection
	events      events.Publisher
	now         func() time.Time
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessments db.AssessmentCollection, services db.ServiceCollection, tenants db.TenantCollection, publisher events.Publisher) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		services:    services,
		tenants:     tenants,
		events:      publisher,
		now:         time.Now,
	}
}

// Create submits an assessment for the caller's organization
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.CreateAssessmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if maxYear := h.now().Year() + 1; req.Vehicle.Year > maxYear {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("year must be at most %d", maxYear))
		return
	}
	if req.Vehicle.VIN != "" {
		req.Vehicle.VIN = vin.Normalize(req.Vehicle.VIN)
		if !vin.Validate(req.Vehicle.VIN) {
			writeError(w, http.StatusBadRequest, "Invalid VIN")
			return
		}
	}

	tenant, err := h.tenants.FindTenantByID(r.Context(), user.TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	if msg := checkTenantLimits(tenant, &req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if len(req.SelectedServices) > 0 {
		ids := uniqueObjectIDs(req.SelectedServices)
		count, err := h.services.CountServicesByIDs(r.Context(), user.TenantID, ids)
		if err != nil {
			dbError(w, err, serviceNotFound)
			return
		}
		if count != int64(len(ids)) {
			writeError(w, http.StatusBadRequest, "Invalid services selected")
			return
		}
	}

	assessment := &models.Assessment{
		TenantID:         user.TenantID,
		UserID:           user.ID.Hex(),
		Vehicle:          req.Vehicle,
		SelectedServices: req.SelectedServices,
		Customizations:   req.Customizations,
		Hotspots:         req.Hotspots,
		ExteriorPhotos:   req.ExteriorPhotos,
		InteriorPhotos:   req.InteriorPhotos,
		VideoIDs:         req.VideoIDs,
		Status:           models.AssessmentPending,
	}
	if err := h.assessments.InsertAssessment(r.Context(), assessment); err != nil {
		dbError(w, err, assessmentNotFound)
		return
	}

	log.WithFields(log.Fields{
		"tenant_id":     user.TenantID,
		"assessment_id": assessment.ID.Hex(),
		"photos":        assessment.PhotoCount(),
	}).Info("Assessment submitted")
	events.PublishAsync(h.events, user.TenantID, events.AssessmentCreated, assessment)
	writeJSON(w, http.StatusCreated, assessment)
}

func checkTenantLimits(tenant *models.Tenant, req *models.CreateAssessmentRequest) string {
	if photos := len(req.ExteriorPhotos) + len(req.InteriorPhotos); tenant.MaxImages > 0 && photos > tenant.MaxImages {
		return fmt.Sprintf("Too many images: at most %d allowed", tenant.MaxImages)
	}
	if tenant.MaxVideos > 0 && len(req.VideoIDs) > tenant.MaxVideos {
		return fmt.Sprintf("Too many videos: at most %d allowed", tenant.MaxVideos)
	}
	if !tenant.AllowsVehicleType(req.Vehicle.BodyType) {
		return "Vehicle type is not accepted by this organization"
	}
	return ""
}

// uniqueObjectIDs parses validated hex ids, dropping repeats.
func uniqueObjectIDs(hexIDs []string) []primitive.ObjectID {
	seen := make(map[string]bool, len(hexIDs))
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		if seen[h] {
			continue
		}
		seen[h] = true
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, oid)
		}
	}
	return ids
}

// Get returns one assessment of the caller's organization
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.assessments.FindAssessmentByID(r.Context(), currentUser(r).TenantID, r.PathValue("id"))
	if err != nil {
		dbError(w, err, assessmentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// List returns one page of the organization's assessments
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.assessments.ListAssessments(r.Context(), currentUser(r).TenantID, q)
	if err != nil {
		dbError(w, err, assessmentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Mine returns the caller's own assessments, newest first
func (h *AssessmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	list, err := h.assessments.ListAssessmentsByUser(r.Context(), user.TenantID, user.ID.Hex())
	if err != nil {
		dbError(w, err, assessmentNotFound)
		return
	}
	if list == nil {
		list = []models.Assessment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateStatus approves or rejects an assessment
func (h *AssessmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.UpdateAssessmentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assessment, err := h.assessments.UpdateAssessmentStatus(r.Context(), user.TenantID, r.PathValue("id"), req.Status, req.Notes)
	if err != nil {
		dbError(w, err, assessmentNotFound)
		return
	}

	log.WithFields(log.Fields{
		"tenant_id":     user.TenantID,
		"assessment_id": assessment.ID.Hex(),
		"status":        assessment.Status,
		"reviewer":      user.ID.Hex(),
	}).Info("Assessment reviewed")
	events.PublishAsync(h.events, user.TenantID, events.AssessmentStatusChanged, assessment)
	writeJSON(w, http.StatusOK, assessment)
}
