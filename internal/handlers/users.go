package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/models"
)

// UserHandler handles profile and membership requests
type UserHandler struct {
	users   db.UserCollection
	tenants db.TenantCollection
}

// NewUserHandler creates a new user handler
func NewUserHandler(users db.UserCollection, tenants db.TenantCollection) *UserHandler {
	return &UserHandler{
		users:   users,
		tenants: tenants,
	}
}

type profileResponse struct {
	User models.User     `json:"user"`
	Info models.UserInfo `json:"info"`
}

// CreateProfile creates the local profile of the authenticated subject
func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	var req models.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Check if the profile already exists
	_, err := h.users.FindUserByIdPID(r.Context(), claims.Subject)
	if err == nil {
		writeError(w, http.StatusConflict, "User profile already exists")
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		dbError(w, err, "User not found")
		return
	}

	user := &models.User{
		IdPID:     claims.Subject,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.users.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "User profile already exists")
			return
		}
		dbError(w, err, "User not found")
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "idp_id": user.IdPID}).Info("User profile created")
	writeJSON(w, http.StatusCreated, user)
}

// Me returns the caller's profile and the dashboard header summary
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	info := models.UserInfo{
		FullName: user.FullName(),
		Email:    user.Email,
		Role:     user.Role,
	}
	if user.TenantID != "" {
		tenant, err := h.tenants.FindTenantByID(r.Context(), user.TenantID)
		if err != nil {
			log.WithError(err).WithField("tenant_id", user.TenantID).Warn("Failed to load organization of user")
		} else {
			info.OrganizationName = tenant.Name
		}
	}

	writeJSON(w, http.StatusOK, profileResponse{User: *user, Info: info})
}

// ListMembers lists the members of the caller's organization
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	members, err := h.users.ListUsersByTenant(r.Context(), user.TenantID)
	if err != nil {
		dbError(w, err, "Organization not found")
		return
	}
	if members == nil {
		members = []models.User{}
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMember attaches an existing user to the caller's organization
func (h *UserHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)

	var req models.AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !models.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	member, err := h.users.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		dbError(w, err, "User not found")
		return
	}
	if member.TenantID != "" && member.TenantID != caller.TenantID {
		writeError(w, http.StatusConflict, "User already belongs to another organization")
		return
	}

	updated, err := h.users.AttachToTenant(r.Context(), member.ID.Hex(), caller.TenantID, req.Role)
	if err != nil {
		dbError(w, err, "User not found")
		return
	}

	log.WithFields(log.Fields{
		"user_id":   updated.ID.Hex(),
		"tenant_id": caller.TenantID,
		"role":      req.Role,
	}).Info("Member added to organization")
	writeJSON(w, http.StatusOK, updated)
}
