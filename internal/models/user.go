package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents a member's role within an organization
type Role string

const (
	RoleAdmin   Role = "org:admin"
	RoleManager Role = "org:manager_organization"
	RoleMember  Role = "org:member"
	RoleClient  Role = "org:clients"
)

// Actions checked by HasPermission.
const (
	ActionManageTenant       = "manage_tenant"
	ActionManageMembers      = "manage_members"
	ActionManageServices     = "manage_services"
	ActionViewServices       = "view_services"
	ActionCreateAssessment   = "create_assessment"
	ActionViewAssessments    = "view_assessments"
	ActionReviewAssessments  = "review_assessments"
	ActionManageEstimates    = "manage_estimates"
	ActionViewEstimates      = "view_estimates"
	ActionManageInvoices     = "manage_invoices"
	ActionViewInvoices       = "view_invoices"
	ActionManageAppointments = "manage_appointments"
	ActionViewAppointments   = "view_appointments"
	ActionBookAppointment    = "book_appointment"
	ActionUploadFiles        = "upload_files"
)

// User is the local profile of an identity-provider account
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IdPID     string             `bson:"idp_id" json:"idp_id"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	TenantID  string             `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Role      Role               `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateUserRequest represents a profile creation request
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// AddMemberRequest attaches an existing user to the caller's organization
type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required"`
}

// UserInfo is the summary shown in the dashboard header
type UserInfo struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
	Role             Role   `json:"role"`
}

// Claims represents the identity-provider session claims
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	OrgID   string `json:"org_id,omitempty"`
	Exp     int64  `json:"exp"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMember, RoleClient:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return action != ActionManageTenant && action != ActionManageMembers
	case RoleMember:
		return action == ActionViewServices || action == ActionCreateAssessment ||
			action == ActionViewAssessments || action == ActionViewEstimates ||
			action == ActionManageEstimates || action == ActionViewInvoices ||
			action == ActionManageAppointments || action == ActionViewAppointments ||
			action == ActionBookAppointment || action == ActionUploadFiles
	case RoleClient:
		return action == ActionViewServices || action == ActionCreateAssessment ||
			action == ActionBookAppointment || action == ActionUploadFiles
	default:
		return false
	}
}
