package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"member role", RoleMember, true},
		{"client role", RoleClient, true},
		{"bare admin", "admin", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	manager := &User{Role: RoleManager}
	member := &User{Role: RoleMember}
	client := &User{Role: RoleClient}
	nobody := &User{}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		{"admin can manage tenant", admin, ActionManageTenant, true},
		{"admin can manage members", admin, ActionManageMembers, true},
		{"admin can review assessments", admin, ActionReviewAssessments, true},

		{"manager cannot manage tenant", manager, ActionManageTenant, false},
		{"manager cannot manage members", manager, ActionManageMembers, false},
		{"manager can manage services", manager, ActionManageServices, true},
		{"manager can review assessments", manager, ActionReviewAssessments, true},
		{"manager can manage invoices", manager, ActionManageInvoices, true},

		{"member can view assessments", member, ActionViewAssessments, true},
		{"member can manage appointments", member, ActionManageAppointments, true},
		{"member can manage estimates", member, ActionManageEstimates, true},
		{"member cannot review assessments", member, ActionReviewAssessments, false},
		{"member cannot manage services", member, ActionManageServices, false},
		{"member cannot manage invoices", member, ActionManageInvoices, false},

		{"client can create assessment", client, ActionCreateAssessment, true},
		{"client can book appointment", client, ActionBookAppointment, true},
		{"client can view services", client, ActionViewServices, true},
		{"client cannot view assessments", client, ActionViewAssessments, false},
		{"client cannot view estimates", client, ActionViewEstimates, false},
		{"client cannot view appointments", client, ActionViewAppointments, false},

		{"no role has no permission", nobody, ActionViewServices, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		user     User
		expected string
	}{
		{User{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{User{FirstName: "Ada"}, "Ada"},
		{User{LastName: "Lovelace"}, "Lovelace"},
		{User{}, ""},
	}
	for _, tt := range tests {
		if got := tt.user.FullName(); got != tt.expected {
			t.Errorf("FullName() = %q, want %q", got, tt.expected)
		}
	}
}
