package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant is an auto-detailing business and the scope of all its data.
type Tenant struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Slug                string             `bson:"slug" json:"slug"` // also the subdomain label
	VerifiedDomain      string             `bson:"verified_domain,omitempty" json:"verified_domain,omitempty"`
	Address             string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	AllowedVehicleTypes []string           `bson:"allowed_vehicle_types,omitempty" json:"allowed_vehicle_types"`
	MaxImages           int                `bson:"max_images,omitempty" json:"max_images"`
	MaxVideos           int                `bson:"max_videos,omitempty" json:"max_videos"`
	Settings            TenantSettings     `bson:"settings" json:"settings"`
	Integrations        map[string]bool    `bson:"integrations,omitempty" json:"integrations,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// TenantSettings are the advanced organization settings.
type TenantSettings struct {
	DataRetention   string `bson:"data_retention" json:"data_retention" validate:"omitempty,oneof=30d 90d 1y forever"`
	DefaultTimezone string `bson:"default_timezone" json:"default_timezone" validate:"omitempty,timezone"`
	DefaultLanguage string `bson:"default_language" json:"default_language" validate:"omitempty,bcp47_language_tag"`
}

// TenantConfig is the assessment configuration exposed to members.
type TenantConfig struct {
	AllowedVehicleTypes []string `json:"allowed_vehicle_types"`
	MaxImages           int      `json:"max_images"`
	MaxVideos           int      `json:"max_videos"`
}

// Config returns the assessment configuration of the tenant.
func (t *Tenant) Config() TenantConfig {
	return TenantConfig{
		AllowedVehicleTypes: t.AllowedVehicleTypes,
		MaxImages:           t.MaxImages,
		MaxVideos:           t.MaxVideos,
	}
}

// AllowsVehicleType reports whether body type is accepted; an empty list accepts all.
func (t *Tenant) AllowsVehicleType(bodyType string) bool {
	if len(t.AllowedVehicleTypes) == 0 {
		return true
	}
	for _, allowed := range t.AllowedVehicleTypes {
		if allowed == bodyType {
			return true
		}
	}
	return false
}

// CreateTenantRequest represents a tenant registration request
type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required,min=3,max=50"`
	Subdomain string `json:"subdomain" validate:"required,min=3,max=63,subdomain"`
	Address   string `json:"address" validate:"max=200"`
	Phone     string `json:"phone" validate:"max=40"`
}

// UpdateTenantConfigRequest is a partial update; nil or zero fields are kept.
type UpdateTenantConfigRequest struct {
	AllowedVehicleTypes []string `json:"allowed_vehicle_types" validate:"omitempty,dive,oneof=sedan suv truck van other"`
	MaxImages           int      `json:"max_images" validate:"min=0,max=100"`
	MaxVideos           int      `json:"max_videos" validate:"min=0,max=20"`
}

// UpdateDomainRequest sets the verified custom domain of a tenant
type UpdateDomainRequest struct {
	Domain string `json:"domain" validate:"required,fqdn"`
}

// ToggleIntegrationRequest connects or disconnects an integration
type ToggleIntegrationRequest struct {
	IsConnected bool `json:"is_connected"`
}

// TenantContext is what page routes hand to the front-end for a resolved tenant.
type TenantContext struct {
	ID                  string    `json:"id"`
	Slug                string    `json:"slug"`
	Name                string    `json:"name"`
	AllowedVehicleTypes []string  `json:"allowed_vehicle_types"`
	MaxImages           int       `json:"max_images"`
	MaxVideos           int       `json:"max_videos"`
	Services            []Service `json:"services"`
}

// TenantTotals counts the records of a tenant.
type TenantTotals struct {
	Members            int64 `json:"members"`
	Services           int64 `json:"services"`
	Assessments        int64 `json:"assessments"`
	PendingAssessments int64 `json:"pending_assessments"`
	Estimates          int64 `json:"estimates"`
	Invoices           int64 `json:"invoices"`
	UnpaidInvoices     int64 `json:"unpaid_invoices"`
	Appointments       int64 `json:"appointments"`
}

// TenantExport is the archive of all tenant data.
type TenantExport struct {
	Tenant       Tenant        `json:"tenant"`
	Members      []User        `json:"members"`
	Services     []Service     `json:"services"`
	Assessments  []Assessment  `json:"assessments"`
	Estimates    []Estimate    `json:"estimates"`
	Invoices     []Invoice     `json:"invoices"`
	Appointments []Appointment `json:"appointments"`
	Files        []File        `json:"files"`
	ExportedAt   time.Time     `json:"exported_at"`
}
