package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssessmentStatus is the review state of an assessment.
type AssessmentStatus string

const (
	AssessmentPending  AssessmentStatus = "pending"
	AssessmentApproved AssessmentStatus = "approved"
	AssessmentRejected AssessmentStatus = "rejected"
)

// Hotspot is an issue reported on a specific vehicle part.
type Hotspot struct {
	Part     string `bson:"part" json:"part" validate:"required"`
	Issue    string `bson:"issue" json:"issue" validate:"required"`
	Severity string `bson:"severity" json:"severity" validate:"required,oneof=low medium high"`
}

// Assessment is a customer-submitted vehicle condition report.
type Assessment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID         string             `bson:"tenant_id" json:"tenant_id"`
	UserID           string             `bson:"user_id" json:"user_id"`
	Vehicle          VehicleDetails     `bson:"vehicle" json:"vehicle"`
	SelectedServices []string           `bson:"selected_services" json:"selected_services"`
	Customizations   []string           `bson:"customizations,omitempty" json:"customizations"`
	Hotspots         []Hotspot          `bson:"hotspots,omitempty" json:"hotspots"`
	ExteriorPhotos   []string           `bson:"exterior_photos,omitempty" json:"exterior_photos"`
	InteriorPhotos   []string           `bson:"interior_photos,omitempty" json:"interior_photos"`
	VideoIDs         []string           `bson:"video_ids,omitempty" json:"video_ids"`
	Status           AssessmentStatus   `bson:"status" json:"status"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// PhotoCount is the number of exterior and interior photos.
func (a *Assessment) PhotoCount() int {
	return len(a.ExteriorPhotos) + len(a.InteriorPhotos)
}

// CreateAssessmentRequest represents an assessment submission
type CreateAssessmentRequest struct {
	Vehicle          VehicleDetails `json:"vehicle" validate:"required"`
	SelectedServices []string       `json:"selected_services" validate:"dive,len=24,hexadecimal"`
	Customizations   []string       `json:"customizations"`
	Hotspots         []Hotspot      `json:"hotspots" validate:"dive"`
	ExteriorPhotos   []string       `json:"exterior_photos"`
	InteriorPhotos   []string       `json:"interior_photos"`
	VideoIDs         []string       `json:"video_ids"`
}

// UpdateAssessmentStatusRequest approves or rejects an assessment
type UpdateAssessmentStatusRequest struct {
	Status AssessmentStatus `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string           `json:"notes" validate:"max=2000"`
}
