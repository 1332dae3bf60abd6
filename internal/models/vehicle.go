package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleDetails describes the assessed vehicle.
type VehicleDetails struct {
	Make              string `bson:"make" json:"make" validate:"required"`
	Model             string `bson:"model" json:"model" validate:"required"`
	Year              int    `bson:"year" json:"year" validate:"required,min=1900"`
	Color             string `bson:"color,omitempty" json:"color,omitempty"`
	LicensePlate      string `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	VIN               string `bson:"vin,omitempty" json:"vin,omitempty"`
	BodyType          string `bson:"body_type" json:"body_type" validate:"required,oneof=sedan suv truck van other"`
	Condition         string `bson:"condition,omitempty" json:"condition,omitempty" validate:"omitempty,oneof=excellent good fair poor"`
	Mileage           int    `bson:"mileage,omitempty" json:"mileage,omitempty" validate:"min=0"`
	ExteriorColor     string `bson:"exterior_color,omitempty" json:"exterior_color,omitempty"`
	InteriorColor     string `bson:"interior_color,omitempty" json:"interior_color,omitempty"`
	Modifications     string `bson:"modifications,omitempty" json:"modifications,omitempty"`
	LastDetailingDate string `bson:"last_detailing_date,omitempty" json:"last_detailing_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// VehiclePart is an entry of the global part catalog used for hotspots.
type VehiclePart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Area      string             `bson:"area" json:"area"` // "exterior" or "interior"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ValidateVINRequest carries a VIN to check
type ValidateVINRequest struct {
	VIN string `json:"vin"`
}

// ValidateVINResponse reports the format check and the ISO 3779 check digit
type ValidateVINResponse struct {
	VIN             string `json:"vin"`
	Valid           bool   `json:"valid"`
	CheckDigitValid bool   `json:"check_digit_valid"`
}
