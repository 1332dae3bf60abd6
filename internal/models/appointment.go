package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus is the state of a booked appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// Appointment is a booked detailing slot.
type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  string             `bson:"tenant_id" json:"tenant_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	Time      string             `bson:"time" json:"time"` // HH:MM
	Service   string             `bson:"service" json:"service"`
	Status    AppointmentStatus  `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateAppointmentRequest books an appointment at an explicit time
type CreateAppointmentRequest struct {
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string            `json:"time" validate:"required,datetime=15:04"`
	Service string            `json:"service" validate:"required"`
	Status  AppointmentStatus `json:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled"`
}

// UpdateAppointmentRequest changes the status of an appointment
type UpdateAppointmentRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=Scheduled Completed Cancelled"`
}

// BookAppointmentRequest books one of the available slots
type BookAppointmentRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot    string `json:"slot" validate:"required,datetime=15:04"`
	Service string `json:"service"`
}

// ScheduleRequest is the body of the AI scheduling route
type ScheduleRequest struct {
	UserID             string          `json:"userId"`
	AppointmentDetails json.RawMessage `json:"appointmentDetails"`
}
