package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
)

const appointmentNotFound = "Appointment not found or unauthorized"

// Bookable slots start on the hour from 09:00 to 17:00.
const (
	firstSlotHour = 9
	lastSlotHour  = 17
)

func openingSlots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// availableSlots removes the slots held by non-cancelled appointments.
func availableSlots(booked []models.Appointment) []string {
	taken := make(map[string]bool, len(booked))
	for _, a := range booked {
		if a.Status != models.AppointmentCancelled {
			taken[a.Time] = true
		}
	}
	free := []string{}
	for _, slot := range openingSlots() {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free
}

// AppointmentHandler handles appointments and slot booking
type AppointmentHandler struct {
	appointments db.AppointmentCollection
	events       events.Publisher
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments db.AppointmentCollection, publisher events.Publisher) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, events: publisher}
}

func dateParam(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", fmt.Errorf("date is required")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD")
	}
	return date, nil
}

// ListByDate returns the appointments of a day, earliest first
func (h *AppointmentHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.appointments.ListAppointmentsByDate(r.Context(), currentUser(r).TenantID, date)
	if err != nil {
		dbError(w, err, appointmentNotFound)
		return
	}
	if list == nil {
		list = []models.Appointment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Create books an appointment at an explicit time
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.CreateAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	appointment := &models.Appointment{
		TenantID: user.TenantID,
		UserID:   user.ID.Hex(),
		Date:     req.Date,
		Time:     req.Time,
		Service:  req.Service,
		Status:   req.Status,
	}
	if appointment.Status == "" {
		appointment.Status = models.AppointmentScheduled
	}
	h.insert(w, r, appointment)
}

// Update changes the status of an appointment
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.setStatus(w, r, req.Status)
}

// Cancel cancels an appointment
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.AppointmentCancelled)
}

func (h *AppointmentHandler) setStatus(w http.ResponseWriter, r *http.Request, status models.AppointmentStatus) {
	user := currentUser(r)

	appointment, err := h.appointments.UpdateAppointmentStatus(r.Context(), user.TenantID, r.PathValue("id"), status)
	if err != nil {
		slotError(w, err)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "appointment_id": appointment.ID.Hex(), "status": status}).Info("Appointment updated")
	events.PublishAsync(h.events, user.TenantID, events.AppointmentUpdated, appointment)
	writeJSON(w, http.StatusOK, appointment)
}

// Slots returns the free slots of a day
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booked, err := h.appointments.ListAppointmentsByDate(r.Context(), currentUser(r).TenantID, date)
	if err != nil {
		dbError(w, err, appointmentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": date, "slots": availableSlots(booked)})
}

// Book books one of the free slots of a day
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.BookAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booked, err := h.appointments.ListAppointmentsByDate(r.Context(), user.TenantID, req.Date)
	if err != nil {
		dbError(w, err, appointmentNotFound)
		return
	}

	free := availableSlots(booked)
	if !contains(openingSlots(), req.Slot) {
		writeError(w, http.StatusBadRequest, "Invalid slot")
		return
	}
	if !contains(free, req.Slot) {
		writeError(w, http.StatusConflict, "Slot is already taken")
		return
	}

	h.insert(w, r, &models.Appointment{
		TenantID: user.TenantID,
		UserID:   user.ID.Hex(),
		Date:     req.Date,
		Time:     req.Slot,
		Service:  req.Service,
		Status:   models.AppointmentScheduled,
	})
}

func (h *AppointmentHandler) insert(w http.ResponseWriter, r *http.Request, appointment *models.Appointment) {
	if err := h.appointments.InsertAppointment(r.Context(), appointment); err != nil {
		slotError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"tenant_id": appointment.TenantID,
		"date":      appointment.Date,
		"time":      appointment.Time,
	}).Info("Appointment booked")
	events.PublishAsync(h.events, appointment.TenantID, events.AppointmentBooked, appointment)
	writeJSON(w, http.StatusCreated, appointment)
}

// slotError answers a write that lost the slot to another appointment with 409.
func slotError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Slot is already taken")
		return
	}
	dbError(w, err, appointmentNotFound)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
