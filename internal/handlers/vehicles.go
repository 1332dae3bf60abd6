package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
	"github.com/ukydev/autodetail/internal/vin"
)

// VehicleLookup fetches vehicle details by VIN.
type VehicleLookup interface {
	Details(ctx context.Context, vin string) (json.RawMessage, error)
}

// VehicleHandler handles VIN checks, barcode scans and vehicle data
type VehicleHandler struct {
	lookup   VehicleLookup
	parts    db.VehiclePartCollection
	scanner  *vin.Scanner
	config   vin.ScannerConfig
	maxBytes int64
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(lookup VehicleLookup, parts db.VehiclePartCollection, scanner *vin.Scanner, config vin.ScannerConfig, maxBytes int64) *VehicleHandler {
	return &VehicleHandler{
		lookup:   lookup,
		parts:    parts,
		scanner:  scanner,
		config:   config,
		maxBytes: maxBytes,
	}
}

// ValidateVIN reports whether a VIN is well formed and whether its check digit matches
func (h *VehicleHandler) ValidateVIN(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateVINRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, models.ValidateVINResponse{
		VIN:             req.VIN,
		Valid:           vin.Validate(req.VIN),
		CheckDigitValid: vin.HasValidCheckDigit(req.VIN),
	})
}

// ScannerConfig returns the camera and decoder settings of the barcode scanner
func (h *VehicleHandler) ScannerConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.config)
}

// Scan decodes a VIN barcode from an uploaded image
func (h *VehicleHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var tooLarge *http.MaxBytesError
	var img io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			writeError(w, http.StatusBadRequest, "image is required")
			return
		}
		defer file.Close()
		img = file
	}

	code, err := h.scanner.ScanReader(img)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"vin": code})
	case errors.Is(err, vin.ErrInvalidVIN):
		writeError(w, http.StatusUnprocessableEntity, "The scanned code is not a valid VIN. Please try again.")
	case errors.Is(err, vin.ErrNoBarcode):
		writeError(w, http.StatusUnprocessableEntity, "No barcode found in the image")
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
	default:
		log.WithError(err).Debug("Failed to decode scanned image")
		writeError(w, http.StatusBadRequest, "Invalid image")
	}
}

// Details returns the lookup service's data for a VIN
func (h *VehicleHandler) Details(w http.ResponseWriter, r *http.Request) {
	code := vin.Normalize(r.PathValue("vin"))
	if !vin.Validate(code) {
		writeError(w, http.StatusBadRequest, "Invalid VIN")
		return
	}

	details, err := h.lookup.Details(r.Context(), code)
	if err != nil {
		log.WithError(err).WithField("vin", code).Error("Vehicle details lookup failed")
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch vehicle details for VIN %s", code))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(details)
}

// Parts returns the vehicle part catalog
func (h *VehicleHandler) Parts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.ListParts(r.Context())
	if err != nil {
		dbError(w, err, "Vehicle part not found")
		return
	}
	if parts == nil {
		parts = []models.VehiclePart{}
	}
	writeJSON(w, http.StatusOK, parts)
}
