package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
)

const (
	estimateNotFound       = "Estimate not found or unauthorized"
	estimateDeleteNotFound = "Estimate not found or you do not have permission to delete it"
	invoiceNotFound        = "Invoice not found or unauthorized"
)

// BillingHandler handles estimates and invoices
type BillingHandler struct {
	estimates db.EstimateCollection
	invoices  db.InvoiceCollection
	events    events.Publisher
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(estimates db.EstimateCollection, invoices db.InvoiceCollection, publisher events.Publisher) *BillingHandler {
	return &BillingHandler{
		estimates: estimates,
		invoices:  invoices,
		events:    publisher,
	}
}

// ListEstimates returns one page of estimates
func (h *BillingHandler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.estimates.ListEstimates(r.Context(), currentUser(r).TenantID, q)
	if err != nil {
		dbError(w, err, estimateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetEstimate returns one estimate
func (h *BillingHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	estimate, err := h.estimates.FindEstimateByID(r.Context(), currentUser(r).TenantID, r.PathValue("id"))
	if err != nil {
		dbError(w, err, estimateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// CreateEstimate saves a new estimate
func (h *BillingHandler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.EstimateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	estimate := &models.Estimate{
		TenantID:       user.TenantID,
		EstimateNumber: req.EstimateNumber,
		ClientName:     req.ClientName,
		Date:           req.Date,
		ExpirationDate: req.ExpirationDate,
		Status:         req.Status,
		Subtotal:       req.Subtotal,
		TaxRate:        req.TaxRate,
		Total:          req.Total,
		Notes:          req.Notes,
	}
	if err := h.estimates.InsertEstimate(r.Context(), estimate); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Estimate number already exists")
			return
		}
		dbError(w, err, estimateNotFound)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "estimate_number": estimate.EstimateNumber}).Info("Estimate created")
	events.PublishAsync(h.events, user.TenantID, events.EstimateSaved, estimate)
	writeJSON(w, http.StatusCreated, estimate)
}

// UpdateEstimate replaces an estimate
func (h *BillingHandler) UpdateEstimate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.EstimateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	estimate, err := h.estimates.UpdateEstimate(r.Context(), user.TenantID, r.PathValue("id"), req)
	if err != nil {
		dbError(w, err, estimateNotFound)
		return
	}

	events.PublishAsync(h.events, user.TenantID, events.EstimateSaved, estimate)
	writeJSON(w, http.StatusOK, estimate)
}

// DeleteEstimate removes an estimate
func (h *BillingHandler) DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := r.PathValue("id")

	if err := h.estimates.DeleteEstimate(r.Context(), user.TenantID, id); err != nil {
		dbError(w, err, estimateDeleteNotFound)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "estimate_id": id}).Info("Estimate deleted")
	events.PublishAsync(h.events, user.TenantID, events.EstimateDeleted, map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// ListInvoices returns one page of invoices
func (h *BillingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.invoices.ListInvoices(r.Context(), currentUser(r).TenantID, q)
	if err != nil {
		dbError(w, err, invoiceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateInvoice issues an invoice
func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice := &models.Invoice{
		TenantID:   user.TenantID,
		Number:     req.Number,
		ClientName: req.ClientName,
		Total:      req.Total,
		Status:     req.Status,
		DueDate:    req.DueDate,
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceUnpaid
	}
	if err := h.invoices.InsertInvoice(r.Context(), invoice); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Invoice number already exists")
			return
		}
		dbError(w, err, invoiceNotFound)
		return
	}

	log.WithFields(log.Fields{"tenant_id": user.TenantID, "number": invoice.Number}).Info("Invoice created")
	writeJSON(w, http.StatusCreated, invoice)
}

// UpdateInvoiceStatus marks an invoice paid, unpaid or overdue
func (h *BillingHandler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.UpdateInvoiceStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoices.UpdateInvoiceStatus(r.Context(), user.TenantID, r.PathValue("id"), req.Status)
	if err != nil {
		dbError(w, err, invoiceNotFound)
		return
	}

	events.PublishAsync(h.events, user.TenantID, events.InvoiceStatusChanged, invoice)
	writeJSON(w, http.StatusOK, invoice)
}
