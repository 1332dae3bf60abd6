package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is an entry of a tenant's service catalog.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	BasePrice   float64            `bson:"base_price" json:"base_price"` // in USD
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateServiceRequest adds a service to the catalog
type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	BasePrice   float64 `json:"base_price" validate:"gte=0"`
}

// UpdateServiceRequest is a partial update of a service
type UpdateServiceRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	BasePrice   *float64 `json:"base_price" validate:"omitempty,gte=0"`
}

// EstimateStatus is the lifecycle of an estimate.
type EstimateStatus string

const (
	EstimatePending  EstimateStatus = "pending"
	EstimateApproved EstimateStatus = "approved"
	EstimateRejected EstimateStatus = "rejected"
)

// Estimate is a quote sent to a client.
type Estimate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID       string             `bson:"tenant_id" json:"tenant_id"`
	EstimateNumber string             `bson:"estimate_number" json:"estimate_number"`
	ClientName     string             `bson:"client_name" json:"client_name"`
	Date           string             `bson:"date" json:"date"`
	ExpirationDate string             `bson:"expiration_date" json:"expiration_date"`
	Status         EstimateStatus     `bson:"status" json:"status"`
	Subtotal       float64            `bson:"subtotal" json:"subtotal"`
	TaxRate        float64            `bson:"tax_rate" json:"tax_rate"` // percent
	Total          float64            `bson:"total" json:"total"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// EstimateRequest creates or replaces an estimate
type EstimateRequest struct {
	ClientName     string         `json:"client_name" validate:"required"`
	EstimateNumber string         `json:"estimate_number" validate:"required"`
	Date           string         `json:"date" validate:"required,datetime=2006-01-02"`
	ExpirationDate string         `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	Status         EstimateStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Subtotal       float64        `json:"subtotal" validate:"gte=0"`
	TaxRate        float64        `json:"tax_rate" validate:"gte=0"`
	Total          float64        `json:"total" validate:"gte=0"`
	Notes          string         `json:"notes" validate:"max=2000"`
}

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Invoice is a bill issued to a client.
type Invoice struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID   string             `bson:"tenant_id" json:"tenant_id"`
	Number     string             `bson:"number" json:"number"`
	ClientName string             `bson:"client_name" json:"client_name"`
	Total      float64            `bson:"total" json:"total"`
	Status     InvoiceStatus      `bson:"status" json:"status"`
	DueDate    time.Time          `bson:"due_date" json:"due_date"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateInvoiceRequest issues a new invoice
type CreateInvoiceRequest struct {
	Number     string        `json:"number" validate:"required"`
	ClientName string        `json:"client_name" validate:"required"`
	Total      float64       `json:"total" validate:"gte=0"`
	Status     InvoiceStatus `json:"status" validate:"omitempty,oneof=paid unpaid overdue"`
	DueDate    time.Time     `json:"due_date" validate:"required"`
}

// UpdateInvoiceStatusRequest patches the status of an invoice
type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=paid unpaid overdue"`
}
