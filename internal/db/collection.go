package db

import (
	"context"
	"io"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TenantCollection defines the interface for tenant data operations.
type TenantCollection interface {
	InsertTenant(ctx context.Context, tenant *models.Tenant) error
	DeleteTenant(ctx context.Context, id string) error
	FindTenantByID(ctx context.Context, id string) (*models.Tenant, error)
	FindTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FindTenantByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	UpdateTenantDomain(ctx context.Context, id, domain string) error
	UpdateTenantConfig(ctx context.Context, id string, req models.UpdateTenantConfigRequest) (*models.Tenant, error)
	UpdateTenantSettings(ctx context.Context, id string, settings models.TenantSettings) (*models.Tenant, error)
	SetIntegration(ctx context.Context, id, integrationID string, connected bool) (*models.Tenant, error)
}

// ServiceCollection defines the interface for service catalog operations.
type ServiceCollection interface {
	InsertService(ctx context.Context, service *models.Service) error
	ListServices(ctx context.Context, tenantID string) ([]models.Service, error)
	FindServiceByID(ctx context.Context, tenantID, id string) (*models.Service, error)
	CountServicesByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) (int64, error)
	UpdateService(ctx context.Context, tenantID, id string, req models.UpdateServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, tenantID, id string) error
}

// AssessmentCollection defines the interface for assessment operations.
type AssessmentCollection interface {
	InsertAssessment(ctx context.Context, assessment *models.Assessment) error
	FindAssessmentByID(ctx context.Context, tenantID, id string) (*models.Assessment, error)
	ListAssessments(ctx context.Context, tenantID string, q ListQuery) (Page[models.Assessment], error)
	ListAssessmentsByUser(ctx context.Context, tenantID, userID string) ([]models.Assessment, error)
	UpdateAssessmentStatus(ctx context.Context, tenantID, id string, status models.AssessmentStatus, notes string) (*models.Assessment, error)
}

// EstimateCollection defines the interface for estimate operations.
type EstimateCollection interface {
	InsertEstimate(ctx context.Context, estimate *models.Estimate) error
	FindEstimateByID(ctx context.Context, tenantID, id string) (*models.Estimate, error)
	ListEstimates(ctx context.Context, tenantID string, q ListQuery) (Page[models.Estimate], error)
	UpdateEstimate(ctx context.Context, tenantID, id string, req models.EstimateRequest) (*models.Estimate, error)
	DeleteEstimate(ctx context.Context, tenantID, id string) error
}

// InvoiceCollection defines the interface for invoice operations.
type InvoiceCollection interface {
	InsertInvoice(ctx context.Context, invoice *models.Invoice) error
	ListInvoices(ctx context.Context, tenantID string, q ListQuery) (Page[models.Invoice], error)
	UpdateInvoiceStatus(ctx context.Context, tenantID, id string, status models.InvoiceStatus) (*models.Invoice, error)
}

// AppointmentCollection defines the interface for appointment operations.
type AppointmentCollection interface {
	InsertAppointment(ctx context.Context, appointment *models.Appointment) error
	FindAppointmentByID(ctx context.Context, tenantID, id string) (*models.Appointment, error)
	ListAppointmentsByDate(ctx context.Context, tenantID, date string) ([]models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status models.AppointmentStatus) (*models.Appointment, error)
}

// FileCollection defines the interface for file metadata and upload tickets.
type FileCollection interface {
	InsertFile(ctx context.Context, file *models.File) error
	FindFileByID(ctx context.Context, tenantID, id string) (*models.File, error)
	InsertUpload(ctx context.Context, upload *models.Upload) error
	FindUpload(ctx context.Context, id string) (*models.Upload, error)
	// ClaimUpload marks an unused ticket as used; a used ticket is ErrNotFound.
	ClaimUpload(ctx context.Context, id string) error
}

// FileStore holds the uploaded blobs.
type FileStore interface {
	Put(ctx context.Context, tenantID, name, contentType string, r io.Reader) (*models.StoredObject, error)
	Stat(ctx context.Context, tenantID, id string) (*models.StoredObject, error)
	Open(ctx context.Context, tenantID, id string) (io.ReadCloser, *models.StoredObject, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// VehiclePartCollection defines the interface for the part catalog.
type VehiclePartCollection interface {
	ListParts(ctx context.Context) ([]models.VehiclePart, error)
	InsertParts(ctx context.Context, parts []models.VehiclePart) error
}

// ReportCollection aggregates tenant data across collections.
type ReportCollection interface {
	TenantTotals(ctx context.Context, tenantID string) (*models.TenantTotals, error)
	ExportTenant(ctx context.Context, tenantID string) (*models.TenantExport, error)
}
