// Package mocks provides testify mocks of the db collection interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ret returns the i-th return value as a T, or the zero T when it is nil.
func ret[T any](args mock.Arguments, i int) T {
	var zero T
	if v, ok := args.Get(i).(T); ok {
		return v
	}
	return zero
}

// UserCollection mocks db.UserCollection
type UserCollection struct{ mock.Mock }

func (m *UserCollection) InsertUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	return ret[*models.User](args, 0), args.Error(1)
}

func (m *UserCollection) FindUserByIdPID(ctx context.Context, idpID string) (*models.User, error) {
	args := m.Called(ctx, idpID)
	return ret[*models.User](args, 0), args.Error(1)
}

func (m *UserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return ret[*models.User](args, 0), args.Error(1)
}

func (m *UserCollection) ListUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	args := m.Called(ctx, tenantID)
	return ret[[]models.User](args, 0), args.Error(1)
}

func (m *UserCollection) AttachToTenant(ctx context.Context, id, tenantID string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, id, tenantID, role)
	return ret[*models.User](args, 0), args.Error(1)
}

// TenantCollection mocks db.TenantCollection
type TenantCollection struct{ mock.Mock }

func (m *TenantCollection) InsertTenant(ctx context.Context, tenant *models.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

func (m *TenantCollection) DeleteTenant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TenantCollection) FindTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

func (m *TenantCollection) FindTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

func (m *TenantCollection) FindTenantByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	args := m.Called(ctx, domain)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

func (m *TenantCollection) UpdateTenantDomain(ctx context.Context, id, domain string) error {
	return m.Called(ctx, id, domain).Error(0)
}

func (m *TenantCollection) UpdateTenantConfig(ctx context.Context, id string, req models.UpdateTenantConfigRequest) (*models.Tenant, error) {
	args := m.Called(ctx, id, req)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

func (m *TenantCollection) UpdateTenantSettings(ctx context.Context, id string, settings models.TenantSettings) (*models.Tenant, error) {
	args := m.Called(ctx, id, settings)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

func (m *TenantCollection) SetIntegration(ctx context.Context, id, integrationID string, connected bool) (*models.Tenant, error) {
	args := m.Called(ctx, id, integrationID, connected)
	return ret[*models.Tenant](args, 0), args.Error(1)
}

// ServiceCollection mocks db.ServiceCollection
type ServiceCollection struct{ mock.Mock }

func (m *ServiceCollection) InsertService(ctx context.Context, service *models.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceCollection) ListServices(ctx context.Context, tenantID string) ([]models.Service, error) {
	args := m.Called(ctx, tenantID)
	return ret[[]models.Service](args, 0), args.Error(1)
}

func (m *ServiceCollection) FindServiceByID(ctx context.Context, tenantID, id string) (*models.Service, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.Service](args, 0), args.Error(1)
}

func (m *ServiceCollection) CountServicesByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, tenantID, ids)
	return ret[int64](args, 0), args.Error(1)
}

func (m *ServiceCollection) UpdateService(ctx context.Context, tenantID, id string, req models.UpdateServiceRequest) (*models.Service, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ret[*models.Service](args, 0), args.Error(1)
}

func (m *ServiceCollection) DeleteService(ctx context.Context, tenantID, id string) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// AssessmentCollection mocks db.AssessmentCollection
type AssessmentCollection struct{ mock.Mock }

func (m *AssessmentCollection) InsertAssessment(ctx context.Context, assessment *models.Assessment) error {
	return m.Called(ctx, assessment).Error(0)
}

func (m *AssessmentCollection) FindAssessmentByID(ctx context.Context, tenantID, id string) (*models.Assessment, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.Assessment](args, 0), args.Error(1)
}

func (m *AssessmentCollection) ListAssessments(ctx context.Context, tenantID string, q db.ListQuery) (db.Page[models.Assessment], error) {
	args := m.Called(ctx, tenantID, q)
	return ret[db.Page[models.Assessment]](args, 0), args.Error(1)
}

func (m *AssessmentCollection) ListAssessmentsByUser(ctx context.Context, tenantID, userID string) ([]models.Assessment, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[[]models.Assessment](args, 0), args.Error(1)
}

func (m *AssessmentCollection) UpdateAssessmentStatus(ctx context.Context, tenantID, id string, status models.AssessmentStatus, notes string) (*models.Assessment, error) {
	args := m.Called(ctx, tenantID, id, status, notes)
	return ret[*models.Assessment](args, 0), args.Error(1)
}

// EstimateCollection mocks db.EstimateCollection
type EstimateCollection struct{ mock.Mock }

func (m *EstimateCollection) InsertEstimate(ctx context.Context, estimate *models.Estimate) error {
	return m.Called(ctx, estimate).Error(0)
}

func (m *EstimateCollection) FindEstimateByID(ctx context.Context, tenantID, id string) (*models.Estimate, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.Estimate](args, 0), args.Error(1)
}

func (m *EstimateCollection) ListEstimates(ctx context.Context, tenantID string, q db.ListQuery) (db.Page[models.Estimate], error) {
	args := m.Called(ctx, tenantID, q)
	return ret[db.Page[models.Estimate]](args, 0), args.Error(1)
}

func (m *EstimateCollection) UpdateEstimate(ctx context.Context, tenantID, id string, req models.EstimateRequest) (*models.Estimate, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ret[*models.Estimate](args, 0), args.Error(1)
}

func (m *EstimateCollection) DeleteEstimate(ctx context.Context, tenantID, id string) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// InvoiceCollection mocks db.InvoiceCollection
type InvoiceCollection struct{ mock.Mock }

func (m *InvoiceCollection) InsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *InvoiceCollection) ListInvoices(ctx context.Context, tenantID string, q db.ListQuery) (db.Page[models.Invoice], error) {
	args := m.Called(ctx, tenantID, q)
	return ret[db.Page[models.Invoice]](args, 0), args.Error(1)
}

func (m *InvoiceCollection) UpdateInvoiceStatus(ctx context.Context, tenantID, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id, status)
	return ret[*models.Invoice](args, 0), args.Error(1)
}

// AppointmentCollection mocks db.AppointmentCollection
type AppointmentCollection struct{ mock.Mock }

func (m *AppointmentCollection) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentCollection) FindAppointmentByID(ctx context.Context, tenantID, id string) (*models.Appointment, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.Appointment](args, 0), args.Error(1)
}

func (m *AppointmentCollection) ListAppointmentsByDate(ctx context.Context, tenantID, date string) ([]models.Appointment, error) {
	args := m.Called(ctx, tenantID, date)
	return ret[[]models.Appointment](args, 0), args.Error(1)
}

func (m *AppointmentCollection) UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	args := m.Called(ctx, tenantID, id, status)
	return ret[*models.Appointment](args, 0), args.Error(1)
}

// FileCollection mocks db.FileCollection
type FileCollection struct{ mock.Mock }

func (m *FileCollection) InsertFile(ctx context.Context, file *models.File) error {
	return m.Called(ctx, file).Error(0)
}

func (m *FileCollection) FindFileByID(ctx context.Context, tenantID, id string) (*models.File, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.File](args, 0), args.Error(1)
}

func (m *FileCollection) InsertUpload(ctx context.Context, upload *models.Upload) error {
	return m.Called(ctx, upload).Error(0)
}

func (m *FileCollection) FindUpload(ctx context.Context, id string) (*models.Upload, error) {
	args := m.Called(ctx, id)
	return ret[*models.Upload](args, 0), args.Error(1)
}

func (m *FileCollection) ClaimUpload(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// FileStore mocks db.FileStore
type FileStore struct{ mock.Mock }

func (m *FileStore) Put(ctx context.Context, tenantID, name, contentType string, r io.Reader) (*models.StoredObject, error) {
	args := m.Called(ctx, tenantID, name, contentType, r)
	return ret[*models.StoredObject](args, 0), args.Error(1)
}

func (m *FileStore) Stat(ctx context.Context, tenantID, id string) (*models.StoredObject, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*models.StoredObject](args, 0), args.Error(1)
}

func (m *FileStore) Open(ctx context.Context, tenantID, id string) (io.ReadCloser, *models.StoredObject, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[io.ReadCloser](args, 0), ret[*models.StoredObject](args, 1), args.Error(2)
}

func (m *FileStore) Delete(ctx context.Context, tenantID, id string) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// VehiclePartCollection mocks db.VehiclePartCollection
type VehiclePartCollection struct{ mock.Mock }

func (m *VehiclePartCollection) ListParts(ctx context.Context) ([]models.VehiclePart, error) {
	args := m.Called(ctx)
	return ret[[]models.VehiclePart](args, 0), args.Error(1)
}

func (m *VehiclePartCollection) InsertParts(ctx context.Context, parts []models.VehiclePart) error {
	return m.Called(ctx, parts).Error(0)
}

// ReportCollection mocks db.ReportCollection
type ReportCollection struct{ mock.Mock }

func (m *ReportCollection) TenantTotals(ctx context.Context, tenantID string) (*models.TenantTotals, error) {
	args := m.Called(ctx, tenantID)
	return ret[*models.TenantTotals](args, 0), args.Error(1)
}

func (m *ReportCollection) ExportTenant(ctx context.Context, tenantID string) (*models.TenantExport, error) {
	args := m.Called(ctx, tenantID)
	return ret[*models.TenantExport](args, 0), args.Error(1)
}

var (
	_ db.UserCollection        = (*UserCollection)(nil)
	_ db.TenantCollection      = (*TenantCollection)(nil)
	_ db.ServiceCollection     = (*ServiceCollection)(nil)
	_ db.AssessmentCollection  = (*AssessmentCollection)(nil)
	_ db.EstimateCollection    = (*EstimateCollection)(nil)
	_ db.InvoiceCollection     = (*InvoiceCollection)(nil)
	_ db.AppointmentCollection = (*AppointmentCollection)(nil)
	_ db.FileCollection        = (*FileCollection)(nil)
	_ db.FileStore             = (*FileStore)(nil)
	_ db.VehiclePartCollection = (*VehiclePartCollection)(nil)
	_ db.ReportCollection      = (*ReportCollection)(nil)
)
