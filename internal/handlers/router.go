package handlers

import (
	"net/http"

	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/dashboard"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/models"
	"github.com/ukydev/autodetail/internal/vin"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Auth *auth.Service

	Users        db.UserCollection
	Tenants      db.TenantCollection
	Services     db.ServiceCollection
	Assessments  db.AssessmentCollection
	Estimates    db.EstimateCollection
	Invoices     db.InvoiceCollection
	Appointments db.AppointmentCollection
	Files        db.FileCollection
	Blobs        db.FileStore
	Parts        db.VehiclePartCollection
	Reports      db.ReportCollection

	Domains       DomainClient // optional
	Scheduler     Scheduler
	Vehicles      VehicleLookup
	Scanner       *vin.Scanner
	ScannerConfig vin.ScannerConfig
	Events        events.Publisher // defaults to events.Nop
	Dashboard     *dashboard.Service

	RootDomain     string
	UploadMaxBytes int64
	RateLimit      *middleware.RateLimitMiddleware // optional
}

// Health answers liveness checks
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter builds the complete HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Events == nil {
		d.Events = events.Nop{}
	}

	am := middleware.NewAuthMiddleware(d.Auth, d.Users)
	member := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, am.RequireMember)
	}
	inOrg := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, am.RequireMember, am.RequireOrganization)
	}
	can := func(action string, h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, am.RequireMember, am.RequireOrganization, am.RequirePermission(action))
	}

	users := NewUserHandler(d.Users, d.Tenants)
	tenants := NewTenantHandler(d.Tenants, d.Users, d.Reports, d.Domains, d.Events, d.RootDomain)
	services := NewServiceHandler(d.Services, d.Events)
	assessments := NewAssessmentHandler(d.Assessments, d.Services, d.Tenants, d.Events)
	billing := NewBillingHandler(d.Estimates, d.Invoices, d.Events)
	appointments := NewAppointmentHandler(d.Appointments, d.Events)
	files := NewFileHandler(d.Files, d.Blobs, d.Auth, d.UploadMaxBytes)
	vehicles := NewVehicleHandler(d.Vehicles, d.Parts, d.Scanner, d.ScannerConfig, d.UploadMaxBytes)
	pages := NewPageHandler(d.Services)
	dashboards := NewDashboardHandler(d.Dashboard)

	api := http.NewServeMux()

	api.HandleFunc("POST /api/users", users.CreateProfile)
	api.Handle("GET /api/users/me", member(users.Me))
	api.Handle("GET /api/tenant/members", can(models.ActionManageMembers, users.ListMembers))
	api.Handle("POST /api/tenant/members", can(models.ActionManageMembers, users.AddMember))

	api.Handle("POST /api/tenants", member(tenants.Create))
	api.Handle("PUT /api/tenant/domain", can(models.ActionManageTenant, tenants.UpdateDomain))
	api.Handle("GET /api/tenant/config", can(models.ActionViewServices, tenants.GetConfig))
	api.Handle("PUT /api/tenant/config", can(models.ActionManageTenant, tenants.UpdateConfig))
	api.Handle("GET /api/tenant/settings", can(models.ActionManageTenant, tenants.GetSettings))
	api.Handle("PUT /api/tenant/settings", can(models.ActionManageTenant, tenants.UpdateSettings))
	api.Handle("POST /api/tenant/export", can(models.ActionManageTenant, tenants.Export))
	api.Handle("GET /api/tenant/integrations", can(models.ActionManageTenant, tenants.ListIntegrations))
	api.Handle("PUT /api/tenant/integrations/{id}", can(models.ActionManageTenant, tenants.ToggleIntegration))
	api.Handle("GET /api/tenant/domains", can(models.ActionManageTenant, tenants.ListDomains))

	api.Handle("GET /api/services", can(models.ActionViewServices, services.List))
	api.Handle("POST /api/services", can(models.ActionManageServices, services.Create))
	api.Handle("PATCH /api/services/{id}", can(models.ActionManageServices, services.Update))
	api.Handle("DELETE /api/services/{id}", can(models.ActionManageServices, services.Delete))

	api.Handle("POST /api/assessments", can(models.ActionCreateAssessment, assessments.Create))
	api.Handle("GET /api/assessments", can(models.ActionViewAssessments, assessments.List))
	api.Handle("GET /api/assessments/mine", can(models.ActionCreateAssessment, assessments.Mine))
	api.Handle("GET /api/assessments/{id}", can(models.ActionViewAssessments, assessments.Get))
	api.Handle("PATCH /api/assessments/{id}/status", can(models.ActionReviewAssessments, assessments.UpdateStatus))

	api.Handle("GET /api/estimates", can(models.ActionViewEstimates, billing.ListEstimates))
	api.Handle("POST /api/estimates", can(models.ActionManageEstimates, billing.CreateEstimate))
	api.Handle("GET /api/estimates/{id}", can(models.ActionViewEstimates, billing.GetEstimate))
	api.Handle("PUT /api/estimates/{id}", can(models.ActionManageEstimates, billing.UpdateEstimate))
	api.Handle("DELETE /api/estimates/{id}", can(models.ActionManageEstimates, billing.DeleteEstimate))

	api.Handle("GET /api/invoices", can(models.ActionViewInvoices, billing.ListInvoices))
	api.Handle("POST /api/invoices", can(models.ActionManageInvoices, billing.CreateInvoice))
	api.Handle("PATCH /api/invoices/{id}/status", can(models.ActionManageInvoices, billing.UpdateInvoiceStatus))

	api.Handle("GET /api/appointments", can(models.ActionViewAppointments, appointments.ListByDate))
	api.Handle("POST /api/appointments", can(models.ActionManageAppointments, appointments.Create))
	api.Handle("PATCH /api/appointments/{id}", can(models.ActionManageAppointments, appointments.Update))
	api.Handle("POST /api/appointments/{id}/cancel", can(models.ActionManageAppointments, appointments.Cancel))
	api.Handle("GET /api/appointments/slots", can(models.ActionBookAppointment, appointments.Slots))
	api.Handle("POST /api/appointments/book", can(models.ActionBookAppointment, appointments.Book))

	api.Handle("POST /api/files/upload-url", can(models.ActionUploadFiles, files.UploadURL))
	api.Handle("POST /api/files", can(models.ActionUploadFiles, files.Save))
	api.Handle("GET /api/files/{id}", can(models.ActionUploadFiles, files.Download))

	api.Handle("POST /api/vin/validate", member(vehicles.ValidateVIN))
	api.Handle("GET /api/vin/scanner-config", member(vehicles.ScannerConfig))
	api.Handle("POST /api/vin/scan", member(vehicles.Scan))
	api.Handle("GET /api/vehicles/{vin}", can(models.ActionCreateAssessment, vehicles.Details))
	api.Handle("GET /api/vehicle-parts", member(vehicles.Parts))

	api.Handle("GET /api/dashboard", inOrg(dashboards.Get))

	pagesMux := http.NewServeMux()
	pagesMux.HandleFunc("GET /{slug}/{$}", pages.TenantContext)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", Health)
	root.HandleFunc("GET "+middleware.TenantNotFound, pages.TenantNotFound)
	// Both authorize themselves: the schedule route is public and upload
	// URLs carry their own one-time token.
	root.Handle("/api/{orgId}/schedule", NewScheduleHandler(d.Scheduler))
	root.HandleFunc("POST /api/files/upload/{uploadId}", files.Upload)
	root.Handle("/api/", am.Authenticate(api))
	root.Handle("/", middleware.NewTenantResolver(d.Tenants, d.RootDomain).Resolve(pagesMux))

	outer := []middleware.Middleware{middleware.RequestLogger, middleware.Recover(nil)}
	if d.RateLimit != nil {
		outer = append(outer, d.RateLimit.RateLimit)
	}
	return middleware.Chain(root, outer...)
}
