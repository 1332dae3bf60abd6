// Package dashboard builds the landing view of each role.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
)

var ErrUnknownRole = errors.New("unknown role")

// recentLimit is the length of the short lists shown on a dashboard.
const recentLimit = 5

// View is the dashboard of one user. Only the sections of the user's role are set.
type View struct {
	Role               models.Role          `json:"role"`
	Kind               string               `json:"kind"`
	Totals             *models.TenantTotals `json:"totals,omitempty"`
	Members            []models.User        `json:"members,omitempty"`
	PendingAssessments []models.Assessment  `json:"pending_assessments,omitempty"`
	TodaysAppointments []models.Appointment `json:"todays_appointments,omitempty"`
	RecentEstimates    []models.Estimate    `json:"recent_estimates,omitempty"`
	MyAssessments      []models.Assessment  `json:"my_assessments,omitempty"`
}

// Sources are the collections a dashboard reads.
type Sources struct {
	Reports      db.ReportCollection
	Users        db.UserCollection
	Assessments  db.AssessmentCollection
	Appointments db.AppointmentCollection
	Estimates    db.EstimateCollection
}

// Builder fills in the sections of one role.
type Builder interface {
	Kind() string
	Build(ctx context.Context, src Sources, user *models.User, today string, v *View) error
}

type adminView struct{}
type managerView struct{}
type memberView struct{}
type clientView struct{}

var builders = map[models.Role]Builder{
	models.RoleAdmin:   adminView{},
	models.RoleManager: managerView{},
	models.RoleMember:  memberView{},
	models.RoleClient:  clientView{},
}

// Service builds dashboards.
type Service struct {
	src Sources
	now func() time.Time
}

// NewService creates a dashboard service
func NewService(src Sources) *Service {
	return &Service{src: src, now: time.Now}
}

// For builds the dashboard of user, chosen by role.
func (s *Service) For(ctx context.Context, user *models.User) (*View, error) {
	builder, ok := builders[user.Role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}
	v := &View{Role: user.Role, Kind: builder.Kind()}
	today := s.now().Format("2006-01-02")
	if err := builder.Build(ctx, s.src, user, today, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (adminView) Kind() string { return "admin" }

func (adminView) Build(ctx context.Context, src Sources, user *models.User, today string, v *View) error {
	totals, err := src.Reports.TenantTotals(ctx, user.TenantID)
	if err != nil {
		return err
	}
	v.Totals = totals
	members, err := src.Users.ListUsersByTenant(ctx, user.TenantID)
	if err != nil {
		return err
	}
	v.Members = members
	return nil
}

func (managerView) Kind() string { return "manager" }

func (managerView) Build(ctx context.Context, src Sources, user *models.User, today string, v *View) error {
	recent := db.PageRequest{Page: 1, PageSize: recentLimit}

	pending, err := src.Assessments.ListAssessments(ctx, user.TenantID, db.ListQuery{PageRequest: recent, Status: string(models.AssessmentPending)})
	if err != nil {
		return err
	}
	v.PendingAssessments = pending.Items

	if v.TodaysAppointments, err = src.Appointments.ListAppointmentsByDate(ctx, user.TenantID, today); err != nil {
		return err
	}

	estimates, err := src.Estimates.ListEstimates(ctx, user.TenantID, db.ListQuery{PageRequest: recent})
	if err != nil {
		return err
	}
	v.RecentEstimates = estimates.Items
	return nil
}

func (memberView) Kind() string { return "member" }

func (memberView) Build(ctx context.Context, src Sources, user *models.User, today string, v *View) error {
	appointments, err := src.Appointments.ListAppointmentsByDate(ctx, user.TenantID, today)
	if err != nil {
		return err
	}
	v.TodaysAppointments = appointments
	return nil
}

func (clientView) Kind() string { return "client" }

func (clientView) Build(ctx context.Context, src Sources, user *models.User, today string, v *View) error {
	mine, err := src.Assessments.ListAssessmentsByUser(ctx, user.TenantID, user.ID.Hex())
	if err != nil {
		return err
	}
	v.MyAssessments = mine
	return nil
}
