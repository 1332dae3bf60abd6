package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/db/mocks"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assessmentFixture struct {
	assessments *mocks.AssessmentCollection
	services    *mocks.ServiceCollection
	tenants     *mocks.TenantCollection
	handler     *AssessmentHandler
}

func newAssessmentFixture(tenant *models.Tenant) *assessmentFixture {
	f := &assessmentFixture{
		assessments: new(mocks.AssessmentCollection),
		services:    new(mocks.ServiceCollection),
		tenants:     new(mocks.TenantCollection),
	}
	f.handler = NewAssessmentHandler(f.assessments, f.services, f.tenants, events.Nop{})
	f.handler.now = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }
	if tenant != nil {
		f.tenants.On("FindTenantByID", mock.Anything, testTenantID).Return(tenant, nil)
	}
	return f
}

func validAssessment(serviceIDs ...string) models.CreateAssessmentRequest {
	return models.CreateAssessmentRequest{
		Vehicle: models.VehicleDetails{
			Make:     "Honda",
			Model:    "Accord",
			Year:     2003,
			VIN:      "1hgcm82633a004352",
			BodyType: "sedan",
		},
		SelectedServices: serviceIDs,
		Hotspots:         []models.Hotspot{{Part: "hood", Issue: "swirl marks", Severity: "medium"}},
		ExteriorPhotos:   []string{"p1", "p2"},
		InteriorPhotos:   []string{"p3"},
	}
}

func TestAssessmentHandler_Create(t *testing.T) {
	client := testUser(models.RoleClient)
	serviceA, serviceB := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("creates a pending assessment", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{MaxImages: 5, AllowedVehicleTypes: []string{"sedan", "suv"}})
		f.services.On("CountServicesByIDs", mock.Anything, testTenantID, []primitive.ObjectID{serviceA, serviceB}).Return(int64(2), nil)
		f.assessments.On("InsertAssessment", mock.Anything, mock.MatchedBy(func(a *models.Assessment) bool {
			return a.Status == models.AssessmentPending && a.UserID == client.ID.Hex() &&
				a.TenantID == testTenantID && a.Vehicle.VIN == "1HGCM82633A004352"
		})).Return(nil)

		body := validAssessment(serviceA.Hex(), serviceB.Hex(), serviceA.Hex())
		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", body, client))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		f.assessments.AssertExpectations(t)
		f.services.AssertExpectations(t)
	})

	t.Run("service of another tenant", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{})
		f.services.On("CountServicesByIDs", mock.Anything, testTenantID, []primitive.ObjectID{serviceA, serviceB}).Return(int64(1), nil)

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", validAssessment(serviceA.Hex(), serviceB.Hex()), client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid services selected", errorMessage(t, w))
		f.assessments.AssertNotCalled(t, "InsertAssessment", mock.Anything, mock.Anything)
	})

	t.Run("malformed service id", func(t *testing.T) {
		f := newAssessmentFixture(nil)

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", validAssessment("not-an-id"), client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid VIN", func(t *testing.T) {
		f := newAssessmentFixture(nil)
		body := validAssessment()
		body.Vehicle.VIN = "1234567890ABCDEFI"

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", body, client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid VIN", errorMessage(t, w))
	})

	t.Run("VIN without check digit is accepted", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{})
		f.assessments.On("InsertAssessment", mock.Anything, mock.Anything).Return(nil)
		body := validAssessment()
		body.Vehicle.VIN = "1234567890ABCDEFG"

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", body, client))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("year in the future", func(t *testing.T) {
		f := newAssessmentFixture(nil)
		body := validAssessment()
		body.Vehicle.Year = 2028

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", body, client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "year must be at most 2027", errorMessage(t, w))
	})

	t.Run("too many images", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{MaxImages: 2})

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", validAssessment(), client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Too many images: at most 2 allowed", errorMessage(t, w))
	})

	t.Run("too many videos", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{MaxVideos: 1})
		body := validAssessment()
		body.VideoIDs = []string{"v1", "v2"}

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", body, client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("vehicle type not accepted", func(t *testing.T) {
		f := newAssessmentFixture(&models.Tenant{AllowedVehicleTypes: []string{"truck"}})

		w := httptest.NewRecorder()
		f.handler.Create(w, newRequest(t, http.MethodPost, "/api/assessments", validAssessment(), client))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Vehicle type is not accepted by this organization", errorMessage(t, w))
	})
}

func TestAssessmentHandler_Get(t *testing.T) {
	f := newAssessmentFixture(nil)
	f.assessments.On("FindAssessmentByID", mock.Anything, testTenantID, "65f1a2b3c4d5e6f708192a3c").Return(nil, db.ErrNotFound)

	req := newRequest(t, http.MethodGet, "/api/assessments/65f1a2b3c4d5e6f708192a3c", nil, testUser(models.RoleManager))
	req.SetPathValue("id", "65f1a2b3c4d5e6f708192a3c")
	w := httptest.NewRecorder()
	f.handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Assessment not found or unauthorized", errorMessage(t, w))
}

func TestAssessmentHandler_List(t *testing.T) {
	f := newAssessmentFixture(nil)
	q := db.ListQuery{PageRequest: db.PageRequest{Page: 2, PageSize: 10}, Search: "civic", Status: "pending"}
	f.assessments.On("ListAssessments", mock.Anything, testTenantID, q).Return(db.Page[models.Assessment]{
		Items:      []models.Assessment{{Vehicle: models.VehicleDetails{Model: "Civic"}}},
		TotalCount: 11,
		TotalPages: 2,
		Page:       2,
		PageSize:   10,
	}, nil)

	w := httptest.NewRecorder()
	f.handler.List(w, newRequest(t, http.MethodGet, "/api/assessments?page=2&search=civic&status=pending", nil, testUser(models.RoleManager)))

	require.Equal(t, http.StatusOK, w.Code)
	var page db.Page[models.Assessment]
	decodeBody(t, w, &page)
	assert.Equal(t, int64(11), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestAssessmentHandler_UpdateStatus(t *testing.T) {
	id := primitive.NewObjectID()
	f := newAssessmentFixture(nil)
	f.assessments.On("UpdateAssessmentStatus", mock.Anything, testTenantID, id.Hex(), models.AssessmentApproved, "Looks good").
		Return(&models.Assessment{ID: id, Status: models.AssessmentApproved}, nil)

	req := newRequest(t, http.MethodPatch, "/api/assessments/"+id.Hex()+"/status",
		models.UpdateAssessmentStatusRequest{Status: models.AssessmentApproved, Notes: "Looks good"}, testUser(models.RoleManager))
	req.SetPathValue("id", id.Hex())
	w := httptest.NewRecorder()
	f.handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	req = newRequest(t, http.MethodPatch, "/api/assessments/"+id.Hex()+"/status",
		models.UpdateAssessmentStatusRequest{Status: models.AssessmentPending}, testUser(models.RoleManager))
	req.SetPathValue("id", id.Hex())
	w = httptest.NewRecorder()
	f.handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
