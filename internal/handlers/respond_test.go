package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
)

func TestValidator_CreateTenantRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateTenantRequest
		wantErr string
	}{
		{"valid", models.CreateTenantRequest{Name: "Shine Co", Subdomain: "shine-co"}, ""},
		{"short name", models.CreateTenantRequest{Name: "ab", Subdomain: "shine"}, "name must be at least 3"},
		{"upper case subdomain", models.CreateTenantRequest{Name: "Shine Co", Subdomain: "Shine"}, "subdomain may only contain lowercase letters, numbers and hyphens"},
		{"dotted subdomain", models.CreateTenantRequest{Name: "Shine Co", Subdomain: "shine.co"}, "subdomain may only contain lowercase letters, numbers and hyphens"},
		{"missing subdomain", models.CreateTenantRequest{Name: "Shine Co"}, "subdomain is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, validationMessage(err))
		})
	}
}

func TestValidator_EstimateRequest(t *testing.T) {
	valid := models.EstimateRequest{
		ClientName:     "John Smith",
		EstimateNumber: "EST-001",
		Date:           "2026-03-01",
		ExpirationDate: "2026-03-31",
		Subtotal:       100,
		TaxRate:        8.5,
		Total:          108.5,
	}
	assert.NoError(t, validate.Struct(valid))

	badDate := valid
	badDate.Date = "03/01/2026"
	assert.Equal(t, "Invalid date", validationMessage(validate.Struct(badDate)))

	negative := valid
	negative.Total = -1
	assert.Equal(t, "total must be at least 0", validationMessage(validate.Struct(negative)))

	badStatus := valid
	badStatus.Status = "sent"
	assert.Equal(t, "status must be one of: pending approved rejected", validationMessage(validate.Struct(badStatus)))
}

func TestValidator_NestedFieldNames(t *testing.T) {
	req := models.CreateAssessmentRequest{
		Vehicle: models.VehicleDetails{Make: "Honda", Model: "Civic", Year: 2020, BodyType: "boat"},
	}
	assert.Equal(t, "vehicle.body_type must be one of: sedan suv truck van other", validationMessage(validate.Struct(req)))
}

func TestListQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, err := listQuery(httptest.NewRequest(http.MethodGet, "/api/estimates", nil))
		require.NoError(t, err)
		assert.Equal(t, db.ListQuery{PageRequest: db.PageRequest{Page: 1, PageSize: 10}}, q)
	})

	t.Run("explicit", func(t *testing.T) {
		q, err := listQuery(httptest.NewRequest(http.MethodGet, "/api/estimates?page=2&page_size=500&search=+smith+&status=pending", nil))
		require.NoError(t, err)
		assert.Equal(t, 2, q.Page)
		assert.Equal(t, db.MaxPageSize, q.PageSize)
		assert.Equal(t, "smith", q.Search)
		assert.Equal(t, "pending", q.Status)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := listQuery(httptest.NewRequest(http.MethodGet, "/api/estimates?page=two", nil))
		assert.EqualError(t, err, "invalid page")
	})
}

func TestDBError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{db.ErrNotFound, http.StatusNotFound, "Thing not found or unauthorized"},
		{db.ErrInvalidID, http.StatusBadRequest, "Invalid ID"},
		{db.ErrDuplicate, http.StatusConflict, "Record already exists"},
		{errors.New("socket closed"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		dbError(w, tt.err, "Thing not found or unauthorized")
		assert.Equal(t, tt.wantStatus, w.Code)
		assert.Equal(t, tt.wantMsg, errorMessage(t, w))
	}
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	w := httptest.NewRecorder()
	var req models.CreateServiceRequest
	ok := decodeAndValidate(w, newRequest(t, http.MethodPost, "/api/services", "{not json", nil), &req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", errorMessage(t, w))
}
