package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testTenantID = "65f1a2b3c4d5e6f708192a3b"

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		IdPID:     "user_2abc",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		TenantID:  testTenantID,
		Role:      role,
	}
}

// newRequest builds a request carrying user, as RequireMember would.
func newRequest(t *testing.T, method, target string, body interface{}, user *models.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, w, &body)
	return body["error"]
}
