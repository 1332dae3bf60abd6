package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/models"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return subdomainPattern.MatchString(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes the
// 400 response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid request"
	}
	fe := errs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "subdomain":
		return fmt.Sprintf("%s may only contain lowercase letters, numbers and hyphens", field)
	default:
		return fmt.Sprintf("Invalid %s", field)
	}
}

// dbError answers a failed collection call. notFound is the message for a
// missing or foreign record.
func dbError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, db.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid ID")
	case errors.Is(err, db.ErrDuplicate):
		writeError(w, http.StatusConflict, "Record already exists")
	default:
		log.WithError(err).Error("Database operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// listQuery reads page, page_size, search and status from the query string.
func listQuery(r *http.Request) (db.ListQuery, error) {
	q := r.URL.Query()
	var req db.PageRequest
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &req.Page}, {"page_size", &req.PageSize}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return db.ListQuery{}, fmt.Errorf("invalid %s", p.name)
		}
		*p.dst = n
	}
	return db.ListQuery{
		PageRequest: req.Normalize(),
		Search:      strings.TrimSpace(q.Get("search")),
		Status:      q.Get("status"),
	}, nil
}

// currentUser returns the profile loaded by RequireMember.
func currentUser(r *http.Request) *models.User {
	user, _ := middleware.GetUserFromContext(r.Context())
	return user
}
