// Command seed fills an organization with demo services, appointments and
// assessments through the public API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/models"
)

var defaultServices = []models.CreateServiceRequest{
	{Name: "Full Detail", Description: "Complete interior and exterior detailing", BasePrice: 199.99},
	{Name: "Exterior Wash", Description: "Hand wash, wheels and tire shine", BasePrice: 49.99},
	{Name: "Interior Cleaning", Description: "Vacuum, shampoo and conditioning", BasePrice: 89.99},
	{Name: "Paint Correction", Description: "Multi-stage polish to remove swirls", BasePrice: 349.99},
	{Name: "Ceramic Coating", Description: "Long lasting ceramic paint protection", BasePrice: 799.99},
}

var demoVehicles = []models.VehicleDetails{
	{Make: "Honda", Model: "Accord", Year: 2003, VIN: "1HGCM82633A004352", BodyType: "sedan", Condition: "good", Mileage: 142000},
	{Make: "Acura", Model: "Legend", Year: 1993, VIN: "JH4KA7561PC008269", BodyType: "sedan", Condition: "fair", Mileage: 201000},
	{Make: "Ford", Model: "F-150", Year: 2021, BodyType: "truck", Condition: "excellent", Mileage: 18000},
}

var errConflict = errors.New("already exists")

type seeder struct {
	baseURL string
	token   string
	http    *http.Client
}

func (s *seeder) send(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return errConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, apiErr.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s *seeder) ensureProfile(profile models.CreateUserRequest) error {
	err := s.send(http.MethodPost, "/users", profile, nil)
	if errors.Is(err, errConflict) {
		log.WithField("email", profile.Email).Info("Profile already exists")
		return nil
	}
	return err
}

func (s *seeder) ensureTenant(tenant models.CreateTenantRequest) error {
	err := s.send(http.MethodPost, "/tenants", tenant, nil)
	if errors.Is(err, errConflict) {
		log.WithField("subdomain", tenant.Subdomain).Info("Organization already exists")
		return nil
	}
	if err == nil {
		log.WithField("subdomain", tenant.Subdomain).Info("Created organization")
	}
	return err
}

// seedServices creates the default catalog, skipping names already present.
func (s *seeder) seedServices() ([]models.Service, error) {
	var existing []models.Service
	if err := s.send(http.MethodGet, "/services", nil, &existing); err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, svc := range existing {
		have[svc.Name] = true
	}

	services := existing
	for _, req := range defaultServices {
		if have[req.Name] {
			continue
		}
		var created models.Service
		if err := s.send(http.MethodPost, "/services", req, &created); err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"service": created.Name, "price": created.BasePrice}).Info("Created service")
		services = append(services, created)
	}
	return services, nil
}

// bookAppointments books the first free slots of the next days.
func (s *seeder) bookAppointments(services []models.Service, days int, from time.Time) int {
	booked := 0
	for i := 1; i <= days; i++ {
		date := from.AddDate(0, 0, i).Format(time.DateOnly)

		var slots struct {
			Slots []string `json:"slots"`
		}
		if err := s.send(http.MethodGet, "/appointments/slots?date="+date, nil, &slots); err != nil {
			log.WithError(err).WithField("date", date).Error("Failed to fetch slots")
			continue
		}
		if len(slots.Slots) == 0 {
			continue
		}

		req := models.BookAppointmentRequest{Date: date, Slot: slots.Slots[0]}
		if len(services) > 0 {
			req.Service = services[(i-1)%len(services)].Name
		}
		err := s.send(http.MethodPost, "/appointments/book", req, nil)
		if errors.Is(err, errConflict) {
			continue
		}
		if err != nil {
			log.WithError(err).WithField("date", date).Error("Failed to book appointment")
			continue
		}
		log.WithFields(log.Fields{"date": date, "slot": req.Slot, "service": req.Service}).Info("Booked appointment")
		booked++
	}
	return booked
}

func (s *seeder) submitAssessments(services []models.Service) int {
	submitted := 0
	for i, vehicle := range demoVehicles {
		req := models.CreateAssessmentRequest{
			Vehicle: vehicle,
			Hotspots: []models.Hotspot{
				{Part: "Hood", Issue: "Swirl marks", Severity: "medium"},
			},
		}
		if len(services) > 0 {
			req.SelectedServices = []string{services[i%len(services)].ID.Hex()}
		}

		var created models.Assessment
		if err := s.send(http.MethodPost, "/assessments", req, &created); err != nil {
			log.WithError(err).WithField("make", vehicle.Make).Error("Failed to submit assessment")
			continue
		}
		log.WithFields(log.Fields{"assessment_id": created.ID.Hex(), "vehicle": vehicle.Make + " " + vehicle.Model}).Info("Submitted assessment")
		submitted++
	}
	return submitted
}

func resolveToken() (string, error) {
	if token := os.Getenv("SEED_AUTH_TOKEN"); token != "" {
		return token, nil
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("set SEED_AUTH_TOKEN or JWT_SECRET")
	}
	subject := getenv("SEED_SUBJECT", "user_seed")
	return auth.NewService(secret, time.Hour).GenerateToken(subject, getenv("SEED_EMAIL", "owner@example.com"), "")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	apiURL := getenv("API_BASE_URL", "http://localhost:8080/api")

	days := 5
	if v := os.Getenv("SEED_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			days = n
		}
	}

	token, err := resolveToken()
	if err != nil {
		log.WithError(err).Fatal("No credentials for the API")
	}

	s := &seeder{baseURL: apiURL, token: token, http: &http.Client{Timeout: 10 * time.Second}}
	log.WithFields(log.Fields{"api_url": apiURL, "days": days}).Info("Seeding demo organization")

	if err := s.ensureProfile(models.CreateUserRequest{
		FirstName: "Demo",
		LastName:  "Owner",
		Email:     getenv("SEED_EMAIL", "owner@example.com"),
	}); err != nil {
		log.WithError(err).Fatal("Failed to create profile")
	}
	if err := s.ensureTenant(models.CreateTenantRequest{
		Name:      getenv("SEED_ORG_NAME", "Demo Detailing"),
		Subdomain: getenv("SEED_SUBDOMAIN", "demo"),
	}); err != nil {
		log.WithError(err).Fatal("Failed to create organization")
	}

	services, err := s.seedServices()
	if err != nil {
		log.WithError(err).Fatal("Failed to seed services")
	}
	booked := s.bookAppointments(services, days, time.Now())
	submitted := s.submitAssessments(services)

	log.WithFields(log.Fields{
		"services":     len(services),
		"appointments": booked,
		"assessments":  submitted,
	}).Info("Seeding completed")
}
