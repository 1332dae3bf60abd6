package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store groups the collections of one database.
type Store struct {
	Database     *mongo.Database
	Users        *MongoUserCollection
	Tenants      *MongoTenantCollection
	Services     *MongoServiceCollection
	Assessments  *MongoAssessmentCollection
	Estimates    *MongoEstimateCollection
	Invoices     *MongoInvoiceCollection
	Appointments *MongoAppointmentCollection
	Files        *MongoFileCollection
	Parts        *MongoVehiclePartCollection
	Blobs        *GridFSStore
}

// NewStore binds every collection of the database.
func NewStore(database *mongo.Database) (*Store, error) {
	bucket, err := gridfs.NewBucket(database)
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &Store{
		Database:     database,
		Users:        &MongoUserCollection{Collection: database.Collection("users")},
		Tenants:      &MongoTenantCollection{Collection: database.Collection("tenants")},
		Services:     &MongoServiceCollection{Collection: database.Collection("services")},
		Assessments:  &MongoAssessmentCollection{Collection: database.Collection("assessments")},
		Estimates:    &MongoEstimateCollection{Collection: database.Collection("estimates")},
		Invoices:     &MongoInvoiceCollection{Collection: database.Collection("invoices")},
		Appointments: &MongoAppointmentCollection{Collection: database.Collection("appointments")},
		Files: &MongoFileCollection{
			Collection: database.Collection("files"),
			Uploads:    database.Collection("uploads"),
		},
		Parts: &MongoVehiclePartCollection{Collection: database.Collection("vehicle_parts")},
		Blobs: &GridFSStore{Bucket: bucket},
	}, nil
}

// heldSlot matches the appointments that hold their slot.
var heldSlot = bson.M{"status": bson.M{"$in": bson.A{models.AppointmentScheduled, models.AppointmentCompleted}}}

// EnsureIndexes creates the indexes the queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byTenantNewest := mongo.IndexModel{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}}

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "idp_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
		},
		"tenants": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verified_domain", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		"services":    {{Keys: bson.D{{Key: "tenant_id", Value: 1}}}},
		"assessments": {byTenantNewest, {Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}}}},
		"estimates":   {byTenantNewest},
		"invoices":    {byTenantNewest},
		// A slot is held by at most one appointment that is not cancelled.
		"appointments": {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(heldSlot),
			},
		},
		"files": {{Keys: bson.D{{Key: "tenant_id", Value: 1}}}},
		// Expired upload tickets are removed by the server.
		"uploads": {{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)}},
	}

	for name, idx := range indexes {
		if _, err := s.Database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type tenantCount struct {
	coll   *mongo.Collection
	filter bson.M
	out    *int64
}

// TenantTotals counts the records of a tenant.
func (s *Store) TenantTotals(ctx context.Context, tenantID string) (*models.TenantTotals, error) {
	var totals models.TenantTotals
	byTenant := bson.M{"tenant_id": tenantID}

	counts := []tenantCount{
		{s.Users.Collection, byTenant, &totals.Members},
		{s.Services.Collection, byTenant, &totals.Services},
		{s.Assessments.Collection, byTenant, &totals.Assessments},
		{s.Assessments.Collection, bson.M{"tenant_id": tenantID, "status": models.AssessmentPending}, &totals.PendingAssessments},
		{s.Estimates.Collection, byTenant, &totals.Estimates},
		{s.Invoices.Collection, byTenant, &totals.Invoices},
		{s.Invoices.Collection, bson.M{"tenant_id": tenantID, "status": bson.M{"$ne": models.InvoicePaid}}, &totals.UnpaidInvoices},
		{s.Appointments.Collection, byTenant, &totals.Appointments},
	}
	for _, c := range counts {
		n, err := c.coll.CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.coll.Name(), err)
		}
		*c.out = n
	}
	return &totals, nil
}

// ExportTenant collects every record of a tenant.
func (s *Store) ExportTenant(ctx context.Context, tenantID string) (*models.TenantExport, error) {
	tenant, err := s.Tenants.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	export := &models.TenantExport{Tenant: *tenant, ExportedAt: time.Now().UTC()}
	byTenant := bson.M{"tenant_id": tenantID}
	oldestFirst := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	if export.Members, err = findAll[models.User](ctx, s.Users.Collection, byTenant); err != nil {
		return nil, err
	}
	if export.Services, err = findAll[models.Service](ctx, s.Services.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	if export.Assessments, err = findAll[models.Assessment](ctx, s.Assessments.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	if export.Estimates, err = findAll[models.Estimate](ctx, s.Estimates.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	if export.Invoices, err = findAll[models.Invoice](ctx, s.Invoices.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	if export.Appointments, err = findAll[models.Appointment](ctx, s.Appointments.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	if export.Files, err = findAll[models.File](ctx, s.Files.Collection, byTenant, oldestFirst); err != nil {
		return nil, err
	}
	return export, nil
}

var (
	_ UserCollection        = (*MongoUserCollection)(nil)
	_ TenantCollection      = (*MongoTenantCollection)(nil)
	_ ServiceCollection     = (*MongoServiceCollection)(nil)
	_ AssessmentCollection  = (*MongoAssessmentCollection)(nil)
	_ EstimateCollection    = (*MongoEstimateCollection)(nil)
	_ InvoiceCollection     = (*MongoInvoiceCollection)(nil)
	_ AppointmentCollection = (*MongoAppointmentCollection)(nil)
	_ FileCollection        = (*MongoFileCollection)(nil)
	_ FileStore             = (*GridFSStore)(nil)
	_ VehiclePartCollection = (*MongoVehiclePartCollection)(nil)
	_ ReportCollection      = (*Store)(nil)
)
