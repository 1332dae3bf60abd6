package db

import (
	"context"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppointmentCollection implements AppointmentCollection for MongoDB
type MongoAppointmentCollection struct {
	Collection *mongo.Collection
}

// InsertAppointment inserts an appointment
func (c *MongoAppointmentCollection) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	if appointment.Status == "" {
		appointment.Status = models.AppointmentScheduled
	}

	res, err := c.Collection.InsertOne(ctx, appointment)
	if err != nil {
		return translate(err)
	}
	appointment.ID = insertedID(res)
	return nil
}

// FindAppointmentByID finds an appointment of a tenant
func (c *MongoAppointmentCollection) FindAppointmentByID(ctx context.Context, tenantID, id string) (*models.Appointment, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	var appointment models.Appointment
	if err := c.Collection.FindOne(ctx, filter).Decode(&appointment); err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

// ListAppointmentsByDate lists the appointments of a day by time
func (c *MongoAppointmentCollection) ListAppointmentsByDate(ctx context.Context, tenantID, date string) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	return findAll[models.Appointment](ctx, c.Collection, bson.M{"tenant_id": tenantID, "date": date}, opts)
}

// UpdateAppointmentStatus sets the status of an appointment
func (c *MongoAppointmentCollection) UpdateAppointmentStatus(ctx context.Context, tenantID, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appointment models.Appointment
	if err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&appointment); err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}
