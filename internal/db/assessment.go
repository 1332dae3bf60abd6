package db

import (
	"context"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var assessmentSearchFields = []string{"vehicle.make", "vehicle.model", "vehicle.license_plate", "vehicle.vin"}

// MongoAssessmentCollection implements AssessmentCollection for MongoDB
type MongoAssessmentCollection struct {
	Collection *mongo.Collection
}

// InsertAssessment inserts a submitted assessment
func (c *MongoAssessmentCollection) InsertAssessment(ctx context.Context, assessment *models.Assessment) error {
	now := time.Now().UTC()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	if assessment.Status == "" {
		assessment.Status = models.AssessmentPending
	}

	res, err := c.Collection.InsertOne(ctx, assessment)
	if err != nil {
		return translate(err)
	}
	assessment.ID = insertedID(res)
	return nil
}

// FindAssessmentByID finds an assessment of a tenant
func (c *MongoAssessmentCollection) FindAssessmentByID(ctx context.Context, tenantID, id string) (*models.Assessment, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	var assessment models.Assessment
	if err := c.Collection.FindOne(ctx, filter).Decode(&assessment); err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}

// ListAssessments returns one page of a tenant's assessments, newest first
func (c *MongoAssessmentCollection) ListAssessments(ctx context.Context, tenantID string, q ListQuery) (Page[models.Assessment], error) {
	return findPage[models.Assessment](ctx, c.Collection, listFilter(tenantID, q, assessmentSearchFields...), q.PageRequest)
}

// ListAssessmentsByUser lists the assessments a user submitted, newest first
func (c *MongoAssessmentCollection) ListAssessmentsByUser(ctx context.Context, tenantID, userID string) ([]models.Assessment, error) {
	opts := options.Find().SetSort(newestFirst)
	return findAll[models.Assessment](ctx, c.Collection, bson.M{"tenant_id": tenantID, "user_id": userID}, opts)
}

// UpdateAssessmentStatus records the review outcome of an assessment
func (c *MongoAssessmentCollection) UpdateAssessmentStatus(ctx context.Context, tenantID, id string, status models.AssessmentStatus, notes string) (*models.Assessment, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if notes != "" {
		set["notes"] = notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var assessment models.Assessment
	if err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&assessment); err != nil {
		return nil, translate(err)
	}
	return &assessment, nil
}
