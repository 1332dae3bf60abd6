package db

import (
	"context"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceCollection implements ServiceCollection for MongoDB
type MongoServiceCollection struct {
	Collection *mongo.Collection
}

// InsertService inserts a service into the tenant's catalog
func (c *MongoServiceCollection) InsertService(ctx context.Context, service *models.Service) error {
	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, service)
	if err != nil {
		return translate(err)
	}
	service.ID = insertedID(res)
	return nil
}

// ListServices lists the catalog of a tenant by name
func (c *MongoServiceCollection) ListServices(ctx context.Context, tenantID string) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findAll[models.Service](ctx, c.Collection, bson.M{"tenant_id": tenantID}, opts)
}

// FindServiceByID finds a service of a tenant
func (c *MongoServiceCollection) FindServiceByID(ctx context.Context, tenantID, id string) (*models.Service, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	var service models.Service
	if err := c.Collection.FindOne(ctx, filter).Decode(&service); err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

// CountServicesByIDs counts how many of ids belong to the tenant
func (c *MongoServiceCollection) CountServicesByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return c.Collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID, "_id": bson.M{"$in": ids}})
}

// UpdateService applies a partial update to a service of a tenant
func (c *MongoServiceCollection) UpdateService(ctx context.Context, tenantID, id string, req models.UpdateServiceRequest) (*models.Service, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.BasePrice != nil {
		set["base_price"] = *req.BasePrice
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var service models.Service
	if err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&service); err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

// DeleteService deletes a service of a tenant
func (c *MongoServiceCollection) DeleteService(ctx context.Context, tenantID, id string) error {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return err
	}
	res, err := c.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoVehiclePartCollection implements VehiclePartCollection for MongoDB
type MongoVehiclePartCollection struct {
	Collection *mongo.Collection
}

// ListParts lists the part catalog by area and name
func (c *MongoVehiclePartCollection) ListParts(ctx context.Context) ([]models.VehiclePart, error) {
	opts := options.Find().SetSort(bson.D{{Key: "area", Value: 1}, {Key: "name", Value: 1}})
	return findAll[models.VehiclePart](ctx, c.Collection, bson.M{}, opts)
}

// InsertParts adds parts to the catalog
func (c *MongoVehiclePartCollection) InsertParts(ctx context.Context, parts []models.VehiclePart) error {
	if len(parts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(parts))
	for i := range parts {
		parts[i].CreatedAt = now
		docs = append(docs, parts[i])
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return translate(err)
}
