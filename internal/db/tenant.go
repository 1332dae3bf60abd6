package db

import (
	"context"
	"strings"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTenantCollection implements TenantCollection for MongoDB
type MongoTenantCollection struct {
	Collection *mongo.Collection
}

// InsertTenant inserts a tenant; a taken slug is ErrDuplicate.
func (c *MongoTenantCollection) InsertTenant(ctx context.Context, tenant *models.Tenant) error {
	now := time.Now().UTC()
	tenant.Slug = strings.ToLower(tenant.Slug)
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	res, err := c.Collection.InsertOne(ctx, tenant)
	if err != nil {
		return translate(err)
	}
	tenant.ID = insertedID(res)
	return nil
}

// DeleteTenant removes a tenant
func (c *MongoTenantCollection) DeleteTenant(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindTenantByID finds a tenant by its ID
func (c *MongoTenantCollection) FindTenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": oid})
}

// FindTenantBySlug finds a tenant by its subdomain label
func (c *MongoTenantCollection) FindTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return c.findOne(ctx, bson.M{"slug": strings.ToLower(slug)})
}

// FindTenantByDomain finds a tenant by its verified custom domain
func (c *MongoTenantCollection) FindTenantByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	return c.findOne(ctx, bson.M{"verified_domain": strings.ToLower(domain)})
}

// UpdateTenantDomain stores the verified domain of a tenant
func (c *MongoTenantCollection) UpdateTenantDomain(ctx context.Context, id, domain string) error {
	_, err := c.update(ctx, id, bson.M{"verified_domain": strings.ToLower(domain)})
	return err
}

// UpdateTenantConfig merges the assessment configuration; zero fields are kept.
func (c *MongoTenantCollection) UpdateTenantConfig(ctx context.Context, id string, req models.UpdateTenantConfigRequest) (*models.Tenant, error) {
	set := bson.M{}
	if req.AllowedVehicleTypes != nil {
		set["allowed_vehicle_types"] = req.AllowedVehicleTypes
	}
	if req.MaxImages > 0 {
		set["max_images"] = req.MaxImages
	}
	if req.MaxVideos > 0 {
		set["max_videos"] = req.MaxVideos
	}
	return c.update(ctx, id, set)
}

// UpdateTenantSettings merges the advanced settings; empty fields are kept.
func (c *MongoTenantCollection) UpdateTenantSettings(ctx context.Context, id string, settings models.TenantSettings) (*models.Tenant, error) {
	set := bson.M{}
	if settings.DataRetention != "" {
		set["settings.data_retention"] = settings.DataRetention
	}
	if settings.DefaultTimezone != "" {
		set["settings.default_timezone"] = settings.DefaultTimezone
	}
	if settings.DefaultLanguage != "" {
		set["settings.default_language"] = settings.DefaultLanguage
	}
	return c.update(ctx, id, set)
}

// SetIntegration records whether an integration is connected
func (c *MongoTenantCollection) SetIntegration(ctx context.Context, id, integrationID string, connected bool) (*models.Tenant, error) {
	return c.update(ctx, id, bson.M{"integrations." + integrationID: connected})
}

func (c *MongoTenantCollection) update(ctx context.Context, id string, set bson.M) (*models.Tenant, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tenant models.Tenant
	if err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&tenant); err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (c *MongoTenantCollection) findOne(ctx context.Context, filter bson.M) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := c.Collection.FindOne(ctx, filter).Decode(&tenant); err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}
