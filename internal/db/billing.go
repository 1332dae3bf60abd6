package db

import (
	"context"
	"time"

	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEstimateCollection implements EstimateCollection for MongoDB
type MongoEstimateCollection struct {
	Collection *mongo.Collection
}

// InsertEstimate inserts an estimate
func (c *MongoEstimateCollection) InsertEstimate(ctx context.Context, estimate *models.Estimate) error {
	now := time.Now().UTC()
	estimate.CreatedAt = now
	estimate.UpdatedAt = now
	if estimate.Status == "" {
		estimate.Status = models.EstimatePending
	}

	res, err := c.Collection.InsertOne(ctx, estimate)
	if err != nil {
		return translate(err)
	}
	estimate.ID = insertedID(res)
	return nil
}

// FindEstimateByID finds an estimate of a tenant
func (c *MongoEstimateCollection) FindEstimateByID(ctx context.Context, tenantID, id string) (*models.Estimate, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	var estimate models.Estimate
	if err := c.Collection.FindOne(ctx, filter).Decode(&estimate); err != nil {
		return nil, translate(err)
	}
	return &estimate, nil
}

// ListEstimates returns one page of a tenant's estimates, newest first
func (c *MongoEstimateCollection) ListEstimates(ctx context.Context, tenantID string, q ListQuery) (Page[models.Estimate], error) {
	filter := listFilter(tenantID, q, "estimate_number", "client_name")
	return findPage[models.Estimate](ctx, c.Collection, filter, q.PageRequest)
}

// UpdateEstimate replaces the editable fields of an estimate
func (c *MongoEstimateCollection) UpdateEstimate(ctx context.Context, tenantID, id string, req models.EstimateRequest) (*models.Estimate, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"client_name":     req.ClientName,
		"estimate_number": req.EstimateNumber,
		"date":            req.Date,
		"expiration_date": req.ExpirationDate,
		"subtotal":        req.Subtotal,
		"tax_rate":        req.TaxRate,
		"total":           req.Total,
		"notes":           req.Notes,
		"updated_at":      time.Now().UTC(),
	}
	if req.Status != "" {
		set["status"] = req.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var estimate models.Estimate
	if err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&estimate); err != nil {
		return nil, translate(err)
	}
	return &estimate, nil
}

// DeleteEstimate deletes an estimate of a tenant
func (c *MongoEstimateCollection) DeleteEstimate(ctx context.Context, tenantID, id string) error {
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

// MongoInvoiceCollection implements InvoiceCollection for MongoDB
type MongoInvoiceCollection struct {
	Collection *mongo.Collection
}

// InsertInvoice inserts an invoice
func (c *MongoInvoiceCollection) InsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	if invoice.Status == "" {
		invoice.Status = models.InvoiceUnpaid
	}

	res, err := c.Collection.InsertOne(ctx, invoice)
	if err != nil {
		return translate(err)
	}
	invoice.ID = insertedID(res)
	return nil
}

// ListInvoices returns one page of a tenant's invoices, newest first
func (c *MongoInvoiceCollection) ListInvoices(ctx context.Context, tenantID string, q ListQuery) (Page[models.Invoice], error) {
	filter := listFilter(tenantID, q, "number", "client_name")
	return findPage[models.Invoice](ctx, c.Collection, filter, q.PageRequest)
}

// UpdateInvoiceStatus sets the payment status of an invoice
func (c *MongoInvoiceCollection) UpdateInvoiceStatus(ctx context.Context, tenantID, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var invoice models.Invoice
	if err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&invoice); err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}
