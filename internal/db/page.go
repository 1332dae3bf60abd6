package db

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects one page of a list. Zero values select the defaults.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize applies the defaults and the page size cap.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Skip is the number of records before the page.
func (p PageRequest) Skip() int64 {
	p = p.Normalize()
	return int64(p.Page-1) * int64(p.PageSize)
}

// Window returns the offset and length of the page within total records.
func (p PageRequest) Window(total int64) (skip, count int64) {
	p = p.Normalize()
	skip = p.Skip()
	if skip >= total {
		return skip, 0
	}
	count = total - skip
	if count > int64(p.PageSize) {
		count = int64(p.PageSize)
	}
	return skip, count
}

// TotalPages is ceil(total / page size).
func (p PageRequest) TotalPages(total int64) int {
	p = p.Normalize()
	size := int64(p.PageSize)
	return int((total + size - 1) / size)
}

// ListQuery filters a tenant-scoped list.
type ListQuery struct {
	PageRequest
	Search string
	Status string
}

// Page is one page of a tenant-scoped list.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// listFilter builds the tenant-scoped filter of a list query. The search term
// is matched as a literal, case-insensitive substring of any searchFields.
func listFilter(tenantID string, q ListQuery, searchFields ...string) bson.M {
	filter := bson.M{"tenant_id": tenantID}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" && len(searchFields) > 0 {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}
	return filter
}

// newestFirst orders by creation time, ties broken by id.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, req PageRequest) (Page[T], error) {
	req = req.Normalize()
	page := Page[T]{Items: []T{}, Page: req.Page, PageSize: req.PageSize}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return page, err
	}
	page.TotalCount = total
	page.TotalPages = req.TotalPages(total)

	skip, count := req.Window(total)
	if count == 0 {
		return page, nil
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(skip).SetLimit(count)
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return page, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &page.Items); err != nil {
		return page, err
	}
	return page, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
