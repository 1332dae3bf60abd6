package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{"negative", PageRequest{Page: -3, PageSize: -1}, PageRequest{Page: 1, PageSize: DefaultPageSize}},
		{"capped", PageRequest{Page: 2, PageSize: 500}, PageRequest{Page: 2, PageSize: MaxPageSize}},
		{"kept", PageRequest{Page: 4, PageSize: 25}, PageRequest{Page: 4, PageSize: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageRequest_Window(t *testing.T) {
	tests := []struct {
		name      string
		req       PageRequest
		total     int64
		wantSkip  int64
		wantCount int64
	}{
		{"second page is partial", PageRequest{Page: 2, PageSize: 10}, 15, 10, 5},
		{"first page is full", PageRequest{Page: 1, PageSize: 10}, 15, 0, 10},
		{"past the end", PageRequest{Page: 3, PageSize: 10}, 15, 20, 0},
		{"empty collection", PageRequest{}, 0, 0, 0},
		{"exact fit", PageRequest{Page: 2, PageSize: 5}, 10, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, count := tt.req.Window(tt.total)
			assert.Equal(t, tt.wantSkip, skip)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestPageRequest_TotalPages(t *testing.T) {
	req := PageRequest{PageSize: 10}
	assert.Equal(t, 0, req.TotalPages(0))
	assert.Equal(t, 1, req.TotalPages(10))
	assert.Equal(t, 2, req.TotalPages(15))
	assert.Equal(t, 3, req.TotalPages(21))
}

func TestListFilter(t *testing.T) {
	t.Run("tenant only", func(t *testing.T) {
		filter := listFilter("t1", ListQuery{}, "client_name")
		assert.Equal(t, bson.M{"tenant_id": "t1"}, filter)
	})

	t.Run("status and search", func(t *testing.T) {
		filter := listFilter("t1", ListQuery{Status: "pending", Search: "a.b"}, "estimate_number", "client_name")
		assert.Equal(t, "t1", filter["tenant_id"])
		assert.Equal(t, "pending", filter["status"])

		or, ok := filter["$or"].(bson.A)
		if assert.True(t, ok) && assert.Len(t, or, 2) {
			clause := or[1].(bson.M)
			assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, clause["client_name"])
		}
	})

	t.Run("search without fields is ignored", func(t *testing.T) {
		filter := listFilter("t1", ListQuery{Search: "x"})
		_, ok := filter["$or"]
		assert.False(t, ok)
	})
}

func TestTenantDoc(t *testing.T) {
	oid := primitive.NewObjectID()
	filter, err := tenantDoc("t1", oid.Hex())
	assert.NoError(t, err)
	assert.Equal(t, bson.M{"_id": oid, "tenant_id": "t1"}, filter)

	_, err = tenantDoc("t1", "invalid-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}
