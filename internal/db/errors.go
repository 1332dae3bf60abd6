package db

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches, including documents
	// that exist but belong to another tenant.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on a unique index violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidID is returned for ids that are not 24-character hex strings.
	ErrInvalidID = errors.New("invalid id")
	// ErrUnsupportedType is returned for blobs whose content is not an image or video.
	ErrUnsupportedType = errors.New("unsupported content type")
)

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// tenantDoc is the filter of one document owned by a tenant.
func tenantDoc(tenantID, id string) (bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "tenant_id": tenantID}, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid
	}
	return primitive.NilObjectID
}
