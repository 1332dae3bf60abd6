package db

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sniffLen is how much of a blob is read to detect its content type.
const sniffLen = 3072

// MongoFileCollection implements FileCollection for MongoDB
type MongoFileCollection struct {
	Collection *mongo.Collection
	Uploads    *mongo.Collection
}

// InsertFile inserts file metadata
func (c *MongoFileCollection) InsertFile(ctx context.Context, file *models.File) error {
	file.CreatedAt = time.Now().UTC()
	res, err := c.Collection.InsertOne(ctx, file)
	if err != nil {
		return translate(err)
	}
	file.ID = insertedID(res)
	return nil
}

// FindFileByID finds file metadata of a tenant
func (c *MongoFileCollection) FindFileByID(ctx context.Context, tenantID, id string) (*models.File, error) {
	filter, err := tenantDoc(tenantID, id)
	if err != nil {
		return nil, err
	}
	var file models.File
	if err := c.Collection.FindOne(ctx, filter).Decode(&file); err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// InsertUpload inserts a one-time upload ticket
func (c *MongoFileCollection) InsertUpload(ctx context.Context, upload *models.Upload) error {
	upload.CreatedAt = time.Now().UTC()
	res, err := c.Uploads.InsertOne(ctx, upload)
	if err != nil {
		return translate(err)
	}
	upload.ID = insertedID(res)
	return nil
}

// FindUpload finds an upload ticket by ID
func (c *MongoFileCollection) FindUpload(ctx context.Context, id string) (*models.Upload, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var upload models.Upload
	if err := c.Uploads.FindOne(ctx, bson.M{"_id": oid}).Decode(&upload); err != nil {
		return nil, translate(err)
	}
	return &upload, nil
}

// ClaimUpload atomically marks an unused ticket as used
func (c *MongoFileCollection) ClaimUpload(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := c.Uploads.UpdateOne(ctx, bson.M{"_id": oid, "used": false}, bson.M{"$set": bson.M{"used": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GridFSStore implements FileStore on a GridFS bucket
type GridFSStore struct {
	Bucket *gridfs.Bucket
}

type blobMetadata struct {
	TenantID    string `bson:"tenant_id"`
	ContentType string `bson:"content_type"`
}

type blobFile struct {
	ID       interface{}  `bson:"_id"`
	Length   int64        `bson:"length"`
	Metadata blobMetadata `bson:"metadata"`
}

// IsMedia reports whether contentType is an image or video type
func IsMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// detectContentType sniffs head, falling back to the declared type when
// detection finds nothing more specific. Only media types are accepted.
func detectContentType(head []byte, declared string) (string, error) {
	detected := mimetype.Detect(head).String()
	if detected == "application/octet-stream" || detected == "text/plain; charset=utf-8" {
		if declared != "" {
			detected = declared
		}
	}
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	if !IsMedia(detected) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected)
	}
	return detected, nil
}

// Put stores a blob under the content type detected from its content.
// Content that is not an image or video is ErrUnsupportedType.
func (s *GridFSStore) Put(ctx context.Context, tenantID, name, contentType string, r io.Reader) (*models.StoredObject, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]

	detected, err := detectContentType(head, contentType)
	if err != nil {
		return nil, err
	}

	meta := blobMetadata{TenantID: tenantID, ContentType: detected}
	opts := options.GridFSUpload().SetMetadata(meta)
	id, err := s.Bucket.UploadFromStream(name, io.MultiReader(bytes.NewReader(head), r), opts)
	if err != nil {
		return nil, err
	}
	return s.Stat(ctx, tenantID, id.Hex())
}

// Delete removes a tenant's blob
func (s *GridFSStore) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.Stat(ctx, tenantID, id); err != nil {
		return err
	}
	oid, _ := objectID(id)
	if err := s.Bucket.Delete(oid); err != nil {
		if err == gridfs.ErrFileNotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Stat returns the description of a tenant's blob
func (s *GridFSStore) Stat(ctx context.Context, tenantID, id string) (*models.StoredObject, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	cursor, err := s.Bucket.Find(bson.M{"_id": oid, "metadata.tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []blobFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}
	return &models.StoredObject{
		ID:          id,
		TenantID:    files[0].Metadata.TenantID,
		ContentType: files[0].Metadata.ContentType,
		Size:        files[0].Length,
	}, nil
}

// Open streams a tenant's blob
func (s *GridFSStore) Open(ctx context.Context, tenantID, id string) (io.ReadCloser, *models.StoredObject, error) {
	obj, err := s.Stat(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	oid, _ := objectID(id)
	stream, err := s.Bucket.OpenDownloadStream(oid)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return stream, obj, nil
}
