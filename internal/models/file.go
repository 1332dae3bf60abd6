package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is the metadata record of an uploaded photo or video.
type File struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID   string             `bson:"tenant_id" json:"tenant_id"`
	StorageID  string             `bson:"storage_id" json:"storage_id"`
	FileName   string             `bson:"file_name" json:"file_name"`
	FileType   string             `bson:"file_type" json:"file_type"`
	Size       int64              `bson:"size" json:"size"`
	UploadedBy string             `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Upload is a pending one-time upload ticket.
type Upload struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID   string             `bson:"tenant_id" json:"tenant_id"`
	UploadedBy string             `bson:"uploaded_by" json:"uploaded_by"`
	TokenHash  string             `bson:"token_hash" json:"-"`
	Used       bool               `bson:"used" json:"used"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// StoredObject describes a blob held by the file store.
type StoredObject struct {
	ID          string
	TenantID    string
	ContentType string
	Size        int64
}

// UploadURLResponse is returned by the upload-url endpoint
type UploadURLResponse struct {
	UploadURL string    `json:"upload_url"`
	UploadID  string    `json:"upload_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaveFileRequest records an uploaded blob as a file
type SaveFileRequest struct {
	StorageID string `json:"storage_id" validate:"required,len=24,hexadecimal"`
	FileName  string `json:"file_name" validate:"required,max=255"`
}
