package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
)

// uploadTTL is how long an upload URL stays valid.
const uploadTTL = time.Hour

const fileNotFound = "File not found"

// FileHandler handles photo and video uploads
type FileHandler struct {
	files    db.FileCollection
	store    db.FileStore
	auth     *auth.Service
	maxBytes int64
	now      func() time.Time
}

// NewFileHandler creates a new file handler
func NewFileHandler(files db.FileCollection, store db.FileStore, authService *auth.Service, maxBytes int64) *FileHandler {
	return &FileHandler{
		files:    files,
		store:    store,
		auth:     authService,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// UploadURL issues a one-time upload URL for the caller's organization
func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	secret, err := h.auth.GenerateSecret()
	if err != nil {
		log.WithError(err).Error("Failed to generate upload secret")
		writeError(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}
	hash, err := h.auth.HashSecret(secret)
	if err != nil {
		log.WithError(err).Error("Failed to hash upload secret")
		writeError(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	upload := &models.Upload{
		TenantID:   user.TenantID,
		UploadedBy: user.ID.Hex(),
		TokenHash:  hash,
		ExpiresAt:  h.now().Add(uploadTTL).UTC(),
	}
	if err := h.files.InsertUpload(r.Context(), upload); err != nil {
		dbError(w, err, fileNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, models.UploadURLResponse{
		UploadURL: fmt.Sprintf("/api/files/upload/%s?token=%s", upload.ID.Hex(), url.QueryEscape(secret)),
		UploadID:  upload.ID.Hex(),
		ExpiresAt: upload.ExpiresAt,
	})
}

// Upload stores the request body under a one-time upload URL. The URL
// itself authorizes the request.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("uploadId")

	upload, err := h.files.FindUpload(r.Context(), id)
	if err != nil {
		dbError(w, err, "Upload URL not found")
		return
	}
	if upload.Used || h.now().After(upload.ExpiresAt) {
		writeError(w, http.StatusGone, "Upload URL has expired")
		return
	}
	if err := h.auth.CheckSecret(r.URL.Query().Get("token"), upload.TokenHash); err != nil {
		writeError(w, http.StatusForbidden, "Invalid upload token")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !db.IsMedia(contentType) {
		writeError(w, http.StatusUnsupportedMediaType, "Only images and videos can be uploaded")
		return
	}
	if r.ContentLength > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	obj, err := h.store.Put(r.Context(), upload.TenantID, "upload-"+id, contentType, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, db.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, "Only images and videos can be uploaded")
		default:
			log.WithError(err).WithField("upload_id", id).Error("Failed to store upload")
			writeError(w, http.StatusInternalServerError, "Failed to store file")
		}
		return
	}

	// The ticket is spent only once the blob is stored. A concurrent
	// upload that claimed it first wins and this blob is dropped.
	if err := h.files.ClaimUpload(r.Context(), id); err != nil {
		if delErr := h.store.Delete(r.Context(), upload.TenantID, obj.ID); delErr != nil {
			log.WithError(delErr).WithField("storage_id", obj.ID).Warn("Failed to remove unclaimed upload")
		}
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusGone, "Upload URL has expired")
			return
		}
		dbError(w, err, "Upload URL not found")
		return
	}

	log.WithFields(log.Fields{
		"tenant_id":    upload.TenantID,
		"storage_id":   obj.ID,
		"content_type": obj.ContentType,
		"size":         obj.Size,
	}).Info("File uploaded")
	writeJSON(w, http.StatusCreated, map[string]string{"storage_id": obj.ID})
}

// Save records an uploaded blob as a file of the organization
func (h *FileHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req models.SaveFileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	obj, err := h.store.Stat(r.Context(), user.TenantID, req.StorageID)
	if err != nil {
		dbError(w, err, fileNotFound)
		return
	}

	file := &models.File{
		TenantID:   user.TenantID,
		StorageID:  obj.ID,
		FileName:   req.FileName,
		FileType:   obj.ContentType,
		Size:       obj.Size,
		UploadedBy: user.ID.Hex(),
	}
	if err := h.files.InsertFile(r.Context(), file); err != nil {
		dbError(w, err, fileNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

// Download streams a file of the organization
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	file, err := h.files.FindFileByID(r.Context(), user.TenantID, r.PathValue("id"))
	if err != nil {
		dbError(w, err, fileNotFound)
		return
	}

	stream, obj, err := h.store.Open(r.Context(), user.TenantID, file.StorageID)
	if err != nil {
		dbError(w, err, fileNotFound)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, stream); err != nil {
		log.WithError(err).WithField("file_id", file.ID.Hex()).Warn("Failed to stream file")
	}
}
