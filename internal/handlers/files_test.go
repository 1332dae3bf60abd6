package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/db/mocks"
	"github.com/ukydev/autodetail/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fileFixture struct {
	files   *mocks.FileCollection
	store   *mocks.FileStore
	auth    *auth.Service
	handler *FileHandler
}

func newFileFixture() *fileFixture {
	f := &fileFixture{
		files: new(mocks.FileCollection),
		store: new(mocks.FileStore),
		auth:  auth.NewService("test-secret", time.Hour),
	}
	f.handler = NewFileHandler(f.files, f.store, f.auth, 1024)
	return f
}

// ticket returns a stored upload and its secret.
func (f *fileFixture) ticket(t *testing.T) (*models.Upload, string) {
	t.Helper()
	secret, err := f.auth.GenerateSecret()
	require.NoError(t, err)
	hash, err := f.auth.HashSecret(secret)
	require.NoError(t, err)
	return &models.Upload{
		ID:        primitive.NewObjectID(),
		TenantID:  testTenantID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
	}, secret
}

func uploadRequest(upload *models.Upload, secret, contentType, body string) *http.Request {
	target := "/api/files/upload/" + upload.ID.Hex() + "?token=" + url.QueryEscape(secret)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.SetPathValue("uploadId", upload.ID.Hex())
	return req
}

func TestFileHandler_UploadURL(t *testing.T) {
	f := newFileFixture()
	user := testUser(models.RoleClient)
	var stored *models.Upload
	f.files.On("InsertUpload", mock.Anything, mock.AnythingOfType("*models.Upload")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.Upload)
		stored.ID = primitive.NewObjectID()
	}).Return(nil)

	w := httptest.NewRecorder()
	f.handler.UploadURL(w, newRequest(t, http.MethodPost, "/api/files/upload-url", nil, user))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.UploadURLResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, stored.ID.Hex(), resp.UploadID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	u, err := url.Parse(resp.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/files/upload/"+stored.ID.Hex(), u.Path)
	assert.NoError(t, f.auth.CheckSecret(u.Query().Get("token"), stored.TokenHash))
	assert.Equal(t, user.ID.Hex(), stored.UploadedBy)
}

func TestFileHandler_Upload(t *testing.T) {
	t.Run("stores the body", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)
		f.files.On("ClaimUpload", mock.Anything, upload.ID.Hex()).Return(nil)
		f.store.On("Put", mock.Anything, testTenantID, "upload-"+upload.ID.Hex(), "image/png", mock.Anything).
			Return(&models.StoredObject{ID: "65f1a2b3c4d5e6f708192a3d", ContentType: "image/png", Size: 4}, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/png", "\x89PNG"))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"storage_id":"65f1a2b3c4d5e6f708192a3d"}`, w.Body.String())
		f.files.AssertExpectations(t)
	})

	t.Run("wrong token", func(t *testing.T) {
		f := newFileFixture()
		upload, _ := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, "guess", "image/png", "data"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.files.AssertNotCalled(t, "ClaimUpload", mock.Anything, mock.Anything)
	})

	t.Run("used ticket", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		upload.Used = true
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/png", "data"))

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("claimed concurrently", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		storageID := "65f1a2b3c4d5e6f708192a3d"
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)
		f.store.On("Put", mock.Anything, testTenantID, "upload-"+upload.ID.Hex(), "video/mp4", mock.Anything).
			Return(&models.StoredObject{ID: storageID, ContentType: "video/mp4", Size: 4}, nil)
		f.files.On("ClaimUpload", mock.Anything, upload.ID.Hex()).Return(db.ErrNotFound)
		f.store.On("Delete", mock.Anything, testTenantID, storageID).Return(nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "video/mp4", "data"))

		assert.Equal(t, http.StatusGone, w.Code)
		f.store.AssertExpectations(t)
	})

	t.Run("body over the limit keeps the ticket", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)
		f.store.On("Put", mock.Anything, testTenantID, "upload-"+upload.ID.Hex(), "image/png", mock.Anything).
			Return(nil, &http.MaxBytesError{Limit: 1024})

		req := uploadRequest(upload, secret, "image/png", strings.Repeat("x", 2048))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		f.handler.Upload(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "File too large", errorMessage(t, w))
		f.files.AssertNotCalled(t, "ClaimUpload", mock.Anything, mock.Anything)
	})

	t.Run("content is not media", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)
		f.store.On("Put", mock.Anything, testTenantID, "upload-"+upload.ID.Hex(), "image/png", mock.Anything).
			Return(nil, fmt.Errorf("%w: application/pdf", db.ErrUnsupportedType))

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/png", "%PDF-1.7\n"))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Equal(t, "Only images and videos can be uploaded", errorMessage(t, w))
		f.files.AssertNotCalled(t, "ClaimUpload", mock.Anything, mock.Anything)
	})

	t.Run("storage failure keeps the ticket", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)
		f.store.On("Put", mock.Anything, testTenantID, "upload-"+upload.ID.Hex(), "image/png", mock.Anything).
			Return(nil, errors.New("connection reset"))

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/png", "\x89PNG"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		f.files.AssertNotCalled(t, "ClaimUpload", mock.Anything, mock.Anything)
	})

	t.Run("expired ticket", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		upload.ExpiresAt = time.Now().Add(-time.Minute)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/jpeg", "data"))

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("not a media type", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "application/pdf", "%PDF"))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		f := newFileFixture()
		upload, secret := f.ticket(t)
		f.files.On("FindUpload", mock.Anything, upload.ID.Hex()).Return(upload, nil)

		w := httptest.NewRecorder()
		f.handler.Upload(w, uploadRequest(upload, secret, "image/png", strings.Repeat("x", 2048)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		f.files.AssertNotCalled(t, "ClaimUpload", mock.Anything, mock.Anything)
	})
}

func TestFileHandler_Save(t *testing.T) {
	storageID := primitive.NewObjectID().Hex()

	t.Run("type taken from the stored object", func(t *testing.T) {
		f := newFileFixture()
		f.store.On("Stat", mock.Anything, testTenantID, storageID).
			Return(&models.StoredObject{ID: storageID, ContentType: "image/jpeg", Size: 2048}, nil)
		f.files.On("InsertFile", mock.Anything, mock.MatchedBy(func(file *models.File) bool {
			return file.FileType == "image/jpeg" && file.Size == 2048 && file.FileName == "hood.jpg"
		})).Return(nil)

		w := httptest.NewRecorder()
		f.handler.Save(w, newRequest(t, http.MethodPost, "/api/files",
			models.SaveFileRequest{StorageID: storageID, FileName: "hood.jpg"}, testUser(models.RoleClient)))

		assert.Equal(t, http.StatusCreated, w.Code)
		f.files.AssertExpectations(t)
	})

	t.Run("unknown blob", func(t *testing.T) {
		f := newFileFixture()
		f.store.On("Stat", mock.Anything, testTenantID, storageID).Return(nil, db.ErrNotFound)

		w := httptest.NewRecorder()
		f.handler.Save(w, newRequest(t, http.MethodPost, "/api/files",
			models.SaveFileRequest{StorageID: storageID, FileName: "hood.jpg"}, testUser(models.RoleClient)))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "File not found", errorMessage(t, w))
	})
}

func TestFileHandler_Download(t *testing.T) {
	f := newFileFixture()
	file := &models.File{ID: primitive.NewObjectID(), StorageID: "65f1a2b3c4d5e6f708192a3d", FileName: "hood.jpg"}
	f.files.On("FindFileByID", mock.Anything, testTenantID, file.ID.Hex()).Return(file, nil)
	f.store.On("Open", mock.Anything, testTenantID, file.StorageID).
		Return(io.NopCloser(strings.NewReader("jpeg")), &models.StoredObject{ContentType: "image/jpeg", Size: 4}, nil)

	req := newRequest(t, http.MethodGet, "/api/files/"+file.ID.Hex(), nil, testUser(models.RoleMember))
	req.SetPathValue("id", file.ID.Hex())
	w := httptest.NewRecorder()
	f.handler.Download(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg", w.Body.String())

	t.Run("store failure", func(t *testing.T) {
		f := newFileFixture()
		f.files.On("FindFileByID", mock.Anything, testTenantID, file.ID.Hex()).Return(file, nil)
		f.store.On("Open", mock.Anything, testTenantID, file.StorageID).Return(nil, nil, errors.New("chunk missing"))

		w := httptest.NewRecorder()
		f.handler.Download(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
