package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/db/mocks"
	"github.com/ukydev/autodetail/internal/models"
	"github.com/ukydev/autodetail/internal/vin"
)

type mockLookup struct{ mock.Mock }

func (m *mockLookup) Details(ctx context.Context, code string) (json.RawMessage, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return json.RawMessage(args.String(0)), args.Error(1)
}

func newVehicleHandler(t *testing.T, lookup VehicleLookup, parts *mocks.VehiclePartCollection) *VehicleHandler {
	t.Helper()
	cfg := vin.DefaultScannerConfig()
	scanner, err := vin.NewScanner(cfg)
	require.NoError(t, err)
	return NewVehicleHandler(lookup, parts, scanner, cfg, 1<<20)
}

func barcodePNG(t *testing.T, contents string) []byte {
	t.Helper()
	matrix, err := oned.NewCode128Writer().Encode(contents, gozxing.BarcodeFormat_CODE_128, 600, 120, nil)
	require.NoError(t, err)
	img := image.NewGray(matrix.Bounds())
	for y := 0; y < matrix.Bounds().Dy(); y++ {
		for x := 0; x < matrix.Bounds().Dx(); x++ {
			img.Set(x, y, color.GrayModel.Convert(matrix.At(x, y)))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVehicleHandler_ValidateVIN(t *testing.T) {
	handler := newVehicleHandler(t, new(mockLookup), new(mocks.VehiclePartCollection))

	tests := []struct {
		vin  string
		want models.ValidateVINResponse
	}{
		{"1HGCM82633A004352", models.ValidateVINResponse{VIN: "1HGCM82633A004352", Valid: true, CheckDigitValid: true}},
		{"1234567890ABCDEFG", models.ValidateVINResponse{VIN: "1234567890ABCDEFG", Valid: true, CheckDigitValid: false}},
		{"1234567890ABCDEFI", models.ValidateVINResponse{VIN: "1234567890ABCDEFI", Valid: false}},
		{"1HGCM8263", models.ValidateVINResponse{VIN: "1HGCM8263", Valid: false}},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ValidateVIN(w, newRequest(t, http.MethodPost, "/api/vin/validate", models.ValidateVINRequest{VIN: tt.vin}, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got models.ValidateVINResponse
		decodeBody(t, w, &got)
		assert.Equal(t, tt.want, got, tt.vin)
	}
}

func TestVehicleHandler_ScannerConfig(t *testing.T) {
	handler := newVehicleHandler(t, new(mockLookup), new(mocks.VehiclePartCollection))

	w := httptest.NewRecorder()
	handler.ScannerConfig(w, newRequest(t, http.MethodGet, "/api/vin/scanner-config", nil, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, true, body["locate"])
	assert.Equal(t, []interface{}{"code_128_reader"}, body["decoder"].(map[string]interface{})["readers"])
}

func TestVehicleHandler_Scan(t *testing.T) {
	handler := newVehicleHandler(t, new(mockLookup), new(mocks.VehiclePartCollection))

	t.Run("raw body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/vin/scan", bytes.NewReader(barcodePNG(t, "1HGCM82633A004352")))
		req.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		handler.Scan(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"vin":"1HGCM82633A004352"}`, w.Body.String())
	})

	t.Run("multipart", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "frame.png")
		require.NoError(t, err)
		_, err = part.Write(barcodePNG(t, "JH4KA7561PC008269"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/vin/scan", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		handler.Scan(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"vin":"JH4KA7561PC008269"}`, w.Body.String())
	})

	t.Run("barcode is not a VIN", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/vin/scan", bytes.NewReader(barcodePNG(t, "HELLO-123")))
		req.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		handler.Scan(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "The scanned code is not a valid VIN. Please try again.", errorMessage(t, w))
	})

	t.Run("no barcode", func(t *testing.T) {
		blank := image.NewGray(image.Rect(0, 0, 200, 100))
		for i := range blank.Pix {
			blank.Pix[i] = 0xff
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, blank))

		req := httptest.NewRequest(http.MethodPost, "/api/vin/scan", &buf)
		req.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		handler.Scan(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/vin/scan", bytes.NewReader([]byte("hello")))
		w := httptest.NewRecorder()
		handler.Scan(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := vin.DefaultScannerConfig()
		scanner, err := vin.NewScanner(cfg)
		require.NoError(t, err)
		small := NewVehicleHandler(new(mockLookup), new(mocks.VehiclePartCollection), scanner, cfg, 16)
		frame := barcodePNG(t, "1HGCM82633A004352")

		declared := httptest.NewRequest(http.MethodPost, "/api/vin/scan", bytes.NewReader(frame))
		declared.Header.Set("Content-Type", "image/png")
		w := httptest.NewRecorder()
		small.Scan(w, declared)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "File too large", errorMessage(t, w))

		streamed := httptest.NewRequest(http.MethodPost, "/api/vin/scan", bytes.NewReader(frame))
		streamed.Header.Set("Content-Type", "image/png")
		streamed.ContentLength = -1
		w = httptest.NewRecorder()
		small.Scan(w, streamed)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "File too large", errorMessage(t, w))
	})
}

func TestVehicleHandler_Details(t *testing.T) {
	t.Run("passes the reply through", func(t *testing.T) {
		lookup := new(mockLookup)
		lookup.On("Details", mock.Anything, "1HGCM82633A004352").Return(`{"make":"Honda","model":"Accord","year":2003}`, nil)
		handler := newVehicleHandler(t, lookup, new(mocks.VehiclePartCollection))

		req := newRequest(t, http.MethodGet, "/api/vehicles/1hgcm82633a004352", nil, nil)
		req.SetPathValue("vin", "1hgcm82633a004352")
		w := httptest.NewRecorder()
		handler.Details(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"make":"Honda","model":"Accord","year":2003}`, w.Body.String())
	})

	t.Run("upstream failure", func(t *testing.T) {
		lookup := new(mockLookup)
		lookup.On("Details", mock.Anything, "1HGCM82633A004352").Return(nil, errors.New("status 503"))
		handler := newVehicleHandler(t, lookup, new(mocks.VehiclePartCollection))

		req := newRequest(t, http.MethodGet, "/api/vehicles/1HGCM82633A004352", nil, nil)
		req.SetPathValue("vin", "1HGCM82633A004352")
		w := httptest.NewRecorder()
		handler.Details(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Failed to fetch vehicle details for VIN 1HGCM82633A004352", errorMessage(t, w))
	})

	t.Run("invalid VIN", func(t *testing.T) {
		lookup := new(mockLookup)
		handler := newVehicleHandler(t, lookup, new(mocks.VehiclePartCollection))

		req := newRequest(t, http.MethodGet, "/api/vehicles/ABC", nil, nil)
		req.SetPathValue("vin", "ABC")
		w := httptest.NewRecorder()
		handler.Details(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		lookup.AssertNotCalled(t, "Details", mock.Anything, mock.Anything)
	})
}

func TestVehicleHandler_Parts(t *testing.T) {
	parts := new(mocks.VehiclePartCollection)
	parts.On("ListParts", mock.Anything).Return([]models.VehiclePart{{Name: "Hood", Area: "exterior"}}, nil)
	handler := newVehicleHandler(t, new(mockLookup), parts)

	w := httptest.NewRecorder()
	handler.Parts(w, newRequest(t, http.MethodGet, "/api/vehicle-parts", nil, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hood")
}
