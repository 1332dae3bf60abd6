package vin

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	log "github.com/sirupsen/logrus"
)

// ScannerConfig carries the camera and decoder settings used by browser
// clients and by the server-side Scanner.
type ScannerConfig struct {
	InputStream  InputStream `json:"inputStream"`
	Locator      Locator     `json:"locator"`
	NumOfWorkers int         `json:"numOfWorkers"`
	Decoder      Decoder     `json:"decoder"`
	Locate       bool        `json:"locate"`
}

type InputStream struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Constraints Constraints `json:"constraints"`
}

type Constraints struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FacingMode string `json:"facingMode"`
}

type Locator struct {
	PatchSize  string `json:"patchSize"`
	HalfSample bool   `json:"halfSample"`
}

type Decoder struct {
	Readers []string `json:"readers"`
}

const Code128Reader = "code_128_reader"

// DefaultScannerConfig uses the rear camera at 640x480 with a single Code 128 decoder.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		InputStream: InputStream{
			Name: "Live",
			Type: "LiveStream",
			Constraints: Constraints{
				Width:      640,
				Height:     480,
				FacingMode: "environment",
			},
		},
		Locator:      Locator{PatchSize: "medium", HalfSample: true},
		NumOfWorkers: runtime.NumCPU(),
		Decoder:      Decoder{Readers: []string{Code128Reader}},
		Locate:       true,
	}
}

// Detection is delivered to listeners for every valid VIN scanned.
type Detection struct {
	VIN        string
	Format     string
	CheckDigit bool
	At         time.Time
}

var readerFactories = map[string]func() gozxing.Reader{
	Code128Reader:    oned.NewCode128Reader,
	"code_39_reader": oned.NewCode39Reader,
	"ean_reader":     oned.NewEAN13Reader,
}

// Scanner decodes VIN barcodes from still frames.
type Scanner struct {
	readers []func() gozxing.Reader

	mu        sync.RWMutex
	listeners []func(Detection)
}

// NewScanner builds a scanner for the configured decoders. Unknown decoder
// names are an error.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	s := &Scanner{}
	for _, name := range cfg.Decoder.Readers {
		factory, ok := readerFactories[name]
		if !ok {
			return nil, fmt.Errorf("unsupported barcode reader %q", name)
		}
		s.readers = append(s.readers, factory)
	}
	if len(s.readers) == 0 {
		return nil, fmt.Errorf("no barcode reader configured")
	}
	return s, nil
}

// OnDetected registers a listener for valid scans.
func (s *Scanner) OnDetected(fn func(Detection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Scan decodes the first barcode found in img and returns it as a VIN.
// A barcode that is not a VIN yields ErrInvalidVIN and notifies nobody.
func (s *Scanner) Scan(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	var result *gozxing.Result
	for _, newReader := range s.readers {
		result, err = newReader().Decode(bmp, hints)
		if err == nil {
			break
		}
	}
	if result == nil {
		return "", ErrNoBarcode
	}

	code := Normalize(result.GetText())
	if !Validate(code) {
		log.WithField("code", code).Debug("Scanned barcode is not a VIN")
		return "", fmt.Errorf("%w: %q", ErrInvalidVIN, code)
	}

	detection := Detection{
		VIN:        code,
		Format:     result.GetBarcodeFormat().String(),
		CheckDigit: HasValidCheckDigit(code),
		At:         time.Now(),
	}

	s.mu.RLock()
	listeners := append([]func(Detection){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(detection)
	}
	return code, nil
}

// ScanReader decodes a JPEG or PNG image and scans it.
func (s *Scanner) ScanReader(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUndecodableImage, err)
	}
	return s.Scan(img)
}
