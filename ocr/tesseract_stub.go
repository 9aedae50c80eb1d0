//go:build !ocr

package ocr

import (
	"context"

	"github.com/invoscan/invoscan/model"
)

// Tesseract is the stub used when the "ocr" build tag is not set. All
// methods return ErrOCRNotEnabled.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled; rebuild with -tags ocr for the
// real recognizer.
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op on the stub.
func (t *Tesseract) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (t *Tesseract) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) ([]model.RawToken, error) {
	return nil, ErrOCRNotEnabled
}
