// Package ocr produces the raw token stream the extraction engine consumes.
//
// Two recognizers are provided: Tesseract via gosseract, behind the "ocr"
// build tag since it needs the Tesseract C library installed, and the Azure
// Computer Vision printed-text endpoint, which is pure HTTP and always
// compiled in. Both yield word-level tokens with bounding quads.
//
// To enable the Tesseract recognizer, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"context"
	"errors"

	"github.com/invoscan/invoscan/model"
)

// ErrOCRNotEnabled is returned when Tesseract functions are called but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer converts a captured image into positioned word tokens.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]model.RawToken, error)
}
