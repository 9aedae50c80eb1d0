//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/invoscan/invoscan/model"
)

// Tesseract recognizes tokens with the local Tesseract engine via gosseract.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a Tesseract recognizer.
// The recognizer should be closed when no longer needed to release resources.
func NewTesseract() (*Tesseract, error) {
	return &Tesseract{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string
// (e.g., "eng+hin"). Default is "eng" (English).
func (t *Tesseract) SetLanguage(lang string) error {
	return t.client.SetLanguage(lang)
}

// Recognize performs OCR on image data (PNG, TIFF, JPEG, etc.) and returns
// word-level tokens with bounding quads. Tesseract reports confidence on a
// 0-100 scale; tokens carry it normalized to 0-1.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) ([]model.RawToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	tokens := make([]model.RawToken, 0, len(boxes))
	for _, b := range boxes {
		r := b.Box
		tokens = append(tokens, model.RawToken{
			Text:       b.Word,
			Confidence: b.Confidence / 100,
			Quad: model.QuadFromRect(
				float64(r.Min.X), float64(r.Min.Y),
				float64(r.Dx()), float64(r.Dy()),
			),
		})
	}
	return tokens, nil
}
