//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestStubReturnsErrOCRNotEnabled(t *testing.T) {
	rec, err := NewTesseract()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("NewTesseract error = %v, want ErrOCRNotEnabled", err)
	}

	if err := rec.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage error = %v", err)
	}
	if _, err := rec.Recognize(context.Background(), nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Recognize error = %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
}
