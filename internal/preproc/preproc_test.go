package preproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	_ "image/jpeg"
)

func TestEnhance(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for x := 0; x < 24; x++ {
		for y := 0; y < 16; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 10), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	out, err := Enhance(buf.Bytes(), DefaultConfig())
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding enhanced image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 16 {
		t.Errorf("bounds = %v, want 24x16", img.Bounds())
	}
}

func TestEnhance_BadInput(t *testing.T) {
	if _, err := Enhance([]byte("not an image"), DefaultConfig()); err == nil {
		t.Fatal("expected decode error")
	}
}
