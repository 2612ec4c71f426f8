package frame

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, err := Decode(encodePNG(t, testImage(40, 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("expected 40x30, got %v", img.Bounds())
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", encodePNG(t, testImage(10, 10))[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		factor       float64
		wantW, wantH int
	}{
		{"quarter", 640, 480, 0.25, 160, 120},
		{"half odd size", 101, 51, 0.5, 51, 26},
		{"tiny keeps one pixel", 2, 2, 0.25, 1, 1},
		{"factor one unchanged", 64, 32, 1, 64, 32},
		{"invalid factor unchanged", 64, 32, 0, 64, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Downscale(testImage(tt.w, tt.h), tt.factor)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, out.Bounds().Dx(), out.Bounds().Dy())
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(testImage(16, 16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("encoded jpeg does not decode: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("expected width 16, got %d", img.Bounds().Dx())
	}
}
