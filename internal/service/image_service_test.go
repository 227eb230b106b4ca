package service

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestJPEG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("encode image: %v", err)
	}
}

func decodeConfig(t *testing.T, path string) image.Config {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open image: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	return cfg
}

func TestNormalizeBoundsLargeImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blog_big.jpg")
	writeTestJPEG(t, src, 2400, 1200)

	out := NewImageService().Normalize(src)
	if out == src {
		t.Fatal("expected an optimized copy, got the original path")
	}
	if !strings.HasSuffix(out, "_optimized.jpg") {
		t.Errorf("unexpected optimized path %q", out)
	}

	cfg := decodeConfig(t, out)
	if cfg.Width > 1200 || cfg.Height > 1200 {
		t.Errorf("image not bounded: %dx%d", cfg.Width, cfg.Height)
	}
	// Aspect ratio 2:1 preserved.
	if cfg.Width != 1200 || cfg.Height != 600 {
		t.Errorf("expected 1200x600, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeKeepsSmallImagesUnscaled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blog_small.jpg")
	writeTestJPEG(t, src, 640, 480)

	out := NewImageService().Normalize(src)
	cfg := decodeConfig(t, out)
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("small image should keep its size, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestNormalizeFlattensTransparentPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blog_alpha.jpg")

	// A PNG with an alpha channel, saved under a .jpg name the way the photo
	// download step names everything.
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 30})
		}
	}
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
	f.Close()

	out := NewImageService().Normalize(src)
	if out == src {
		t.Fatal("expected a re-encoded copy for a transparent input")
	}

	g, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer g.Close()
	_, format, err := image.Decode(g)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected a jpeg output, got %s", format)
	}
}

func TestNormalizeReturnsOriginalOnCorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blog_bad.jpg")
	if err := os.WriteFile(src, []byte("this is not an image"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out := NewImageService().Normalize(src)
	if out != src {
		t.Errorf("corrupt input should fall back to the original path, got %q", out)
	}
}

func TestNormalizeReturnsOriginalOnMissingInput(t *testing.T) {
	src := filepath.Join(t.TempDir(), "nope.jpg")
	if out := NewImageService().Normalize(src); out != src {
		t.Errorf("missing input should fall back to the original path, got %q", out)
	}
}
