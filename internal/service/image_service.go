package service

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	maxImageDimension = 1200
	jpegQuality       = 85
)

type ImageService interface {
	Normalize(path string) string
}

type imageService struct{}

func NewImageService() ImageService {
	return &imageService{}
}

// Normalize writes a bounded, re-encoded JPEG copy next to the source image
// and returns its path. Failures are not errors: the original path is
// returned unchanged and the publish flow continues with the raw file.
func (s *imageService) Normalize(path string) string {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		slog.Warn("image optimization failed: " + err.Error())
		return path
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	// The JPEG encode drops any alpha channel or palette outright; transparent
	// pixels are not composited against a background color.
	optimized := optimizedPath(path)
	if err := imaging.Save(img, optimized, imaging.JPEGQuality(jpegQuality)); err != nil {
		slog.Warn("image optimization failed: " + err.Error())
		return path
	}

	return optimized
}

func optimizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_optimized.jpg"
}
