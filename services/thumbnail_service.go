package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nek1s/VisualHub/config"
	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/repositories"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	cp "github.com/otiai10/copy"
)

// ThumbnailService derives and maintains the fixed-footprint preview file for
// every stored image.
type ThumbnailService interface {
	// Generate writes a thumbnail for srcPath at dstPath. On decode failure
	// the original is copied verbatim so a preview always exists, and the
	// returned error carries KindDecodeFailure for the caller to log.
	Generate(srcPath, dstPath string) error
	// PathFor computes the deterministic thumbnail path for an original.
	PathFor(filePath string) string
	// RepairMissing regenerates thumbnails whose file vanished but whose
	// original still exists. Returns the number repaired.
	RepairMissing(ctx context.Context) (int, error)
	// RegenerateAll fills in thumbnails for images with a missing or unset
	// thumbnail path, persisting the computed path. Returns the number created.
	RegenerateAll(ctx context.Context) (int, error)
}

type thumbnailService struct {
	images   repositories.ImageRepository
	thumbDir string
}

func NewThumbnailService(images repositories.ImageRepository, thumbDir string) ThumbnailService {
	return &thumbnailService{images: images, thumbDir: thumbDir}
}

func (s *thumbnailService) PathFor(filePath string) string {
	ext := filepath.Ext(filePath)
	base := strings.TrimSuffix(filepath.Base(filePath), ext)
	return filepath.Join(s.thumbDir, base+"_thumb"+ext)
}

func (s *thumbnailService) Generate(srcPath, dstPath string) error {
	cfg := config.AppConfig

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return newAppError(KindIOFailure, "create thumbnail directory", err)
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		// Fall back to a verbatim copy so the gallery still has a preview.
		if copyErr := cp.Copy(srcPath, dstPath); copyErr != nil {
			return newAppError(KindIOFailure, "copy original as thumbnail fallback", copyErr)
		}
		return newAppError(KindDecodeFailure, fmt.Sprintf("decode %s", srcPath), err)
	}

	size := cfg.Thumbnail.Size
	thumb := img
	bounds := img.Bounds()
	if bounds.Dx() > size || bounds.Dy() > size {
		// Cover fit: crop to fill the square footprint. Smaller sources are
		// kept at native resolution, never upscaled.
		thumb = imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	}

	// Write to a temp name first so a crash never leaves a half-written
	// thumbnail at the destination path.
	tmpPath := filepath.Join(filepath.Dir(dstPath), ".tmp-"+uuid.NewString()+filepath.Ext(dstPath))
	if err := imaging.Save(thumb, tmpPath, imaging.JPEGQuality(cfg.Thumbnail.Quality)); err != nil {
		_ = os.Remove(tmpPath)
		return newAppError(KindIOFailure, "encode thumbnail", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return newAppError(KindIOFailure, "place thumbnail", err)
	}
	return nil
}

// GetImageDimensions decodes just enough of the file to report its pixel size.
func GetImageDimensions(filePath string) (int, int, error) {
	img, err := imaging.Open(filePath)
	if err != nil {
		return 0, 0, err
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

func (s *thumbnailService) RepairMissing(ctx context.Context) (int, error) {
	images, err := s.images.ListWithThumbnails(ctx, nil)
	if err != nil {
		return 0, newAppError(KindInternal, "list images with thumbnails", err)
	}

	repaired := 0
	for i := range images {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}

		img := &images[i]
		if fileExists(img.ThumbnailPath) {
			continue
		}
		if !fileExists(img.FilePath) {
			logger.Warnf("image %d: original missing, thumbnail unrecoverable: %s", img.ID, img.FilePath)
			continue
		}

		if err := s.Generate(img.FilePath, img.ThumbnailPath); err != nil {
			var appErr *AppError
			if errors.As(err, &appErr) && appErr.Kind == KindDecodeFailure {
				// Fallback copy was written, the preview gap is closed.
				logger.Warnf("image %d: thumbnail regenerated as verbatim copy: %v", img.ID, err)
				repaired++
				continue
			}
			logger.Warnf("image %d: thumbnail repair failed: %v", img.ID, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (s *thumbnailService) RegenerateAll(ctx context.Context) (int, error) {
	images, err := s.images.ListAll(ctx, nil)
	if err != nil {
		return 0, newAppError(KindInternal, "list images", err)
	}

	created := 0
	for i := range images {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		img := &images[i]
		if img.ThumbnailPath != "" && fileExists(img.ThumbnailPath) {
			continue
		}
		if !fileExists(img.FilePath) {
			continue
		}

		thumbPath := img.ThumbnailPath
		if thumbPath == "" {
			thumbPath = s.PathFor(img.FilePath)
		}

		if err := s.Generate(img.FilePath, thumbPath); err != nil {
			var appErr *AppError
			if errors.As(err, &appErr) && appErr.Kind != KindDecodeFailure {
				logger.Warnf("image %d: thumbnail generation failed: %v", img.ID, err)
				continue
			}
		}

		if err := s.images.UpdateByID(ctx, nil, img.ID, map[string]interface{}{"thumbnail_path": thumbPath}); err != nil {
			logger.Warnf("image %d: persist thumbnail path failed: %v", img.ID, err)
			continue
		}
		created++
	}
	return created, nil
}
