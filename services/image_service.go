package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nek1s/VisualHub/config"
	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/repositories"

	"github.com/disintegration/imaging"
	cp "github.com/otiai10/copy"
	"github.com/rwcarlsen/goexif/exif"
	"gorm.io/gorm"
)

// ImageField is the closed set of user-editable metadata fields.
type ImageField int

const (
	FieldTitle ImageField = iota
	FieldDescription
	FieldLink
)

// ParseImageField maps the wire name of an editable field to the union.
func ParseImageField(name string) (ImageField, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		return FieldTitle, nil
	case "description":
		return FieldDescription, nil
	case "link":
		return FieldLink, nil
	}
	return 0, newAppError(KindInvalidInput, fmt.Sprintf("unknown field %q", name), nil)
}

type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ImageService interface {
	Import(ctx context.Context, data []byte, fileName string, folderID uint) (models.Image, error)
	UpdateField(ctx context.Context, imageID uint, field ImageField, value string) error
	Move(ctx context.Context, imageID uint, folderID uint) error
	MoveToTrash(ctx context.Context, imageID uint) error
	RestoreFromTrash(ctx context.Context, imageID uint, targetFolderID uint) error
	DeletePermanently(ctx context.Context, imageID uint) error
	EmptyTrash(ctx context.Context) (int, error)
	Crop(ctx context.Context, imageID uint, rect CropRect) (models.Image, error)
	Rotate(ctx context.Context, imageID uint, angle float64) (models.Image, error)
	Resize(ctx context.Context, imageID uint, width int, height int) (models.Image, error)
	Export(ctx context.Context, imageID uint, destPath string) (string, error)
	GetImages(ctx context.Context, folderID uint) ([]models.Image, error)
	GetImageByID(ctx context.Context, imageID uint) (models.Image, error)
	GetTrashImages(ctx context.Context) ([]models.Image, error)
	GetTrashCount(ctx context.Context) (int64, error)
	ResolvePreviewURL(path string) string
}

type imageService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	images    repositories.ImageRepository
	tags      repositories.TagRepository
	thumbs    ThumbnailService
	imagesDir string
}

func NewImageService(
	txManager TxManager,
	folders repositories.FolderRepository,
	images repositories.ImageRepository,
	tags repositories.TagRepository,
	thumbs ThumbnailService,
	imagesDir string,
) ImageService {
	return &imageService{
		txManager: txManager,
		folders:   folders,
		images:    images,
		tags:      tags,
		thumbs:    thumbs,
		imagesDir: imagesDir,
	}
}

func (s *imageService) Import(ctx context.Context, data []byte, fileName string, folderID uint) (models.Image, error) {
	if folderID == models.FolderTrash {
		return models.Image{}, newAppError(KindInvalidState, "cannot import directly into trash", nil)
	}
	if !isExtensionAllowed(fileName) {
		return models.Image{}, newAppError(KindInvalidInput, "unsupported file format", nil)
	}
	if folderID > models.FolderTrash {
		if _, err := s.folders.GetByID(ctx, nil, folderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Image{}, newAppError(KindNotFound, "target folder does not exist", nil)
			}
			return models.Image{}, newAppError(KindInternal, "look up target folder", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	base := sanitizeBaseName(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)), config.AppConfig.Storage.MaxTitleLength)
	if base == "" {
		base = "image"
	}
	uniqueName := fmt.Sprintf("%s_%d%s", base, time.Now().UnixMilli(), ext)
	filePath := uniquePath(filepath.Join(s.imagesDir, uniqueName), "")
	// The collision suffix may have changed the name; the row must store the
	// name of the file that actually exists.
	uniqueName = filepath.Base(filePath)

	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return models.Image{}, newAppError(KindIOFailure, "create images directory", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return models.Image{}, newAppError(KindIOFailure, "write original file", err)
	}

	thumbPath := s.thumbs.PathFor(filePath)
	if err := s.thumbs.Generate(filePath, thumbPath); err != nil {
		// The import still succeeds; decode failures leave a verbatim copy in
		// place of the thumbnail.
		logger.Warnf("thumbnail for %s: %v", fileName, err)
	}

	width, height := 0, 0
	if w, h, err := GetImageDimensions(filePath); err == nil {
		width, height = w, h
	} else {
		logger.Warnf("read dimensions of %s: %v", fileName, err)
	}

	img := models.Image{
		FilePath:      filePath,
		FileName:      uniqueName,
		Title:         base,
		Width:         width,
		Height:        height,
		FileSize:      int64(len(data)),
		ThumbnailPath: thumbPath,
		TakenAt:       exifTakenAt(data),
	}
	if folderID > 0 {
		fid := folderID
		img.FolderID = &fid
	}

	if err := s.images.Create(ctx, nil, &img); err != nil {
		deleteFileIfExists(filePath)
		deleteFileIfExists(thumbPath)
		return models.Image{}, newAppError(KindInternal, "insert image row", err)
	}

	logger.Infof("imported %s as image %d", fileName, img.ID)
	return img, nil
}

// exifTakenAt extracts the capture timestamp from EXIF data, best-effort.
func exifTakenAt(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	taken, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &taken
}

func (s *imageService) UpdateField(ctx context.Context, imageID uint, field ImageField, value string) error {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return err
	}

	switch field {
	case FieldDescription:
		return s.updateMetadata(ctx, imageID, map[string]interface{}{"description": value})
	case FieldLink:
		return s.updateMetadata(ctx, imageID, map[string]interface{}{"link": value})
	case FieldTitle:
		title := strings.TrimSpace(value)
		if title == "" {
			// Clearing the title leaves the stored file untouched; display
			// falls back to the file name.
			return s.updateMetadata(ctx, imageID, map[string]interface{}{"title": ""})
		}
		return s.renameForTitle(ctx, &img, title)
	}
	return newAppError(KindInvalidInput, "unknown field", nil)
}

func (s *imageService) updateMetadata(ctx context.Context, imageID uint, updates map[string]interface{}) error {
	if err := s.images.UpdateByID(ctx, nil, imageID, updates); err != nil {
		return newAppError(KindInternal, "update image", err)
	}
	return nil
}

// renameForTitle is the single place where a metadata edit mutates the
// filesystem: the original and its thumbnail are renamed on disk first, then
// the row is updated to the paths that actually exist.
func (s *imageService) renameForTitle(ctx context.Context, img *models.Image, title string) error {
	base := sanitizeBaseName(title, config.AppConfig.Storage.MaxTitleLength)
	if base == "" {
		return newAppError(KindInvalidInput, "title has no filesystem-safe characters", nil)
	}

	ext := filepath.Ext(img.FilePath)
	newFilePath := uniquePath(filepath.Join(filepath.Dir(img.FilePath), base+ext), img.FilePath)
	newFileName := filepath.Base(newFilePath)

	if newFilePath != img.FilePath {
		if err := os.Rename(img.FilePath, newFilePath); err != nil {
			return newAppError(KindIOFailure, "rename original file", err)
		}
	}

	newThumbPath := img.ThumbnailPath
	if img.ThumbnailPath != "" && fileExists(img.ThumbnailPath) {
		thumbExt := filepath.Ext(img.ThumbnailPath)
		thumbBase := strings.TrimSuffix(newFileName, ext)
		candidate := filepath.Join(filepath.Dir(img.ThumbnailPath), thumbBase+"_thumb"+thumbExt)
		newThumbPath = uniquePath(candidate, img.ThumbnailPath)
		if newThumbPath != img.ThumbnailPath {
			if err := os.Rename(img.ThumbnailPath, newThumbPath); err != nil {
				// Roll the original back so disk and row stay consistent.
				if newFilePath != img.FilePath {
					_ = os.Rename(newFilePath, img.FilePath)
				}
				return newAppError(KindIOFailure, "rename thumbnail file", err)
			}
		}
	}

	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.images.UpdateByID(ctx, tx, img.ID, map[string]interface{}{
			"title":          title,
			"file_path":      newFilePath,
			"file_name":      newFileName,
			"thumbnail_path": newThumbPath,
		})
	})
	if err != nil {
		// The row must keep pointing at files that exist; undo the renames.
		if newThumbPath != img.ThumbnailPath {
			_ = os.Rename(newThumbPath, img.ThumbnailPath)
		}
		if newFilePath != img.FilePath {
			_ = os.Rename(newFilePath, img.FilePath)
		}
		return newAppError(KindInternal, "update renamed image", err)
	}
	return nil
}

func (s *imageService) Move(ctx context.Context, imageID uint, folderID uint) error {
	if _, err := s.getImage(ctx, imageID); err != nil {
		return err
	}
	if folderID > models.FolderTrash {
		if _, err := s.folders.GetByID(ctx, nil, folderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newAppError(KindNotFound, "target folder does not exist", nil)
			}
			return newAppError(KindInternal, "look up target folder", err)
		}
	}
	if folderID == 0 {
		// Zero means unfiled, stored as NULL.
		return s.updateMetadata(ctx, imageID, map[string]interface{}{"folder_id": nil})
	}
	return s.updateMetadata(ctx, imageID, map[string]interface{}{"folder_id": folderID})
}

func (s *imageService) MoveToTrash(ctx context.Context, imageID uint) error {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return err
	}
	// Trashing an already-trashed image is a no-op, not an error; it also
	// leaves modified_at alone so the trash listing keeps its order.
	if img.InTrash() {
		return nil
	}
	return s.updateMetadata(ctx, imageID, map[string]interface{}{"folder_id": models.FolderTrash})
}

func (s *imageService) RestoreFromTrash(ctx context.Context, imageID uint, targetFolderID uint) error {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return err
	}
	if !img.InTrash() {
		return newAppError(KindInvalidState, "image is not in trash", nil)
	}

	if targetFolderID == 0 {
		targetFolderID = models.FolderUncategorized
	}
	if targetFolderID == models.FolderTrash {
		return newAppError(KindInvalidInput, "cannot restore into trash", nil)
	}
	if targetFolderID > models.FolderTrash {
		if _, err := s.folders.GetByID(ctx, nil, targetFolderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newAppError(KindNotFound, "target folder does not exist", nil)
			}
			return newAppError(KindInternal, "look up target folder", err)
		}
	}

	return s.updateMetadata(ctx, imageID, map[string]interface{}{"folder_id": targetFolderID})
}

func (s *imageService) DeletePermanently(ctx context.Context, imageID uint) error {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return err
	}
	if !img.InTrash() {
		return newAppError(KindInvalidState, "only images in trash can be deleted permanently", nil)
	}

	// File removal is best-effort: missing files never block row deletion.
	deleteFileIfExists(img.FilePath)
	deleteFileIfExists(img.ThumbnailPath)

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.tags.DeleteAssociationsByImage(ctx, tx, imageID); err != nil {
			return err
		}
		return s.images.DeleteByID(ctx, tx, imageID)
	})
	if err != nil {
		return newAppError(KindInternal, "delete image row", err)
	}

	logger.Infof("permanently deleted image %d", imageID)
	return nil
}

func (s *imageService) EmptyTrash(ctx context.Context) (int, error) {
	trashed, err := s.images.ListTrash(ctx, nil)
	if err != nil {
		return 0, newAppError(KindInternal, "list trash", err)
	}

	deleted := 0
	for i := range trashed {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		img := &trashed[i]
		deleteFileIfExists(img.FilePath)
		deleteFileIfExists(img.ThumbnailPath)

		err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := s.tags.DeleteAssociationsByImage(ctx, tx, img.ID); err != nil {
				return err
			}
			return s.images.DeleteByID(ctx, tx, img.ID)
		})
		if err != nil {
			logger.Warnf("empty trash: image %d not deleted: %v", img.ID, err)
			continue
		}
		deleted++
	}

	logger.Infof("emptied trash, %d images deleted", deleted)
	return deleted, nil
}

func (s *imageService) Crop(ctx context.Context, imageID uint, rect CropRect) (models.Image, error) {
	if rect.Width <= 0 || rect.Height <= 0 || rect.X < 0 || rect.Y < 0 {
		return models.Image{}, newAppError(KindInvalidInput, "invalid crop rectangle", nil)
	}
	return s.applyTransform(ctx, imageID, "cropped", func(src image.Image) (image.Image, error) {
		bounds := src.Bounds()
		target := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height)
		if !target.In(bounds) {
			return nil, fmt.Errorf("crop rectangle %v outside image bounds %v", target, bounds)
		}
		return imaging.Crop(src, target), nil
	})
}

func (s *imageService) Rotate(ctx context.Context, imageID uint, angle float64) (models.Image, error) {
	return s.applyTransform(ctx, imageID, "rotated", func(src image.Image) (image.Image, error) {
		// Positive angles rotate clockwise; imaging rotates counter-clockwise.
		switch normalized := math.Mod(math.Mod(angle, 360)+360, 360); normalized {
		case 0:
			return src, nil
		case 90:
			return imaging.Rotate270(src), nil
		case 180:
			return imaging.Rotate180(src), nil
		case 270:
			return imaging.Rotate90(src), nil
		default:
			return imaging.Rotate(src, -angle, color.Black), nil
		}
	})
}

func (s *imageService) Resize(ctx context.Context, imageID uint, width int, height int) (models.Image, error) {
	if width <= 0 || height <= 0 {
		return models.Image{}, newAppError(KindInvalidInput, "invalid resize dimensions", nil)
	}
	return s.applyTransform(ctx, imageID, "resized", func(src image.Image) (image.Image, error) {
		return imaging.Fit(src, width, height, imaging.Lanczos), nil
	})
}

// applyTransform derives a new file from the current original and only then
// updates the row; a decode or encode failure leaves both the prior file and
// the row untouched.
func (s *imageService) applyTransform(ctx context.Context, imageID uint, op string, transform func(image.Image) (image.Image, error)) (models.Image, error) {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return models.Image{}, err
	}
	if !fileExists(img.FilePath) {
		return models.Image{}, newAppError(KindIOFailure, "original file is missing", nil)
	}

	src, err := imaging.Open(img.FilePath)
	if err != nil {
		return models.Image{}, newAppError(KindDecodeFailure, "decode original", err)
	}
	out, err := transform(src)
	if err != nil {
		return models.Image{}, newAppError(KindDecodeFailure, "transform image", err)
	}

	ext := filepath.Ext(img.FilePath)
	base := strings.TrimSuffix(filepath.Base(img.FilePath), ext)
	newFileName := fmt.Sprintf("%s_%s_%d%s", base, op, time.Now().UnixMilli(), ext)
	newFilePath := uniquePath(filepath.Join(filepath.Dir(img.FilePath), newFileName), "")
	newFileName = filepath.Base(newFilePath)

	if err := imaging.Save(out, newFilePath, imaging.JPEGQuality(config.AppConfig.Thumbnail.Quality)); err != nil {
		deleteFileIfExists(newFilePath)
		return models.Image{}, newAppError(KindDecodeFailure, "encode transformed image", err)
	}

	fileSize := int64(0)
	if info, err := os.Stat(newFilePath); err == nil {
		fileSize = info.Size()
	}
	bounds := out.Bounds()

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.images.UpdateByID(ctx, tx, imageID, map[string]interface{}{
			"file_path": newFilePath,
			"file_name": newFileName,
			"width":     bounds.Dx(),
			"height":    bounds.Dy(),
			"file_size": fileSize,
		})
	})
	if err != nil {
		deleteFileIfExists(newFilePath)
		return models.Image{}, newAppError(KindInternal, "update transformed image", err)
	}

	if img.ThumbnailPath != "" {
		if err := s.thumbs.Generate(newFilePath, img.ThumbnailPath); err != nil {
			logger.Warnf("refresh thumbnail for image %d: %v", imageID, err)
		}
	}
	if newFilePath != img.FilePath {
		deleteFileIfExists(img.FilePath)
	}

	updated, err := s.getImage(ctx, imageID)
	if err != nil {
		return models.Image{}, err
	}
	logger.Infof("image %d %s -> %s", imageID, op, newFileName)
	return updated, nil
}

func (s *imageService) Export(ctx context.Context, imageID uint, destPath string) (string, error) {
	img, err := s.getImage(ctx, imageID)
	if err != nil {
		return "", err
	}
	if !fileExists(img.FilePath) {
		return "", newAppError(KindIOFailure, "original file is missing", nil)
	}
	if destPath == "" {
		return "", newAppError(KindInvalidInput, "destination path is empty", nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", newAppError(KindIOFailure, "create destination directory", err)
	}
	if err := cp.Copy(img.FilePath, destPath); err != nil {
		return "", newAppError(KindIOFailure, "copy original to destination", err)
	}
	return destPath, nil
}

func (s *imageService) GetImages(ctx context.Context, folderID uint) ([]models.Image, error) {
	images, err := s.images.ListByFolder(ctx, nil, folderID)
	if err != nil {
		return nil, newAppError(KindInternal, "list images", err)
	}
	return images, nil
}

func (s *imageService) GetImageByID(ctx context.Context, imageID uint) (models.Image, error) {
	img, err := s.images.GetByIDWithTags(ctx, nil, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Image{}, newAppError(KindNotFound, "image does not exist", nil)
		}
		return models.Image{}, newAppError(KindInternal, "look up image", err)
	}
	return img, nil
}

func (s *imageService) GetTrashImages(ctx context.Context) ([]models.Image, error) {
	return s.GetImages(ctx, models.FolderTrash)
}

func (s *imageService) GetTrashCount(ctx context.Context) (int64, error) {
	count, err := s.images.CountTrash(ctx, nil)
	if err != nil {
		return 0, newAppError(KindInternal, "count trash", err)
	}
	return count, nil
}

// ResolvePreviewURL maps a stored path to a file:// URL the renderer can
// load. A missing file yields an empty string, never an error.
func (s *imageService) ResolvePreviewURL(path string) string {
	if !fileExists(path) {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return "file://" + slashed
}

func (s *imageService) getImage(ctx context.Context, imageID uint) (models.Image, error) {
	img, err := s.images.GetByID(ctx, nil, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Image{}, newAppError(KindNotFound, "image does not exist", nil)
		}
		return models.Image{}, newAppError(KindInternal, "look up image", err)
	}
	return img, nil
}
