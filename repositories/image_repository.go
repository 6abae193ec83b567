package repositories

import (
	"context"

	"github.com/Nek1s/VisualHub/models"

	"gorm.io/gorm"
)

type GormImageRepository struct {
	db *gorm.DB
}

func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

// withTags aggregates tag names per image. GROUP_CONCAT output order is not
// significant; callers treat the result as a set.
func (r *GormImageRepository) withTags(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Image{}).
		Select("images.*, GROUP_CONCAT(tags.name) AS tags, COALESCE(NULLIF(images.title, ''), images.file_name) AS display_name").
		Joins("LEFT JOIN image_tags ON image_tags.image_id = images.id").
		Joins("LEFT JOIN tags ON tags.id = image_tags.tag_id").
		Group("images.id")
}

func (r *GormImageRepository) GetByID(_ context.Context, tx *gorm.DB, imageID uint) (models.Image, error) {
	db := useTx(r.db, tx)
	var image models.Image
	err := db.First(&image, imageID).Error
	return image, err
}

func (r *GormImageRepository) GetByIDWithTags(_ context.Context, tx *gorm.DB, imageID uint) (models.Image, error) {
	db := useTx(r.db, tx)
	var image models.Image
	err := r.withTags(db).Where("images.id = ?", imageID).First(&image).Error
	return image, err
}

func (r *GormImageRepository) ListByFolder(_ context.Context, tx *gorm.DB, folderID uint) ([]models.Image, error) {
	db := useTx(r.db, tx)
	query := r.withTags(db)

	switch folderID {
	case models.FolderAll:
		query = query.
			Where("images.folder_id IS NULL OR images.folder_id <> ?", models.FolderTrash).
			Order("images.created_at DESC")
	case models.FolderUncategorized:
		query = query.
			Where("images.folder_id IS NULL OR images.folder_id = ?", models.FolderUncategorized).
			Order("images.created_at DESC")
	case models.FolderTrash:
		query = query.
			Where("images.folder_id = ?", models.FolderTrash).
			Order("images.modified_at DESC")
	default:
		query = query.
			Where("images.folder_id = ?", folderID).
			Order("images.created_at DESC")
	}

	var images []models.Image
	err := query.Find(&images).Error
	return images, err
}

func (r *GormImageRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Image, error) {
	db := useTx(r.db, tx)
	var images []models.Image
	err := db.Order("id ASC").Find(&images).Error
	return images, err
}

func (r *GormImageRepository) ListWithThumbnails(_ context.Context, tx *gorm.DB) ([]models.Image, error) {
	db := useTx(r.db, tx)
	var images []models.Image
	err := db.Where("thumbnail_path <> ''").Order("id ASC").Find(&images).Error
	return images, err
}

func (r *GormImageRepository) ListTrash(_ context.Context, tx *gorm.DB) ([]models.Image, error) {
	db := useTx(r.db, tx)
	var images []models.Image
	err := db.Where("folder_id = ?", models.FolderTrash).Order("modified_at DESC").Find(&images).Error
	return images, err
}

func (r *GormImageRepository) Create(_ context.Context, tx *gorm.DB, image *models.Image) error {
	return useTx(r.db, tx).Create(image).Error
}

func (r *GormImageRepository) UpdateByID(_ context.Context, tx *gorm.DB, imageID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Image{}).Where("id = ?", imageID).Updates(updates).Error
}

func (r *GormImageRepository) DeleteByID(_ context.Context, tx *gorm.DB, imageID uint) error {
	return useTx(r.db, tx).Delete(&models.Image{}, imageID).Error
}

func (r *GormImageRepository) ReassignFolder(_ context.Context, tx *gorm.DB, fromFolderID uint, toFolderID uint) (int64, error) {
	result := useTx(r.db, tx).Model(&models.Image{}).
		Where("folder_id = ?", fromFolderID).
		Update("folder_id", toFolderID)
	return result.RowsAffected, result.Error
}

func (r *GormImageRepository) CountAll(_ context.Context, tx *gorm.DB) (int64, error) {
	db := useTx(r.db, tx)
	var count int64
	err := db.Model(&models.Image{}).
		Where("folder_id IS NULL OR folder_id <> ?", models.FolderTrash).
		Count(&count).Error
	return count, err
}

func (r *GormImageRepository) CountUncategorized(_ context.Context, tx *gorm.DB) (int64, error) {
	db := useTx(r.db, tx)
	var count int64
	err := db.Model(&models.Image{}).
		Where("folder_id IS NULL OR folder_id = ?", models.FolderUncategorized).
		Count(&count).Error
	return count, err
}

func (r *GormImageRepository) CountTrash(_ context.Context, tx *gorm.DB) (int64, error) {
	db := useTx(r.db, tx)
	var count int64
	err := db.Model(&models.Image{}).Where("folder_id = ?", models.FolderTrash).Count(&count).Error
	return count, err
}

func (r *GormImageRepository) CountByFolder(ctx context.Context, tx *gorm.DB, folderID uint) (int64, error) {
	switch folderID {
	case models.FolderAll:
		return r.CountAll(ctx, tx)
	case models.FolderUncategorized:
		return r.CountUncategorized(ctx, tx)
	case models.FolderTrash:
		return r.CountTrash(ctx, tx)
	}

	db := useTx(r.db, tx)
	var count int64
	err := db.Model(&models.Image{}).Where("folder_id = ?", folderID).Count(&count).Error
	return count, err
}
