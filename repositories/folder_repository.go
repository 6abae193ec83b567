package repositories

import (
	"context"

	"github.com/Nek1s/VisualHub/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) GetByID(_ context.Context, tx *gorm.DB, folderID uint) (models.Folder, error) {
	db := useTx(r.db, tx)
	var folder models.Folder
	err := db.First(&folder, folderID).Error
	return folder, err
}

func (r *GormFolderRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Folder, error) {
	db := useTx(r.db, tx)
	var folders []models.Folder
	err := db.Order("id ASC").Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) ListUserFolders(_ context.Context, tx *gorm.DB, sortBy FolderSort) ([]models.Folder, error) {
	db := useTx(r.db, tx)

	order := "id ASC"
	switch sortBy {
	case FolderSortName:
		order = "name COLLATE NOCASE ASC"
	case FolderSortCreated:
		order = "created_at DESC"
	}

	var folders []models.Folder
	err := db.Where("id > ?", models.FolderTrash).Order(order).Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) UpdateByID(_ context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Folder{}).Where("id = ?", folderID).Updates(updates).Error
}

func (r *GormFolderRepository) DeleteByID(_ context.Context, tx *gorm.DB, folderID uint) error {
	return useTx(r.db, tx).Delete(&models.Folder{}, folderID).Error
}
