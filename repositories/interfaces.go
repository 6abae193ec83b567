package repositories

import (
	"context"

	"github.com/Nek1s/VisualHub/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FolderSort selects the ordering of user folders in listings.
type FolderSort string

const (
	FolderSortID      FolderSort = "id"
	FolderSortName    FolderSort = "name"
	FolderSortCreated FolderSort = "created"
)

type FolderRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, folderID uint) (models.Folder, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Folder, error)
	ListUserFolders(ctx context.Context, tx *gorm.DB, sortBy FolderSort) ([]models.Folder, error)
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	UpdateByID(ctx context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, folderID uint) error
}

type ImageRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, imageID uint) (models.Image, error)
	GetByIDWithTags(ctx context.Context, tx *gorm.DB, imageID uint) (models.Image, error)
	ListByFolder(ctx context.Context, tx *gorm.DB, folderID uint) ([]models.Image, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Image, error)
	ListWithThumbnails(ctx context.Context, tx *gorm.DB) ([]models.Image, error)
	ListTrash(ctx context.Context, tx *gorm.DB) ([]models.Image, error)
	Create(ctx context.Context, tx *gorm.DB, image *models.Image) error
	UpdateByID(ctx context.Context, tx *gorm.DB, imageID uint, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, imageID uint) error
	ReassignFolder(ctx context.Context, tx *gorm.DB, fromFolderID uint, toFolderID uint) (int64, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	CountUncategorized(ctx context.Context, tx *gorm.DB) (int64, error)
	CountTrash(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByFolder(ctx context.Context, tx *gorm.DB, folderID uint) (int64, error)
}

type TagRepository interface {
	ListAll(ctx context.Context, tx *gorm.DB) ([]models.Tag, error)
	GetOrCreateByName(ctx context.Context, tx *gorm.DB, name string) (models.Tag, error)
	Associate(ctx context.Context, tx *gorm.DB, imageID uint, tagID uint) error
	Disassociate(ctx context.Context, tx *gorm.DB, imageID uint, tagID uint) error
	DeleteAssociationsByImage(ctx context.Context, tx *gorm.DB, imageID uint) error
}

type Container struct {
	TxManager TxManager
	Folders   FolderRepository
	Images    ImageRepository
	Tags      TagRepository
}
