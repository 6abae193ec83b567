package repositories

import (
	"context"
	"errors"

	"github.com/Nek1s/VisualHub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormTagRepository struct {
	db *gorm.DB
}

func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) ListAll(_ context.Context, tx *gorm.DB) ([]models.Tag, error) {
	db := useTx(r.db, tx)
	var tags []models.Tag
	err := db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *GormTagRepository) GetOrCreateByName(_ context.Context, tx *gorm.DB, name string) (models.Tag, error) {
	db := useTx(r.db, tx)

	var tag models.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tag{}, err
	}

	tag = models.Tag{Name: name}
	err = db.Create(&tag).Error
	return tag, err
}

func (r *GormTagRepository) Associate(_ context.Context, tx *gorm.DB, imageID uint, tagID uint) error {
	db := useTx(r.db, tx)
	link := models.ImageTag{ImageID: imageID, TagID: tagID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (r *GormTagRepository) Disassociate(_ context.Context, tx *gorm.DB, imageID uint, tagID uint) error {
	db := useTx(r.db, tx)
	return db.Where("image_id = ? AND tag_id = ?", imageID, tagID).Delete(&models.ImageTag{}).Error
}

func (r *GormTagRepository) DeleteAssociationsByImage(_ context.Context, tx *gorm.DB, imageID uint) error {
	db := useTx(r.db, tx)
	return db.Where("image_id = ?", imageID).Delete(&models.ImageTag{}).Error
}
