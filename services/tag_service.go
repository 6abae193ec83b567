package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/repositories"

	"gorm.io/gorm"
)

type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	TagImage(ctx context.Context, imageID uint, name string) (models.Tag, error)
	UntagImage(ctx context.Context, imageID uint, tagID uint) error
}

type tagService struct {
	txManager TxManager
	images    repositories.ImageRepository
	tags      repositories.TagRepository
}

func NewTagService(txManager TxManager, images repositories.ImageRepository, tags repositories.TagRepository) TagService {
	return &tagService{txManager: txManager, images: images, tags: tags}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.ListAll(ctx, nil)
	if err != nil {
		return nil, newAppError(KindInternal, "list tags", err)
	}
	return tags, nil
}

func (s *tagService) TagImage(ctx context.Context, imageID uint, name string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Tag{}, newAppError(KindInvalidInput, "tag name is empty", nil)
	}

	if _, err := s.images.GetByID(ctx, nil, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Tag{}, newAppError(KindNotFound, "image does not exist", nil)
		}
		return models.Tag{}, newAppError(KindInternal, "look up image", err)
	}

	var tag models.Tag
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		tag, err = s.tags.GetOrCreateByName(ctx, tx, name)
		if err != nil {
			return err
		}
		return s.tags.Associate(ctx, tx, imageID, tag.ID)
	})
	if err != nil {
		return models.Tag{}, newAppError(KindInternal, "tag image", err)
	}
	return tag, nil
}

func (s *tagService) UntagImage(ctx context.Context, imageID uint, tagID uint) error {
	if err := s.tags.Disassociate(ctx, nil, imageID, tagID); err != nil {
		return newAppError(KindInternal, "untag image", err)
	}
	return nil
}
