package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/Nek1s/VisualHub/config"
	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/repositories"

	"gorm.io/gorm"
)

type FolderService interface {
	CreateFolder(ctx context.Context, name string) (models.Folder, error)
	RenameFolder(ctx context.Context, folderID uint, name string) (models.Folder, error)
	DeleteFolder(ctx context.Context, folderID uint) error
	ListFolders(ctx context.Context, sortBy repositories.FolderSort) ([]models.Folder, error)
	GetFolderByID(ctx context.Context, folderID uint) (models.Folder, error)
	GetImageCount(ctx context.Context, folderID uint) (int64, error)
}

type folderService struct {
	txManager  TxManager
	folders    repositories.FolderRepository
	images     repositories.ImageRepository
	reconciler ReconcileService
	foldersDir string
}

func NewFolderService(
	txManager TxManager,
	folders repositories.FolderRepository,
	images repositories.ImageRepository,
	reconciler ReconcileService,
	foldersDir string,
) FolderService {
	return &folderService{
		txManager:  txManager,
		folders:    folders,
		images:     images,
		reconciler: reconciler,
		foldersDir: foldersDir,
	}
}

func (s *folderService) CreateFolder(ctx context.Context, name string) (models.Folder, error) {
	maxLen := config.AppConfig.Storage.MaxFolderNameLength
	if name == "" {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name is empty", nil)
	}
	if maxLen > 0 && len(name) > maxLen {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name is too long", nil)
	}

	dirName := sanitizeBaseName(name, maxLen)
	if dirName == "" {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name has no filesystem-safe characters", nil)
	}

	dirPath := uniqueDirPath(filepath.Join(s.foldersDir, dirName))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return models.Folder{}, newAppError(KindIOFailure, "create folder directory", err)
	}

	folder := models.Folder{Name: name, Path: &dirPath}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		_ = os.Remove(dirPath)
		return models.Folder{}, newAppError(KindInternal, "insert folder row", err)
	}

	logger.Infof("created folder %d at %s", folder.ID, dirPath)
	return folder, nil
}

func (s *folderService) RenameFolder(ctx context.Context, folderID uint, name string) (models.Folder, error) {
	if models.IsSystemFolder(folderID) {
		return models.Folder{}, newAppError(KindInvalidState, "system folders cannot be renamed", nil)
	}
	maxLen := config.AppConfig.Storage.MaxFolderNameLength
	if name == "" {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name is empty", nil)
	}
	if maxLen > 0 && len(name) > maxLen {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name is too long", nil)
	}

	folder, err := s.getFolder(ctx, folderID)
	if err != nil {
		return models.Folder{}, err
	}

	dirName := sanitizeBaseName(name, maxLen)
	if dirName == "" {
		return models.Folder{}, newAppError(KindInvalidInput, "folder name has no filesystem-safe characters", nil)
	}

	newPath := filepath.Join(s.foldersDir, dirName)
	oldPath := ""
	if folder.Path != nil {
		oldPath = *folder.Path
	}
	if oldPath != newPath {
		if oldPath != "" && fileExists(oldPath) {
			candidate := newPath
			if fileExists(candidate) {
				candidate = uniqueDirPath(newPath)
			}
			if err := os.Rename(oldPath, candidate); err != nil {
				return models.Folder{}, newAppError(KindIOFailure, "rename folder directory", err)
			}
			newPath = candidate
		} else {
			// Directory vanished out from under us; recreate at the new name.
			newPath = uniqueDirPath(newPath)
			if err := os.MkdirAll(newPath, 0o755); err != nil {
				return models.Folder{}, newAppError(KindIOFailure, "recreate folder directory", err)
			}
		}
	}

	err = s.folders.UpdateByID(ctx, nil, folderID, map[string]interface{}{
		"name": name,
		"path": newPath,
	})
	if err != nil {
		return models.Folder{}, newAppError(KindInternal, "update folder row", err)
	}

	folder.Name = name
	folder.Path = &newPath
	return folder, nil
}

func (s *folderService) DeleteFolder(ctx context.Context, folderID uint) error {
	if models.IsSystemFolder(folderID) {
		return newAppError(KindInvalidState, "system folders cannot be deleted", nil)
	}

	folder, err := s.getFolder(ctx, folderID)
	if err != nil {
		return err
	}

	if folder.Path != nil && *folder.Path != "" {
		if err := os.RemoveAll(*folder.Path); err != nil {
			logger.Warnf("remove directory of folder %d: %v", folderID, err)
		}
	}

	// Member images move to trash, never deleted.
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.images.ReassignFolder(ctx, tx, folderID, models.FolderTrash); err != nil {
			return err
		}
		return s.folders.DeleteByID(ctx, tx, folderID)
	})
	if err != nil {
		return newAppError(KindInternal, "delete folder row", err)
	}

	logger.Infof("deleted folder %d, images moved to trash", folderID)
	return nil
}

func (s *folderService) ListFolders(ctx context.Context, sortBy repositories.FolderSort) ([]models.Folder, error) {
	// Opportunistic reconciliation keeps the listing honest about the disk.
	if s.reconciler != nil {
		if _, err := s.reconciler.Sync(ctx); err != nil {
			logger.Warnf("reconcile before folder listing: %v", err)
		}
	}

	result := make([]models.Folder, 0, 8)
	for id := models.FolderAll; id <= models.FolderTrash; id++ {
		folder, err := s.getFolder(ctx, id)
		if err != nil {
			return nil, err
		}
		count, err := s.GetImageCount(ctx, id)
		if err != nil {
			return nil, err
		}
		folder.ImageCount = count
		result = append(result, folder)
	}

	userFolders, err := s.folders.ListUserFolders(ctx, nil, sortBy)
	if err != nil {
		return nil, newAppError(KindInternal, "list user folders", err)
	}
	for i := range userFolders {
		count, err := s.images.CountByFolder(ctx, nil, userFolders[i].ID)
		if err != nil {
			return nil, newAppError(KindInternal, "count folder images", err)
		}
		userFolders[i].ImageCount = count
		result = append(result, userFolders[i])
	}

	return result, nil
}

func (s *folderService) GetFolderByID(ctx context.Context, folderID uint) (models.Folder, error) {
	folder, err := s.getFolder(ctx, folderID)
	if err != nil {
		return models.Folder{}, err
	}
	count, err := s.GetImageCount(ctx, folderID)
	if err != nil {
		return models.Folder{}, err
	}
	folder.ImageCount = count
	return folder, nil
}

func (s *folderService) GetImageCount(ctx context.Context, folderID uint) (int64, error) {
	var (
		count int64
		err   error
	)
	switch folderID {
	case models.FolderAll:
		count, err = s.images.CountAll(ctx, nil)
	case models.FolderUncategorized:
		count, err = s.images.CountUncategorized(ctx, nil)
	case models.FolderTrash:
		count, err = s.images.CountTrash(ctx, nil)
	default:
		count, err = s.images.CountByFolder(ctx, nil, folderID)
	}
	if err != nil {
		return 0, newAppError(KindInternal, "count images", err)
	}
	return count, nil
}

func (s *folderService) getFolder(ctx context.Context, folderID uint) (models.Folder, error) {
	folder, err := s.folders.GetByID(ctx, nil, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(KindNotFound, "folder does not exist", nil)
		}
		return models.Folder{}, newAppError(KindInternal, "look up folder", err)
	}
	return folder, nil
}
