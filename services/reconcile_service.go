package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/repositories"

	"gorm.io/gorm"
)

// FolderDiff is the divergence between folder rows and the directories that
// actually exist on disk.
type FolderDiff struct {
	// StaleIDs are user folder rows whose directory is gone.
	StaleIDs []uint
	// NewDirs are directory names on disk that no row accounts for.
	NewDirs []string
	// MissingSystemDirs are reserved directory names that should exist but
	// do not.
	MissingSystemDirs []string
}

func (d FolderDiff) Empty() bool {
	return len(d.StaleIDs) == 0 && len(d.NewDirs) == 0 && len(d.MissingSystemDirs) == 0
}

// ComputeFolderDiff compares user folder rows against the directory names
// found under the folders root. Pure: no filesystem or database access.
func ComputeFolderDiff(rows []models.Folder, dirNames []string) FolderDiff {
	onDisk := make(map[string]bool, len(dirNames))
	for _, name := range dirNames {
		onDisk[name] = true
	}

	var diff FolderDiff
	claimed := make(map[string]bool, len(rows))
	for _, row := range rows {
		if models.IsSystemFolder(row.ID) {
			continue
		}
		dirName := ""
		if row.Path != nil {
			dirName = filepath.Base(*row.Path)
		}
		if dirName == "" || !onDisk[dirName] {
			diff.StaleIDs = append(diff.StaleIDs, row.ID)
			continue
		}
		claimed[dirName] = true
	}

	for _, name := range dirNames {
		if claimed[name] || models.IsSystemFolderName(name) {
			continue
		}
		diff.NewDirs = append(diff.NewDirs, name)
	}

	for _, name := range models.SystemFolderNames() {
		if !onDisk[name] {
			diff.MissingSystemDirs = append(diff.MissingSystemDirs, name)
		}
	}

	return diff
}

// ReconcileService keeps folder rows and the folders directory in agreement.
type ReconcileService interface {
	// Sync lists the folders root, computes the diff and applies it. Returns
	// true when anything changed. Per-item failures are logged and skipped.
	Sync(ctx context.Context) (bool, error)
}

type reconcileService struct {
	txManager  TxManager
	folders    repositories.FolderRepository
	images     repositories.ImageRepository
	notifier   *Notifier
	foldersDir string
}

func NewReconcileService(
	txManager TxManager,
	folders repositories.FolderRepository,
	images repositories.ImageRepository,
	notifier *Notifier,
	foldersDir string,
) ReconcileService {
	return &reconcileService{
		txManager:  txManager,
		folders:    folders,
		images:     images,
		notifier:   notifier,
		foldersDir: foldersDir,
	}
}

func (s *reconcileService) Sync(ctx context.Context) (bool, error) {
	dirNames, err := s.listDirNames()
	if err != nil {
		return false, newAppError(KindIOFailure, "list folders directory", err)
	}

	rows, err := s.folders.ListAll(ctx, nil)
	if err != nil {
		return false, newAppError(KindInternal, "list folder rows", err)
	}

	diff := ComputeFolderDiff(rows, dirNames)
	if diff.Empty() {
		return false, nil
	}

	changed := false

	// A vanished directory drops the row, never the images: members move to
	// trash where they stay recoverable.
	for _, id := range diff.StaleIDs {
		staleID := id
		err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
			if _, err := s.images.ReassignFolder(ctx, tx, staleID, models.FolderTrash); err != nil {
				return err
			}
			return s.folders.DeleteByID(ctx, tx, staleID)
		})
		if err != nil {
			logger.Warnf("reconcile: drop stale folder %d: %v", staleID, err)
			continue
		}
		logger.Infof("reconcile: folder %d directory vanished, images moved to trash", staleID)
		changed = true
	}

	for _, dirName := range diff.NewDirs {
		dirPath := filepath.Join(s.foldersDir, dirName)
		folder := models.Folder{Name: desanitizeFolderName(dirName), Path: &dirPath}
		if err := s.folders.Create(ctx, nil, &folder); err != nil {
			logger.Warnf("reconcile: adopt directory %s: %v", dirName, err)
			continue
		}
		logger.Infof("reconcile: adopted directory %s as folder %d", dirName, folder.ID)
		changed = true
	}

	for _, name := range diff.MissingSystemDirs {
		if err := os.MkdirAll(filepath.Join(s.foldersDir, name), 0o755); err != nil {
			logger.Warnf("reconcile: recreate system directory %s: %v", name, err)
			continue
		}
		changed = true
	}

	if changed && s.notifier != nil {
		s.notifier.Publish(EventFoldersChanged)
	}
	return changed, nil
}

func (s *reconcileService) listDirNames() ([]string, error) {
	entries, err := os.ReadDir(s.foldersDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(s.foldersDir, 0o755); mkErr != nil {
				return nil, mkErr
			}
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
