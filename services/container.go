package services

import "github.com/Nek1s/VisualHub/repositories"

// Container bundles the constructed services for the presentation layer.
type Container struct {
	Notifier   *Notifier
	Thumbnails ThumbnailService
	Reconciler ReconcileService
	Images     ImageService
	Folders    FolderService
	Tags       TagService
}

// Dirs names the filesystem roots the services operate on.
type Dirs struct {
	Images  string
	Thumbs  string
	Folders string
}

func NewContainer(repos *repositories.Container, dirs Dirs) *Container {
	notifier := NewNotifier()
	thumbs := NewThumbnailService(repos.Images, dirs.Thumbs)
	reconciler := NewReconcileService(repos.TxManager, repos.Folders, repos.Images, notifier, dirs.Folders)

	return &Container{
		Notifier:   notifier,
		Thumbnails: thumbs,
		Reconciler: reconciler,
		Images:     NewImageService(repos.TxManager, repos.Folders, repos.Images, repos.Tags, thumbs, dirs.Images),
		Folders:    NewFolderService(repos.TxManager, repos.Folders, repos.Images, reconciler, dirs.Folders),
		Tags:       NewTagService(repos.TxManager, repos.Images, repos.Tags),
	}
}
