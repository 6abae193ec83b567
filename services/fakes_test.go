package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/repositories"

	"gorm.io/gorm"
)

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeFolderRepo struct {
	folders map[uint]models.Folder
	nextID  uint
}

func newFakeFolderRepo() *fakeFolderRepo {
	repo := &fakeFolderRepo{folders: make(map[uint]models.Folder), nextID: models.FolderTrash + 1}
	for id, name := range map[uint]string{
		models.FolderAll:           "All",
		models.FolderUncategorized: "Uncategorized",
		models.FolderTrash:         "Trash",
	} {
		repo.folders[id] = models.Folder{ID: id, Name: name, CreatedAt: time.Now()}
	}
	return repo
}

func (r *fakeFolderRepo) GetByID(_ context.Context, _ *gorm.DB, folderID uint) (models.Folder, error) {
	folder, ok := r.folders[folderID]
	if !ok {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) ListAll(context.Context, *gorm.DB) ([]models.Folder, error) {
	out := make([]models.Folder, 0, len(r.folders))
	for _, folder := range r.folders {
		out = append(out, folder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) ListUserFolders(ctx context.Context, tx *gorm.DB, sortBy repositories.FolderSort) ([]models.Folder, error) {
	all, _ := r.ListAll(ctx, tx)
	out := make([]models.Folder, 0, len(all))
	for _, folder := range all {
		if !models.IsSystemFolder(folder.ID) {
			out = append(out, folder)
		}
	}
	switch sortBy {
	case repositories.FolderSortName:
		sort.Slice(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case repositories.FolderSortCreated:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out, nil
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if folder.ID == 0 {
		folder.ID = r.nextID
		r.nextID++
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now()
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) UpdateByID(_ context.Context, _ *gorm.DB, folderID uint, updates map[string]interface{}) error {
	folder, ok := r.folders[folderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		folder.Name = name
	}
	if path, ok := updates["path"].(string); ok {
		folder.Path = &path
	}
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) DeleteByID(_ context.Context, _ *gorm.DB, folderID uint) error {
	delete(r.folders, folderID)
	return nil
}

type fakeImageRepo struct {
	images map[uint]models.Image
	nextID uint
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[uint]models.Image), nextID: 1}
}

func (r *fakeImageRepo) GetByID(_ context.Context, _ *gorm.DB, imageID uint) (models.Image, error) {
	img, ok := r.images[imageID]
	if !ok {
		return models.Image{}, gorm.ErrRecordNotFound
	}
	return img, nil
}

func (r *fakeImageRepo) GetByIDWithTags(ctx context.Context, tx *gorm.DB, imageID uint) (models.Image, error) {
	return r.GetByID(ctx, tx, imageID)
}

func (r *fakeImageRepo) sorted() []models.Image {
	out := make([]models.Image, 0, len(r.images))
	for _, img := range r.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeImageRepo) ListByFolder(_ context.Context, _ *gorm.DB, folderID uint) ([]models.Image, error) {
	var out []models.Image
	for _, img := range r.sorted() {
		switch folderID {
		case models.FolderAll:
			if !img.InTrash() {
				out = append(out, img)
			}
		case models.FolderUncategorized:
			if img.FolderID == nil || *img.FolderID == models.FolderUncategorized {
				out = append(out, img)
			}
		case models.FolderTrash:
			if img.InTrash() {
				out = append(out, img)
			}
		default:
			if img.FolderID != nil && *img.FolderID == folderID {
				out = append(out, img)
			}
		}
	}
	return out, nil
}

func (r *fakeImageRepo) ListAll(context.Context, *gorm.DB) ([]models.Image, error) {
	return r.sorted(), nil
}

func (r *fakeImageRepo) ListWithThumbnails(context.Context, *gorm.DB) ([]models.Image, error) {
	var out []models.Image
	for _, img := range r.sorted() {
		if img.ThumbnailPath != "" {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) ListTrash(ctx context.Context, tx *gorm.DB) ([]models.Image, error) {
	return r.ListByFolder(ctx, tx, models.FolderTrash)
}

func (r *fakeImageRepo) Create(_ context.Context, _ *gorm.DB, image *models.Image) error {
	if image.ID == 0 {
		image.ID = r.nextID
		r.nextID++
	}
	now := time.Now()
	if image.CreatedAt.IsZero() {
		image.CreatedAt = now
	}
	image.ModifiedAt = now
	r.images[image.ID] = *image
	return nil
}

func (r *fakeImageRepo) UpdateByID(_ context.Context, _ *gorm.DB, imageID uint, updates map[string]interface{}) error {
	img, ok := r.images[imageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "title":
			img.Title = value.(string)
		case "description":
			img.Description = value.(string)
		case "link":
			img.Link = value.(string)
		case "file_path":
			img.FilePath = value.(string)
		case "file_name":
			img.FileName = value.(string)
		case "thumbnail_path":
			img.ThumbnailPath = value.(string)
		case "folder_id":
			switch v := value.(type) {
			case uint:
				if v == 0 {
					img.FolderID = nil
				} else {
					id := v
					img.FolderID = &id
				}
			case nil:
				img.FolderID = nil
			}
		case "width":
			img.Width = value.(int)
		case "height":
			img.Height = value.(int)
		case "file_size":
			img.FileSize = value.(int64)
		}
	}
	img.ModifiedAt = time.Now()
	r.images[imageID] = img
	return nil
}

func (r *fakeImageRepo) DeleteByID(_ context.Context, _ *gorm.DB, imageID uint) error {
	delete(r.images, imageID)
	return nil
}

func (r *fakeImageRepo) ReassignFolder(_ context.Context, _ *gorm.DB, fromFolderID uint, toFolderID uint) (int64, error) {
	var moved int64
	for id, img := range r.images {
		if img.FolderID != nil && *img.FolderID == fromFolderID {
			target := toFolderID
			img.FolderID = &target
			img.ModifiedAt = time.Now()
			r.images[id] = img
			moved++
		}
	}
	return moved, nil
}

func (r *fakeImageRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	images, _ := r.ListByFolder(ctx, tx, models.FolderAll)
	return int64(len(images)), nil
}

func (r *fakeImageRepo) CountUncategorized(ctx context.Context, tx *gorm.DB) (int64, error) {
	images, _ := r.ListByFolder(ctx, tx, models.FolderUncategorized)
	return int64(len(images)), nil
}

func (r *fakeImageRepo) CountTrash(ctx context.Context, tx *gorm.DB) (int64, error) {
	images, _ := r.ListTrash(ctx, tx)
	return int64(len(images)), nil
}

func (r *fakeImageRepo) CountByFolder(ctx context.Context, tx *gorm.DB, folderID uint) (int64, error) {
	images, _ := r.ListByFolder(ctx, tx, folderID)
	return int64(len(images)), nil
}

type fakeTagRepo struct {
	tags         map[uint]models.Tag
	associations map[uint]map[uint]bool
	nextID       uint
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:         make(map[uint]models.Tag),
		associations: make(map[uint]map[uint]bool),
		nextID:       1,
	}
}

func (r *fakeTagRepo) ListAll(context.Context, *gorm.DB) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTagRepo) GetOrCreateByName(_ context.Context, _ *gorm.DB, name string) (models.Tag, error) {
	for _, tag := range r.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	tag := models.Tag{ID: r.nextID, Name: name}
	r.nextID++
	r.tags[tag.ID] = tag
	return tag, nil
}

func (r *fakeTagRepo) Associate(_ context.Context, _ *gorm.DB, imageID uint, tagID uint) error {
	if r.associations[imageID] == nil {
		r.associations[imageID] = make(map[uint]bool)
	}
	r.associations[imageID][tagID] = true
	return nil
}

func (r *fakeTagRepo) Disassociate(_ context.Context, _ *gorm.DB, imageID uint, tagID uint) error {
	delete(r.associations[imageID], tagID)
	return nil
}

func (r *fakeTagRepo) DeleteAssociationsByImage(_ context.Context, _ *gorm.DB, imageID uint) error {
	delete(r.associations, imageID)
	return nil
}
