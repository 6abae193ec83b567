package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/Nek1s/VisualHub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&models.Folder{}, &models.Image{}, &models.Tag{}, &models.ImageTag{}))

	for id, name := range map[uint]string{
		models.FolderAll:           "All",
		models.FolderUncategorized: "Uncategorized",
		models.FolderTrash:         "Trash",
	} {
		require.NoError(t, db.Create(&models.Folder{ID: id, Name: name}).Error)
	}
	return db
}

func seedImage(t *testing.T, db *gorm.DB, name string, folderID *uint) models.Image {
	t.Helper()
	img := models.Image{FilePath: "/x/" + name, FileName: name, FolderID: folderID}
	require.NoError(t, db.Create(&img).Error)
	return img
}

func TestListByFolderSystemRules(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormImageRepository(db)
	ctx := context.Background()

	user := models.Folder{Name: "Trips"}
	require.NoError(t, db.Create(&user).Error)

	trashID := uint(models.FolderTrash)
	uncatID := uint(models.FolderUncategorized)

	unfiled := seedImage(t, db, "unfiled.jpg", nil)
	filed := seedImage(t, db, "filed.jpg", &user.ID)
	explicit := seedImage(t, db, "explicit.jpg", &uncatID)
	trashed := seedImage(t, db, "trashed.jpg", &trashID)

	all, err := repo.ListByFolder(ctx, nil, models.FolderAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, img := range all {
		assert.NotEqual(t, trashed.ID, img.ID)
	}

	uncategorized, err := repo.ListByFolder(ctx, nil, models.FolderUncategorized)
	require.NoError(t, err)
	require.Len(t, uncategorized, 2)
	ids := []uint{uncategorized[0].ID, uncategorized[1].ID}
	assert.ElementsMatch(t, []uint{unfiled.ID, explicit.ID}, ids)

	trash, err := repo.ListByFolder(ctx, nil, models.FolderTrash)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, trashed.ID, trash[0].ID)

	byUser, err := repo.ListByFolder(ctx, nil, user.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, filed.ID, byUser[0].ID)
}

func TestListByFolderAggregatesTags(t *testing.T) {
	db := setupTestDB(t)
	images := NewGormImageRepository(db)
	tags := NewGormTagRepository(db)
	ctx := context.Background()

	img := seedImage(t, db, "tagged.jpg", nil)
	for _, name := range []string{"beach", "sunset"} {
		tag, err := tags.GetOrCreateByName(ctx, nil, name)
		require.NoError(t, err)
		require.NoError(t, tags.Associate(ctx, nil, img.ID, tag.ID))
	}

	listed, err := images.ListByFolder(ctx, nil, models.FolderAll)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := strings.Split(listed[0].Tags, ",")
	assert.ElementsMatch(t, []string{"beach", "sunset"}, got)
}

func TestDisplayNameFallsBackToFileName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormImageRepository(db)
	ctx := context.Background()

	untitled := seedImage(t, db, "raw_scan.jpg", nil)
	titled := models.Image{FilePath: "/x/t.jpg", FileName: "t.jpg", Title: "Holiday"}
	require.NoError(t, db.Create(&titled).Error)

	listed, err := repo.ListByFolder(ctx, nil, models.FolderAll)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := map[uint]models.Image{}
	for _, img := range listed {
		byID[img.ID] = img
	}
	assert.Equal(t, "raw_scan.jpg", byID[untitled.ID].DisplayName)
	assert.Equal(t, "Holiday", byID[titled.ID].DisplayName)
}

func TestReassignFolderReportsRowsAffected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormImageRepository(db)
	ctx := context.Background()

	user := models.Folder{Name: "Doomed"}
	require.NoError(t, db.Create(&user).Error)

	seedImage(t, db, "a.jpg", &user.ID)
	seedImage(t, db, "b.jpg", &user.ID)
	seedImage(t, db, "c.jpg", nil)

	moved, err := repo.ReassignFolder(ctx, nil, user.ID, models.FolderTrash)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	count, err := repo.CountTrash(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormImageRepository(db)
	ctx := context.Background()

	trashID := uint(models.FolderTrash)
	seedImage(t, db, "one.jpg", nil)
	seedImage(t, db, "two.jpg", &trashID)

	all, err := repo.CountAll(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), all)

	uncat, err := repo.CountUncategorized(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), uncat)

	trash, err := repo.CountTrash(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), trash)
}

func TestTagCascadeOnImageDelete(t *testing.T) {
	db := setupTestDB(t)
	images := NewGormImageRepository(db)
	tags := NewGormTagRepository(db)
	ctx := context.Background()

	img := seedImage(t, db, "linked.jpg", nil)
	tag, err := tags.GetOrCreateByName(ctx, nil, "keeper")
	require.NoError(t, err)
	require.NoError(t, tags.Associate(ctx, nil, img.ID, tag.ID))

	require.NoError(t, images.DeleteByID(ctx, nil, img.ID))

	var links int64
	require.NoError(t, db.Model(&models.ImageTag{}).Where("image_id = ?", img.ID).Count(&links).Error)
	assert.Equal(t, int64(0), links)

	// The tag itself survives.
	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.Equal(t, int64(1), tagCount)
}
