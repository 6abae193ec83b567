package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nek1s/VisualHub/models"
)

func strPtr(s string) *string { return &s }

func TestComputeFolderDiffStaleRows(t *testing.T) {
	rows := []models.Folder{
		{ID: models.FolderAll, Name: "All"},
		{ID: 4, Name: "Kept", Path: strPtr("/data/folders/Kept")},
		{ID: 5, Name: "Vanished", Path: strPtr("/data/folders/Vanished")},
		{ID: 6, Name: "Pathless"},
	}
	dirs := []string{"All", "Uncategorized", "Trash", "Kept"}

	diff := ComputeFolderDiff(rows, dirs)
	if len(diff.StaleIDs) != 2 {
		t.Fatalf("expected 2 stale rows, got %v", diff.StaleIDs)
	}
	if diff.StaleIDs[0] != 5 || diff.StaleIDs[1] != 6 {
		t.Fatalf("unexpected stale ids: %v", diff.StaleIDs)
	}
	if len(diff.NewDirs) != 0 {
		t.Fatalf("unexpected new dirs: %v", diff.NewDirs)
	}
}

func TestComputeFolderDiffNewDirsSkipReserved(t *testing.T) {
	rows := []models.Folder{
		{ID: 4, Name: "Known", Path: strPtr("/data/folders/Known")},
	}
	dirs := []string{"All", "Uncategorized", "Trash", "Known", "Dropped_Here"}

	diff := ComputeFolderDiff(rows, dirs)
	if len(diff.NewDirs) != 1 || diff.NewDirs[0] != "Dropped_Here" {
		t.Fatalf("unexpected new dirs: %v", diff.NewDirs)
	}
	if len(diff.StaleIDs) != 0 {
		t.Fatalf("unexpected stale ids: %v", diff.StaleIDs)
	}
}

func TestComputeFolderDiffMissingSystemDirs(t *testing.T) {
	diff := ComputeFolderDiff(nil, []string{"All"})
	if len(diff.MissingSystemDirs) != 2 {
		t.Fatalf("expected Uncategorized and Trash missing, got %v", diff.MissingSystemDirs)
	}
}

func TestComputeFolderDiffEmptyWhenInAgreement(t *testing.T) {
	rows := []models.Folder{
		{ID: 4, Name: "A", Path: strPtr("/x/A")},
	}
	dirs := []string{"All", "Uncategorized", "Trash", "A"}

	if diff := ComputeFolderDiff(rows, dirs); !diff.Empty() {
		t.Fatalf("expected empty diff, got %+v", diff)
	}
}

type reconcileFixture struct {
	svc      ReconcileService
	folders  *fakeFolderRepo
	images   *fakeImageRepo
	notifier *Notifier
	dir      string
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	dir := t.TempDir()
	for _, name := range models.SystemFolderNames() {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
	folders := newFakeFolderRepo()
	images := newFakeImageRepo()
	notifier := NewNotifier()
	svc := NewReconcileService(fakeTxManager{}, folders, images, notifier, dir)
	return &reconcileFixture{svc: svc, folders: folders, images: images, notifier: notifier, dir: dir}
}

func TestSyncNoChangesWhenInAgreement(t *testing.T) {
	f := newReconcileFixture(t)

	changed, err := f.svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if changed {
		t.Fatalf("expected no changes")
	}
}

func TestSyncDropsVanishedFolderAndTrashesImages(t *testing.T) {
	f := newReconcileFixture(t)

	ghostPath := filepath.Join(f.dir, "Ghost")
	ghost := models.Folder{Name: "Ghost", Path: &ghostPath}
	if err := f.folders.Create(context.Background(), nil, &ghost); err != nil {
		t.Fatalf("seed folder: %v", err)
	}
	img := models.Image{FilePath: "x", FileName: "x.jpg", FolderID: &ghost.ID}
	if err := f.images.Create(context.Background(), nil, &img); err != nil {
		t.Fatalf("seed image: %v", err)
	}

	changed, err := f.svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}

	if _, err := f.folders.GetByID(context.Background(), nil, ghost.ID); err == nil {
		t.Fatalf("stale folder row survived")
	}
	stored, _ := f.images.GetByID(context.Background(), nil, img.ID)
	if !stored.InTrash() {
		t.Fatalf("member image not trashed, folder %v", stored.FolderID)
	}
}

func TestSyncAdoptsNewDirectories(t *testing.T) {
	f := newReconcileFixture(t)

	if err := os.Mkdir(filepath.Join(f.dir, "Dropped_In"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	changed, err := f.svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}

	all, _ := f.folders.ListAll(context.Background(), nil)
	found := false
	for _, folder := range all {
		if folder.Name == "Dropped In" {
			found = true
			if folder.Path == nil || filepath.Base(*folder.Path) != "Dropped_In" {
				t.Fatalf("adopted folder path wrong: %+v", folder)
			}
		}
	}
	if !found {
		t.Fatalf("new directory not adopted: %+v", all)
	}
}

func TestSyncRecreatesSystemDirectories(t *testing.T) {
	f := newReconcileFixture(t)

	trashDir := filepath.Join(f.dir, "Trash")
	if err := os.Remove(trashDir); err != nil {
		t.Fatalf("remove: %v", err)
	}

	changed, err := f.svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	info, statErr := os.Stat(trashDir)
	if statErr != nil || !info.IsDir() {
		t.Fatalf("Trash directory not recreated: %v", statErr)
	}
}

func TestSyncPublishesOnChange(t *testing.T) {
	f := newReconcileFixture(t)
	ch, cancel := f.notifier.Subscribe()
	defer cancel()

	if err := os.Mkdir(filepath.Join(f.dir, "Fresh"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := f.svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	select {
	case event := <-ch:
		if event != EventFoldersChanged {
			t.Fatalf("unexpected event %q", event)
		}
	default:
		t.Fatalf("expected a folders-changed event")
	}
}
