package models

import "time"

// Reserved ids of the three system folders. They are seeded at startup and
// are never renamed, deleted, or re-pathed by user action.
const (
	FolderAll           uint = 1
	FolderUncategorized uint = 2
	FolderTrash         uint = 3
)

type Folder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Path      *string   `gorm:"type:varchar(1000)" json:"path"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// ImageCount is computed per query, not stored.
	ImageCount int64 `gorm:"-" json:"image_count"`
}

// IsSystemFolder reports whether id refers to All, Uncategorized, or Trash.
func IsSystemFolder(id uint) bool {
	return id <= FolderTrash
}

// SystemFolderNames are the reserved physical directory names under the
// folders root.
func SystemFolderNames() []string {
	return []string{"All", "Uncategorized", "Trash"}
}

// IsSystemFolderName reports whether name is a reserved directory name.
func IsSystemFolderName(name string) bool {
	for _, n := range SystemFolderNames() {
		if n == name {
			return true
		}
	}
	return false
}
