package models

import "time"

// Image is one imported original plus its derived thumbnail. Trash membership
// is exactly FolderID == FolderTrash; there is no separate deleted flag. A nil
// FolderID is treated as Uncategorized.
type Image struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FilePath      string     `gorm:"type:varchar(1000);not null" json:"file_path"`
	FileName      string     `gorm:"type:varchar(255);not null" json:"file_name"`
	Title         string     `gorm:"type:varchar(255)" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Link          string     `gorm:"type:varchar(1000)" json:"link"`
	FolderID      *uint      `gorm:"index" json:"folder_id"`
	Folder        *Folder    `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL" json:"-"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	FileSize      int64      `json:"file_size"`
	ThumbnailPath string     `gorm:"type:varchar(1000)" json:"thumbnail_path"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt    time.Time  `gorm:"autoUpdateTime" json:"modified_at"`

	// Computed per query (aggregated tag names, COALESCE(title, file_name)).
	Tags        string `gorm:"->;-:migration" json:"tags"`
	DisplayName string `gorm:"->;-:migration" json:"display_name"`
}

// InTrash reports whether the image is soft-deleted.
func (i *Image) InTrash() bool {
	return i.FolderID != nil && *i.FolderID == FolderTrash
}
