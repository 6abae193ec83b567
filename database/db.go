package database

import (
	"fmt"
	"log"

	"github.com/Nek1s/VisualHub/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitSQLite opens the library database file and turns foreign key
// enforcement on. All access goes through the single returned handle.
func InitSQLite(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	DB = db
	log.Println("database opened:", path)
	return nil
}

// Migrate applies the schema additively. AutoMigrate appends missing columns
// with safe defaults and never drops existing rows, which keeps startup
// idempotent across versions.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Folder{},
		&models.Image{},
		&models.Tag{},
		&models.ImageTag{},
	)
}

// SeedSystemFolders inserts the three reserved folders if absent, keyed by id.
func SeedSystemFolders(db *gorm.DB) error {
	seeds := []models.Folder{
		{ID: models.FolderAll, Name: "All"},
		{ID: models.FolderUncategorized, Name: "Uncategorized"},
		{ID: models.FolderTrash, Name: "Trash"},
	}
	for i := range seeds {
		var existing models.Folder
		err := db.First(&existing, seeds[i].ID).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check system folder %d: %w", seeds[i].ID, err)
		}
		if err := db.Create(&seeds[i]).Error; err != nil {
			return fmt.Errorf("seed system folder %d: %w", seeds[i].ID, err)
		}
	}
	return nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
