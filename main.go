package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Nek1s/VisualHub/config"
	"github.com/Nek1s/VisualHub/database"
	"github.com/Nek1s/VisualHub/handlers"
	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/middleware"
	"github.com/Nek1s/VisualHub/repositories"
	"github.com/Nek1s/VisualHub/services"
	"github.com/Nek1s/VisualHub/watcher"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting visualhub service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Logging.Level)

	for _, dir := range []string{cfg.Storage.DataDir, cfg.ImagesDir(), cfg.ThumbsDir(), cfg.FoldersDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create directory %s failed: %v", dir, err)
		}
	}

	if err := database.InitSQLite(cfg.DatabasePath()); err != nil {
		log.Fatalf("init database failed: %v", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("migrate database failed: %v", err)
	}
	if err := database.SeedSystemFolders(database.DB); err != nil {
		log.Fatalf("seed system folders failed: %v", err)
	}
	log.Println("database ready")

	repoContainer := repositories.NewGormRepositories(database.DB).BuildContainer()
	serviceContainer := services.NewContainer(&repoContainer, services.Dirs{
		Images:  cfg.ImagesDir(),
		Thumbs:  cfg.ThumbsDir(),
		Folders: cfg.FoldersDir(),
	})
	handlers.SetServices(serviceContainer)

	if _, err := serviceContainer.Reconciler.Sync(context.Background()); err != nil {
		logger.Warnf("startup reconciliation: %v", err)
	}
	go func() {
		if repaired, err := serviceContainer.Thumbnails.RepairMissing(context.Background()); err != nil {
			logger.Warnf("thumbnail repair: %v", err)
		} else if repaired > 0 {
			logger.Infof("repaired %d thumbnails", repaired)
		}
	}()

	if cfg.Watcher.Enabled != nil && *cfg.Watcher.Enabled {
		w, err := watcher.New(
			serviceContainer.Reconciler,
			serviceContainer.Notifier,
			cfg.FoldersDir(),
			time.Duration(cfg.Watcher.DebounceMs)*time.Millisecond,
		)
		if err != nil {
			log.Fatalf("start watcher failed: %v", err)
		}
		defer w.Close()
		log.Println("folder watcher started")
	}

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)
	api.GET("/events", handlers.Events)

	api.GET("/folders", handlers.ListFolders)
	api.POST("/folders", handlers.CreateFolder)
	api.PUT("/folders/:id", handlers.RenameFolder)
	api.DELETE("/folders/:id", handlers.DeleteFolder)

	api.GET("/images", handlers.ListImages)
	api.POST("/images", handlers.ImportImage)
	api.GET("/images/:id", handlers.GetImage)
	api.PUT("/images/:id/field", handlers.UpdateImageField)
	api.PUT("/images/:id/move", handlers.MoveImage)
	api.POST("/images/:id/trash", handlers.TrashImage)
	api.POST("/images/:id/restore", handlers.RestoreImage)
	api.DELETE("/images/:id", handlers.DeleteImage)
	api.POST("/images/:id/crop", handlers.CropImage)
	api.POST("/images/:id/rotate", handlers.RotateImage)
	api.POST("/images/:id/resize", handlers.ResizeImage)
	api.POST("/images/:id/export", handlers.ExportImage)
	api.POST("/images/:id/tags", handlers.TagImage)
	api.DELETE("/images/:id/tags/:tagId", handlers.UntagImage)

	api.GET("/trash", handlers.ListTrash)
	api.GET("/trash/count", handlers.TrashCount)
	api.POST("/trash/empty", handlers.EmptyTrash)

	api.GET("/tags", handlers.ListTags)
	api.GET("/preview", handlers.PreviewURL)
	api.POST("/thumbnails/regenerate", handlers.RegenerateThumbnails)
}
