package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type StorageConfig struct {
	DataDir             string   `yaml:"data_dir"`
	AllowedExtensions   []string `yaml:"allowed_extensions"`
	MaxFolderNameLength int      `yaml:"max_folder_name_length"`
	MaxTitleLength      int      `yaml:"max_title_length"`
}

type ThumbnailConfig struct {
	Size    int `yaml:"size"`
	Quality int `yaml:"quality"`
}

type WatcherConfig struct {
	Enabled    *bool `yaml:"enabled"`
	DebounceMs int   `yaml:"debounce_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir()
	}
	if len(cfg.Storage.AllowedExtensions) == 0 {
		cfg.Storage.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
	}
	if cfg.Storage.MaxFolderNameLength == 0 {
		cfg.Storage.MaxFolderNameLength = 50
	}
	if cfg.Storage.MaxTitleLength == 0 {
		cfg.Storage.MaxTitleLength = 100
	}
	if cfg.Thumbnail.Size == 0 {
		cfg.Thumbnail.Size = 200
	}
	if cfg.Thumbnail.Quality == 0 {
		cfg.Thumbnail.Quality = 80
	}
	if cfg.Watcher.Enabled == nil {
		enabled := true
		cfg.Watcher.Enabled = &enabled
	}
	if cfg.Watcher.DebounceMs == 0 {
		cfg.Watcher.DebounceMs = 2000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(base, "visualhub")
}

// DatabasePath is the location of the library database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "library.db")
}

// ImagesDir holds the stored originals.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Storage.DataDir, "images")
}

// ThumbsDir holds derived thumbnail files.
func (c *Config) ThumbsDir() string {
	return filepath.Join(c.Storage.DataDir, "thumbnails")
}

// FoldersDir holds the physical directories backing user folders.
func (c *Config) FoldersDir() string {
	return filepath.Join(c.Storage.DataDir, "folders")
}
