package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Nek1s/VisualHub/config"
	"github.com/Nek1s/VisualHub/logger"
)

var (
	illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// sanitizeBaseName turns a user-supplied name into a filesystem-safe path
// component: illegal characters stripped, whitespace collapsed to
// underscores, length capped.
func sanitizeBaseName(name string, maxLen int) string {
	cleaned := illegalPathChars.ReplaceAllString(name, "")
	cleaned = whitespaceRun.ReplaceAllString(strings.TrimSpace(cleaned), "_")
	if maxLen > 0 && len(cleaned) > maxLen {
		// Back off to a rune boundary so a multibyte name never gets cut
		// mid-character.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return strings.Trim(cleaned, "_")
}

// desanitizeFolderName reverses the sanitization applied to directory names
// well enough for display: underscores become spaces.
func desanitizeFolderName(dirName string) string {
	return strings.ReplaceAll(dirName, "_", " ")
}

// uniquePath appends a numeric suffix to the base name until the path no
// longer collides with an existing file. keep is the path the caller already
// owns; reaching it counts as no collision.
func uniquePath(path string, keep string) string {
	candidate := path
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		if candidate == keep {
			return candidate
		}
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

// uniqueDirPath is uniquePath for directories.
func uniqueDirPath(path string) string {
	candidate := path
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", path, counter)
	}
}

func isExtensionAllowed(fileName string) bool {
	allowed := config.AppConfig.Storage.AllowedExtensions
	if len(allowed) == 0 {
		return true
	}

	fileExt := strings.ToLower(filepath.Ext(fileName))
	for _, ext := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if normalized == fileExt {
			return true
		}
	}

	return false
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// deleteFileIfExists removes a file best-effort; a missing file or a failed
// removal is logged, never an error.
func deleteFileIfExists(path string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		logger.Warnf("could not remove file %s: %v", path, err)
		return false
	}
	return true
}
