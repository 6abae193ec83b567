package services

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/Nek1s/VisualHub/config"
)

func TestSanitizeBaseName(t *testing.T) {
	got := sanitizeBaseName(`My <Best> Photos: 2024/summer`, 50)
	if got != "My_Best_Photos_2024summer" {
		t.Fatalf("unexpected sanitized name: %s", got)
	}
}

func TestSanitizeBaseNameLengthCap(t *testing.T) {
	got := sanitizeBaseName("abcdefghij", 4)
	if got != "abcd" {
		t.Fatalf("expected abcd, got %s", got)
	}
}

func TestSanitizeBaseNameKeepsRunesIntact(t *testing.T) {
	// Each character is 3 bytes; a 4-byte cap must not split the second one.
	got := sanitizeBaseName("日本語", 4)
	if got != "日" {
		t.Fatalf("expected single character, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
}

func TestDesanitizeFolderName(t *testing.T) {
	if got := desanitizeFolderName("My_Best_Photos"); got != "My Best Photos" {
		t.Fatalf("unexpected desanitized name: %s", got)
	}
}

func TestUniquePathAppendsSuffix(t *testing.T) {
	dir := t.TempDir()
	taken := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(taken, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got := uniquePath(taken, "")
	want := filepath.Join(dir, "photo_1.jpg")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestUniquePathKeepsOwnedPath(t *testing.T) {
	dir := t.TempDir()
	owned := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(owned, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if got := uniquePath(owned, owned); got != owned {
		t.Fatalf("expected owned path back, got %s", got)
	}
}

func TestUniqueDirPath(t *testing.T) {
	dir := t.TempDir()
	taken := filepath.Join(dir, "Holiday")
	if err := os.Mkdir(taken, 0o755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	got := uniqueDirPath(taken)
	want := filepath.Join(dir, "Holiday_1")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestIsExtensionAllowed(t *testing.T) {
	config.AppConfig = &config.Config{Storage: config.StorageConfig{AllowedExtensions: []string{".jpg", ".png"}}}
	if !isExtensionAllowed("a.JPG") {
		t.Fatalf("expected JPG to be allowed")
	}
	if isExtensionAllowed("a.exe") {
		t.Fatalf("expected EXE to be blocked")
	}
}
