package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxFileSize caps receipt uploads at 10MB
const maxFileSize = 10 * 1024 * 1024

// allowedContentTypes lists the MIME types accepted for receipt uploads
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// LocalStorage stores uploaded files on the local filesystem under a base
// directory, organized by subdirectory and year/month. Paths handed back to
// callers are relative to the base so the base can move between deployments.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload saves an uploaded file under subDir/YYYY/MM with a generated name
// and returns the relative path for database storage.
func (s *LocalStorage) Upload(file multipart.File, header *multipart.FileHeader, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	name := generateName(filepath.Ext(header.Filename))
	fullPath := filepath.Join(dir, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, fullPath)
	return relPath, nil
}

// Delete removes a stored file
func (s *LocalStorage) Delete(relativePath string) error {
	return os.Remove(filepath.Join(s.basePath, relativePath))
}

// Exists reports whether a stored file is present on disk
func (s *LocalStorage) Exists(relativePath string) bool {
	_, err := os.Stat(filepath.Join(s.basePath, relativePath))
	return err == nil
}

// GetFullPath resolves a stored relative path to an absolute one for serving
func (s *LocalStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.basePath, relativePath)
}

func generateName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

// IsValidContentType checks if the content type is allowed for uploads
func IsValidContentType(contentType string) bool {
	return allowedContentTypes[contentType]
}

// MaxFileSize returns the maximum allowed upload size in bytes
func MaxFileSize() int64 {
	return maxFileSize
}
