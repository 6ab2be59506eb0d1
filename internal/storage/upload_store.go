// Package storage persists uploaded claim documents on the local
// filesystem under names that never collide with or leak the original
// filename.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadStore writes claim documents under a base directory.
type UploadStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewUploadStore creates an upload store, creating the base directory
// if needed.
func NewUploadStore(baseDir string, logger *zap.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save writes content under a generated unique filename with the given
// extension and returns that filename.
func (s *UploadStore) Save(content []byte, ext string) (string, error) {
	filename := fmt.Sprintf("%s.%s", uuid.NewString(), ext)

	fullPath, err := s.resolve(filename)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write upload",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	s.logger.Debug("Upload stored",
		zap.String("filename", filename),
		zap.Int("size", len(content)))

	return filename, nil
}

// Open returns the full on-disk path for a stored filename.
func (s *UploadStore) Open(filename string) (string, error) {
	return s.resolve(filename)
}

// Remove deletes a stored file. A missing file is not an error; the
// metadata row is authoritative.
func (s *UploadStore) Remove(filename string) error {
	fullPath, err := s.resolve(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to remove upload",
			zap.String("filename", filename),
			zap.Error(err))
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// resolve joins the filename to the base directory, rejecting any path
// that would escape it.
func (s *UploadStore) resolve(filename string) (string, error) {
	fullPath := filepath.Join(s.baseDir, filename)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes upload directory: %s", filename)
	}

	return absPath, nil
}
