package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/pkg/logger"
)

// LocalURLPrefix is the route prefix the server exposes stored files under
const LocalURLPrefix = "/uploads/"

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory for stored files
	baseURL  string // public base URL of the server, prepended to returned paths
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes content to basePath/<folder>/<uuid><ext>
func (ls *LocalStorage) Upload(ctx context.Context, content io.Reader, upload Upload) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder := cleanFolder(upload.Folder)
	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + upload.Extension
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	publicID := path.Join(folder, name)
	url := ls.baseURL + LocalURLPrefix + publicID

	logger.Info().Str("saved_as", publicID).Str("url", url).Msg("File saved successfully")
	return &StoredFile{URL: url, PublicID: publicID, MimeType: upload.MimeType}, nil
}

// Delete removes the file behind fileURL. A file that is already gone is not an error.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	physicalPath, err := ls.pathFor(fileURL)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// pathFor maps a URL produced by Upload back onto the filesystem, refusing
// anything that would escape basePath.
func (ls *LocalStorage) pathFor(fileURL string) (string, error) {
	idx := strings.Index(fileURL, LocalURLPrefix)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}

	rel := path.Clean("/" + fileURL[idx+len(LocalURLPrefix):])
	if rel == "/" {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(rel, "/"))), nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "." {
		return ""
	}
	return folder
}
