package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidFileURL is returned when a stored URL does not belong to the store
var ErrInvalidFileURL = errors.New("file url does not belong to this store")

// Upload describes a file about to be stored
type Upload struct {
	// Folder groups related files, e.g. "question_papers"
	Folder string
	// MimeType is the detected content type
	MimeType string
	// Extension includes the leading dot, e.g. ".pdf"
	Extension string
	// Size in bytes, if known
	Size int64
}

// StoredFile is the result of a successful upload
type StoredFile struct {
	URL      string
	PublicID string
	MimeType string
}

// FileStore stores uploaded files and removes them by the URL returned from Upload.
type FileStore interface {
	Upload(ctx context.Context, content io.Reader, upload Upload) (*StoredFile, error)
	Delete(ctx context.Context, fileURL string) error
}
