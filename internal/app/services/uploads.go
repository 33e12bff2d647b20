package services

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
)

var (
	// paperMimeTypes are the accepted paper scans and documents
	paperMimeTypes = []string{"application/pdf", "image/jpeg", "image/png", "image/webp", "image/gif"}
	// avatarMimeTypes are the accepted profile pictures
	avatarMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
)

// readUpload reads a multipart file fully, bounded by maxBytes, and sniffs
// its content type. Types outside allowed are rejected.
func readUpload(fh *multipart.FileHeader, maxBytes int64, allowed []string) ([]byte, *mimetype.MIME, error) {
	if fh == nil {
		return nil, nil, apperrors.ErrFileRequired
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, nil, tooLarge(maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, nil, tooLarge(maxBytes)
	}
	if len(data) == 0 {
		return nil, nil, apperrors.NewValidationError("file", "Uploaded file is empty")
	}

	mtype := mimetype.Detect(data)
	for _, a := range allowed {
		if mtype.Is(a) {
			return data, mtype, nil
		}
	}
	return nil, nil, apperrors.ErrUnsupportedFile
}

func tooLarge(maxBytes int64) error {
	return apperrors.NewValidationError("file", fmt.Sprintf("File exceeds the %d MB limit", maxBytes>>20))
}
