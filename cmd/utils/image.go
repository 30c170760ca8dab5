package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const MaxImageSize = 10 << 20 // 10 MB

// ImageContentType validates an uploaded image header and returns its content type.
func ImageContentType(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", fmt.Errorf("%w: file size exceeds maximum limit of %d MB", ErrValidation, MaxImageSize/(1<<20))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: invalid file type: %s", ErrValidation, ext)
	}
	return contentType, nil
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageExtension returns the canonical extension for a validated content type.
func ImageExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
