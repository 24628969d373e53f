package upload

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
)

const (
	// DefaultMaxSize is the resume size limit, 5 MiB.
	DefaultMaxSize int64 = 5 << 20

	maxFilenameLength = 200
	fallbackFilename  = "resume"
)

var invalidFilenameChars = []string{"\\", "/", ":", "*", "?", "\"", "<", ">", "|", "\x00"}

// ValidateFileHeader checks emptiness, size and type. It returns the media
// type that will be recorded for the file.
func ValidateFileHeader(fh *multipart.FileHeader, maxSize int64) (string, error) {
	if fh == nil {
		return "", apperrors.NewInvalidInputError("No file provided")
	}
	if fh.Size == 0 {
		return "", apperrors.NewEmptyFileError()
	}
	if fh.Size > maxSize {
		return "", apperrors.NewFileTooLargeError(maxSize)
	}

	contentType := DetectContentType(fh.Header.Get("Content-Type"), fh.Filename)
	if !IsResumeContentType(contentType) {
		return "", apperrors.NewInvalidFileTypeError(contentType)
	}
	return contentType, nil
}

// IsValidFilename checks for path separators, reserved characters and
// length.
func IsValidFilename(filename string) bool {
	if filename == "" || len(filename) > 255 {
		return false
	}
	for _, char := range invalidFilenameChars {
		if strings.Contains(filename, char) {
			return false
		}
	}
	return true
}

// SanitizeFilename reduces a client supplied name to a safe base name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	for _, char := range invalidFilenameChars {
		name = strings.ReplaceAll(name, char, "_")
	}
	name = strings.Join(strings.Fields(name), "_")

	if name == "" || name == "." || name == ".." || name == "_" {
		return fallbackFilename
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	return name
}
