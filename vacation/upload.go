package vacation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the largest vacation file accepted.
const MaxUploadBytes = 1 << 20

var allowedExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".text": true,
}

// CheckUpload rejects files by size or extension before they are read.
func CheckUpload(name string, size int64) error {
	if size > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, MaxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	return nil
}

// IsCSV reports whether name should be parsed as CSV.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
