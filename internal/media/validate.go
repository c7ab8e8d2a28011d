// Package media checks upload batches before any bytes leave the
// client: type, per-file size, and batch count.
package media

import (
	"fmt"
	"path"
	"strings"

	"ilanhub/internal/domain"
)

type FileInfo struct {
	Name        string
	Size        int64
	ContentType string
}

type Limits struct {
	MaxFiles     int
	MaxSizeBytes int64
	AllowedTypes map[string]bool
}

// DefaultLimits matches the listing upload widgets: up to 15 files of
// 10 MB each, common image formats plus mp4 video.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:     15,
		MaxSizeBytes: 10 << 20,
		AllowedTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"video/mp4":  true,
		},
	}
}

// Validate checks a batch and returns every violation as a per-file
// field error. Nothing is uploaded unless the batch is clean.
func Validate(files []FileInfo, lim Limits) *domain.ValidationError {
	var fields []domain.FieldError
	if len(files) > lim.MaxFiles {
		fields = append(fields, domain.FieldError{
			Field:  "files",
			Reason: fmt.Sprintf("at most %d files allowed, got %d", lim.MaxFiles, len(files)),
		})
	}
	for _, f := range files {
		if !lim.AllowedTypes[f.ContentType] {
			fields = append(fields, domain.FieldError{
				Field:  f.Name,
				Reason: "unsupported type " + f.ContentType,
			})
		}
		if f.Size > lim.MaxSizeBytes {
			fields = append(fields, domain.FieldError{
				Field:  f.Name,
				Reason: fmt.Sprintf("exceeds %d byte limit", lim.MaxSizeBytes),
			})
		}
		if f.Size == 0 {
			fields = append(fields, domain.FieldError{Field: f.Name, Reason: "empty file"})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

// previewNameMax bounds the label under a thumbnail.
const previewNameMax = 20

// PreviewName derives the label shown under a file's local preview
// before upload: directory and extension stripped, long names
// shortened with an ellipsis.
func PreviewName(f FileInfo) string {
	name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." {
		name = "file"
	}
	if r := []rune(name); len(r) > previewNameMax {
		name = string(r[:previewNameMax]) + "..."
	}
	return name
}
