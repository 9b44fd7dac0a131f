package upload

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// MaxFileSize is the largest accepted evidence file (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

const genericMime = "application/octet-stream"

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = fmt.Errorf("file exceeds the maximum size of %d bytes", MaxFileSize)
)

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".zip":  "application/zip",
}

var allowedMime = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"image/heic":         true,
	"image/heif":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.ms-excel":                                                true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":                   true,
	"text/csv":                     true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
}

// ValidateSize rejects empty files and files above MaxFileSize.
func ValidateSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// ResolveMime picks the content type for an upload. An empty or generic hint
// is replaced by the extension table, then by content sniffing. Types outside
// the allow list are logged and still returned.
func ResolveMime(hint, filename string, head []byte) string {
	mime := strings.TrimSpace(strings.ToLower(hint))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" || mime == genericMime {
		mime = MimeFromExtension(filename)
	}
	if mime == genericMime && len(head) > 0 {
		if sniffed := http.DetectContentType(head); sniffed != "" {
			if i := strings.Index(sniffed, ";"); i >= 0 {
				sniffed = sniffed[:i]
			}
			mime = sniffed
		}
	}
	if !IsAllowedMime(mime) {
		log.Warnf("[Upload] File type not in allowed list: %s, filename: %s", mime, filename)
	}
	return mime
}

// MimeFromExtension maps a filename extension to a content type.
func MimeFromExtension(filename string) string {
	if mime, ok := mimeByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return genericMime
}

// IsAllowedMime reports whether the type is on the allow list.
func IsAllowedMime(mime string) bool {
	return allowedMime[mime]
}
