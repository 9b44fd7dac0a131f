package upload

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	maxBaseNameLen = 50
	maxPathLen     = 1024
	fallbackName   = "file"
)

var ErrInvalidPath = errors.New("invalid file path generated")

var (
	specialChars = regexp.MustCompile(`[/\\:*?"<>|\s]+`)
	underscores  = regexp.MustCompile(`_{2,}`)
	dots         = regexp.MustCompile(`\.{2,}`)
)

// SanitizeFilename returns an ASCII only name safe for object keys. The
// extension after the last dot is kept in lower case.
func SanitizeFilename(filename string) string {
	name, ext := filename, ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		name, ext = filename[:i], filename[i+1:]
	}

	safe := clean(name)
	if len(safe) > maxBaseNameLen {
		safe = strings.Trim(safe[:maxBaseNameLen], "_.")
	}
	if safe == "" {
		safe = fallbackName
	}

	ext = strings.ToLower(clean(ext))
	if ext == "" {
		return safe
	}
	return safe + "." + ext
}

func clean(s string) string {
	s = asciiOnly(norm.NFKD.String(s))
	s = specialChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = dots.ReplaceAllString(s, ".")
	return strings.Trim(s, "_.")
}

func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && (r >= 0x20 || unicode.IsSpace(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PathSpec describes where an evidence blob belongs.
type PathSpec struct {
	OwnerID  string
	Standard string
	PageKey  string
	Month    *int
	FileName string
}

// BuildPath generates {owner}/{standard}/{page_key}/[{month}/]{ms}_{hex}_{name}.
// Every call yields a distinct key, also for identical input.
func BuildPath(spec PathSpec, now time.Time) (string, error) {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	unique := fmt.Sprintf("%d_%s_%s", now.UnixMilli(), suffix, SanitizeFilename(spec.FileName))

	var path string
	if spec.Month != nil && *spec.Month > 0 {
		path = fmt.Sprintf("%s/%s/%s/%d/%s", spec.OwnerID, spec.Standard, spec.PageKey, *spec.Month, unique)
	} else {
		path = fmt.Sprintf("%s/%s/%s/%s", spec.OwnerID, spec.Standard, spec.PageKey, unique)
	}

	if err := ValidatePath(path); err != nil {
		return "", err
	}
	return path, nil
}

// ValidatePath rejects keys with empty segments, parent references or excess length.
func ValidatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "//") || strings.Contains(path, "..") || len(path) > maxPathLen {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
