package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"vocalstudio.app/backend/pkg/apperror"
)

// Guard enforces the configured upload limits. The type check sniffs the
// content, so a renamed executable does not pass as a PDF.
type Guard struct {
	maxSize int64
	allowed []string
}

func NewGuard(maxSize int64, allowed []string) *Guard {
	return &Guard{maxSize: maxSize, allowed: allowed}
}

// Inspect validates size and content type and returns the detected MIME
// type without parameters. r is rewound before returning.
func (g *Guard) Inspect(r io.ReadSeeker, size int64) (string, error) {
	if size > g.maxSize {
		return "", apperror.BadRequest("File too large. Maximum size is %s", humanSize(g.maxSize))
	}

	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect file type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	for _, allowed := range g.allowed {
		if mime.Is(allowed) {
			return baseType(mime.String()), nil
		}
	}
	return "", apperror.BadRequest("Invalid file type. Allowed types: %s", strings.Join(g.allowed, ", "))
}

func baseType(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= 1024 && n%1024 == 0 {
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}
