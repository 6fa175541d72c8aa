package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadResult describes a stored object.
type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int64
}

// FileStorage is the object store behind lesson files and uploads.
type FileStorage interface {
	// Upload stores r under folder and returns its public location.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadResult, error)
	// Delete removes the object previously returned by Upload.
	Delete(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates the Cloudinary-backed FileStorage.
// It reads CLOUDINARY_URL (or CLOUDINARY_CLOUD_NAME) from the environment.
func NewCloudinaryStorage() (FileStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadResult, error) {
	if s == nil || s.cld == nil {
		return nil, fmt.Errorf("cloudinary storage is not initialized")
	}

	params := uploader.UploadParams{
		Folder:         folder,
		PublicID:       ObjectName(time.Now(), fileName),
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		// sheet music and recordings are not images
		ResourceType: "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Bytes:    int64(resp.Bytes),
	}, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	resourceType, publicID := ParseURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// ObjectName builds a collision-free object name that keeps the original
// base name readable. The extension is dropped; Cloudinary derives it.
func ObjectName(now time.Time, fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("%d-%s", now.UnixNano(), base)
}

// ParseURL extracts the resource type and public ID from a delivery URL.
//
//	https://res.cloudinary.com/demo/image/upload/v123/folder/sample.jpg -> image, folder/sample
//	https://res.cloudinary.com/demo/raw/upload/v123/folder/notes.pdf    -> raw, folder/notes.pdf
func ParseURL(fileURL string) (resourceType, publicID string) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex < 1 || uploadIndex+1 >= len(parts) {
		return "", ""
	}
	resourceType = parts[uploadIndex-1]

	rest := parts[uploadIndex+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}

	id := strings.Join(rest, "/")
	if id == "" {
		return "", ""
	}
	// raw assets keep their extension as part of the public ID
	if resourceType != "raw" {
		id = strings.TrimSuffix(id, filepath.Ext(id))
	}
	return resourceType, id
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
