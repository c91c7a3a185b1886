// Package storage saves listing and profile images to local disk, Cloudinary
// or a MinIO bucket behind a single ImageStore interface.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/arzan03/CampusKart/internal/config"
)

const (
	FolderProducts = "products"
	FolderProfiles = "profiles"
)

var (
	ErrNotImage      = errors.New("only image files are allowed")
	ErrImageTooLarge = errors.New("image exceeds the maximum upload size")
	ErrForeignURL    = errors.New("url does not belong to this image store")
)

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists images and hands back the URL clients should use.
type ImageStore interface {
	Save(ctx context.Context, folder string, up Upload) (string, error)
	Delete(ctx context.Context, url string) error
	// Owns reports whether url was produced by this store.
	Owns(url string) bool
	Name() string
}

// ValidateImage applies the upload filter: image/* content type and a size cap.
func ValidateImage(up Upload, maxSize int64) error {
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return ErrNotImage
	}
	if maxSize > 0 && up.Size > maxSize {
		return ErrImageTooLarge
	}
	return nil
}

// New builds the store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal:
		return NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	case config.StorageCloudinary:
		return NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// sniffLen covers the magic numbers of every accepted format.
const sniffLen = 512

// imageExtensions are the stored formats, keyed by detected MIME type.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffImage detects the format from the leading bytes of the body and
// ignores the declared content type and filename. The returned upload
// replays the sniffed bytes and carries the detected content type.
func SniffImage(up Upload) (Upload, string, error) {
	if up.Body == nil {
		return up, "", ErrNotImage
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return up, "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	ext, ok := imageExtensions[detected.String()]
	if !ok {
		return up, "", fmt.Errorf("%w: detected %s", ErrNotImage, detected.String())
	}
	up.ContentType = detected.String()
	up.Body = io.MultiReader(bytes.NewReader(head), up.Body)
	return up, ext, nil
}

// objectName builds "<folder>/<unix-millis>-<random><ext>".
func objectName(folder, ext string) string {
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	return path.Join(folder, name)
}
