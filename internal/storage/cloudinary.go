package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// folderTransforms caps stored image dimensions per folder.
var folderTransforms = map[string]string{
	FolderProducts: "c_limit,w_1000,h_1000",
	FolderProfiles: "c_limit,w_500,h_500",
}

var allowedFormats = api.CldAPIArray{"jpg", "jpeg", "png", "gif", "webp"}

// CloudinaryStore uploads to Cloudinary under "<folder prefix>/<folder>".
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, prefix string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld, prefix: prefix}, nil
}

func (s *CloudinaryStore) Name() string { return "cloudinary" }

func (s *CloudinaryStore) Save(ctx context.Context, folder string, up Upload) (string, error) {
	up, _, err := SniffImage(up)
	if err != nil {
		return "", err
	}
	resp, err := s.cld.Upload.Upload(ctx, up.Body, uploader.UploadParams{
		Folder:         path.Join(s.prefix, folder),
		AllowedFormats: allowedFormats,
		Transformation: folderTransforms[folder],
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID, ok := cloudinaryPublicID(url)
	if !ok {
		return ErrForeignURL
	}
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, resp.Error.Message)
	}
	return nil
}

func (s *CloudinaryStore) Owns(url string) bool {
	_, ok := cloudinaryPublicID(url)
	return ok
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// cloudinaryPublicID extracts "campuskart/products/abc" from
// https://res.cloudinary.com/<cloud>/image/upload/v123/campuskart/products/abc.jpg.
func cloudinaryPublicID(url string) (string, bool) {
	if !strings.Contains(url, "cloudinary.com/") {
		return "", false
	}
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok || rest == "" {
		return "", false
	}
	rest = versionSegment.ReplaceAllString(rest, "")
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	if rest == "" {
		return "", false
	}
	return rest, true
}
