package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arzan03/CampusKart/internal/logging"
)

// publicReadPolicy lets browsers fetch listing images straight from the bucket.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps images in a single public-read bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects and creates the bucket when it does not exist yet.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
		logging.Info().Str("bucket", opts.Bucket).Msg("created bucket")
	}
	if err := client.SetBucketPolicy(ctx, opts.Bucket, fmt.Sprintf(publicReadPolicy, opts.Bucket)); err != nil {
		logging.Warn().Err(err).Str("bucket", opts.Bucket).Msg("failed to set public read policy")
	}

	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	logging.Info().Str("endpoint", opts.Endpoint).Msg("connected to MinIO")

	return &MinioStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s/", scheme, opts.Endpoint, opts.Bucket),
	}, nil
}

func (s *MinioStore) Name() string { return "minio" }

func (s *MinioStore) Save(ctx context.Context, folder string, up Upload) (string, error) {
	up, ext, err := SniffImage(up)
	if err != nil {
		return "", err
	}
	name := objectName(folder, ext)
	_, err = s.client.PutObject(ctx, s.bucket, name, up.Body, up.Size,
		minio.PutObjectOptions{ContentType: up.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return s.baseURL + name, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	name, ok := s.objectFor(url)
	if !ok {
		return ErrForeignURL
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

func (s *MinioStore) Owns(url string) bool {
	_, ok := s.objectFor(url)
	return ok
}

func (s *MinioStore) objectFor(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || name == "" || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}
