package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arzan03/CampusKart/internal/logging"
)

// URLPrefix is where the local upload directory is served.
const URLPrefix = "/uploads/"

// LocalStore writes images under a directory served at /uploads.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root and the product/profile subdirectories.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	for _, dir := range []string{root, filepath.Join(root, FolderProducts), filepath.Join(root, FolderProfiles)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
		}
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Name() string { return "local" }

// Root is the directory to serve statically.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(_ context.Context, folder string, up Upload) (string, error) {
	up, ext, err := SniffImage(up)
	if err != nil {
		return "", err
	}
	name := objectName(folder, ext)
	dst := filepath.Join(s.root, filepath.FromSlash(name))

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", dst, err)
	}

	return s.baseURL + URLPrefix + name, nil
}

// Delete removes the file behind url. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	p, err := s.pathFor(url)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	logging.Debug().Str("path", p).Msg("deleted image")
	return nil
}

func (s *LocalStore) Owns(url string) bool {
	_, err := s.pathFor(url)
	return err == nil
}

// pathFor maps a URL from Save back to a path inside root.
func (s *LocalStore) pathFor(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, s.baseURL+URLPrefix)
	if !ok || rel == "" {
		return "", ErrForeignURL
	}
	if path.Clean(rel) != rel || strings.HasPrefix(rel, "..") || path.IsAbs(rel) {
		return "", ErrForeignURL
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}
