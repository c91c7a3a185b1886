package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "")
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(root, FolderProducts))
	assert.DirExists(t, filepath.Join(root, FolderProfiles))

	url, err := store.Save(context.Background(), FolderProducts, Upload{
		Filename:    "Lamp.JPG",
		ContentType: "image/jpeg",
		Size:        int64(len(jpegHeader)),
		Body:        bytes.NewReader(jpegHeader),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.True(t, store.Owns(url))

	path := filepath.Join(root, strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)

	require.NoError(t, store.Delete(context.Background(), url))
	assert.NoFileExists(t, path)

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(context.Background(), url))
}

func TestLocalStoreWithBaseURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "https://api.campuskart.test/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), FolderProfiles, Upload{
		Filename: "me.png", ContentType: "image/png", Body: bytes.NewReader(pngHeader),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://api.campuskart.test/uploads/profiles/"))
	assert.True(t, store.Owns(url))
	assert.False(t, store.Owns("/uploads/profiles/me.png"))
}

func TestLocalStoreNamesFilesByDetectedType(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "")
	require.NoError(t, err)

	t.Run("script declared as png", func(t *testing.T) {
		_, err := store.Save(context.Background(), FolderProducts, Upload{
			Filename:    "x.html",
			ContentType: "image/png",
			Body:        strings.NewReader("<html><script>alert(document.cookie)</script></html>"),
		})
		assert.ErrorIs(t, err, ErrNotImage)

		entries, err := os.ReadDir(filepath.Join(root, FolderProducts))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("png with html name", func(t *testing.T) {
		url, err := store.Save(context.Background(), FolderProducts, Upload{
			Filename:    "x.html",
			ContentType: "text/html",
			Body:        bytes.NewReader(pngHeader),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(url, ".png"), url)
	})

	t.Run("svg is not accepted", func(t *testing.T) {
		_, err := store.Save(context.Background(), FolderProfiles, Upload{
			Filename:    "me.svg",
			ContentType: "image/svg+xml",
			Body:        strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"></svg>`),
		})
		assert.ErrorIs(t, err, ErrNotImage)
	})
}

func TestSniffImageReplaysBody(t *testing.T) {
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0xAB}, 2048)...)
	up, ext, err := SniffImage(Upload{Filename: "a.bin", ContentType: "application/octet-stream", Body: bytes.NewReader(body)})
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
	assert.Equal(t, "image/png", up.ContentType)

	var got bytes.Buffer
	_, err = got.ReadFrom(up.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got.Bytes())

	_, _, err = SniffImage(Upload{Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLocalStoreRejectsForeignURLs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	for _, url := range []string{
		"https://res.cloudinary.com/demo/image/upload/v1/campuskart/products/a.jpg",
		"/uploads/",
		"/uploads/../../etc/passwd",
		"/static/a.jpg",
	} {
		assert.False(t, store.Owns(url), url)
		assert.ErrorIs(t, store.Delete(context.Background(), url), ErrForeignURL, url)
	}
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(Upload{ContentType: "image/webp", Size: 10}, 100))
	assert.ErrorIs(t, ValidateImage(Upload{ContentType: "application/pdf", Size: 10}, 100), ErrNotImage)
	assert.ErrorIs(t, ValidateImage(Upload{ContentType: "image/png", Size: 101}, 100), ErrImageTooLarge)
}

func TestCloudinaryPublicID(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		owns bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/campuskart/products/abc123.jpg", "campuskart/products/abc123", true},
		{"https://res.cloudinary.com/demo/image/upload/campuskart/profiles/me.png", "campuskart/profiles/me", true},
		{"https://example.com/image/upload/v1/a.jpg", "", false},
		{"https://res.cloudinary.com/demo/image/upload/", "", false},
		{"/uploads/products/a.jpg", "", false},
	}
	for _, tt := range tests {
		id, ok := cloudinaryPublicID(tt.url)
		assert.Equal(t, tt.owns, ok, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
	}
}

func TestMinioObjectFor(t *testing.T) {
	store := &MinioStore{bucket: "campuskart", baseURL: "http://localhost:9000/campuskart/"}

	name, ok := store.objectFor("http://localhost:9000/campuskart/products/1-ab.jpg")
	assert.True(t, ok)
	assert.Equal(t, "products/1-ab.jpg", name)

	_, ok = store.objectFor("http://localhost:9000/other/products/1-ab.jpg")
	assert.False(t, ok)
	_, ok = store.objectFor("http://localhost:9000/campuskart/../secrets")
	assert.False(t, ok)
}
