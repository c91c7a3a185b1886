package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/storage"
)

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm)
}

// formUploads opens every file sent under field. The returned closer must be
// called once the uploads have been consumed.
func formUploads(c *fiber.Ctx, field string) ([]storage.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
	}

	headers := form.File[field]
	uploads := make([]storage.Upload, 0, len(headers))
	files := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, uploadFrom(fh, f))
	}
	return uploads, closeAll, nil
}

// formUpload returns the single file under field, or nil.
func formUpload(c *fiber.Ctx, field string) (*storage.Upload, func(), error) {
	uploads, closer, err := formUploads(c, field)
	if err != nil || len(uploads) == 0 {
		return nil, closer, err
	}
	return &uploads[0], closer, nil
}

func uploadFrom(fh *multipart.FileHeader, body io.Reader) storage.Upload {
	return storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        body,
	}
}

// formString returns a pointer to a trimmed non-empty form value, or nil.
func formString(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
