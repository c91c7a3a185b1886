package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/metrics"
	"github.com/arzan03/CampusKart/internal/storage"
	"github.com/arzan03/CampusKart/internal/utils"
)

const deleteWorkers = 4

// imageSet stores and removes images through the configured ImageStore.
type imageSet struct {
	store    ImageStore
	maxSize  int64
	maxCount int
}

func (m *imageSet) validate(uploads []storage.Upload) error {
	if m.maxCount > 0 && len(uploads) > m.maxCount {
		return fmt.Errorf("%w: at most %d allowed", ErrTooManyImages, m.maxCount)
	}
	for _, up := range uploads {
		switch err := storage.ValidateImage(up, m.maxSize); {
		case errors.Is(err, storage.ErrNotImage):
			return ErrInvalidImage
		case errors.Is(err, storage.ErrImageTooLarge):
			return ErrImageTooLarge
		}
	}
	return nil
}

// saveAll stores uploads in parallel. If any upload fails the ones that
// succeeded are removed again and the first error is returned.
func (m *imageSet) saveAll(ctx context.Context, folder string, uploads []storage.Upload) ([]string, error) {
	if err := m.validate(uploads); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return []string{}, nil
	}

	tasks := make([]utils.ParallelTask[string], len(uploads))
	for i, up := range uploads {
		tasks[i] = func() (string, error) {
			return m.store.Save(ctx, folder, up)
		}
	}
	urls, errs := utils.RunParallelTasks(tasks)

	if err := utils.JoinErrors(errs); err != nil {
		stored := make([]string, 0, len(urls))
		for i, u := range urls {
			if errs[i] == nil && u != "" {
				stored = append(stored, u)
			}
		}
		m.deleteAll(ctx, stored)
		if errors.Is(err, storage.ErrNotImage) {
			return nil, ErrInvalidImage
		}
		return nil, fmt.Errorf("store images: %w", err)
	}

	metrics.ImagesStored.WithLabelValues(m.store.Name(), folder).Add(float64(len(urls)))
	return urls, nil
}

func (m *imageSet) save(ctx context.Context, folder string, up storage.Upload) (string, error) {
	urls, err := m.saveAll(ctx, folder, []storage.Upload{up})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// deleteAll removes images best-effort. URLs from another store are skipped.
func (m *imageSet) deleteAll(ctx context.Context, urls []string) {
	ctx = context.WithoutCancel(ctx)
	utils.ForEach(urls, deleteWorkers, func(url string) {
		if url == "" || !m.store.Owns(url) {
			return
		}
		if err := m.store.Delete(ctx, url); err != nil {
			logging.Warn().Err(err).Str("url", url).Str("driver", m.store.Name()).Msg("failed to delete image")
			return
		}
		metrics.ImagesDeleted.WithLabelValues(m.store.Name()).Inc()
	})
}
