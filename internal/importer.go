package internal

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Importer runs pasted text through the extractor and appends the result
// to the store.
type Importer struct {
	Extractor Extractor
	Store     *Store
	Logger    *zap.Logger
	// NewID assigns record ids. Defaults to uuid.NewString.
	NewID func() string
}

// Import returns the records that were added. When extraction fails the
// store is not touched. A *StorageWriteError means the records were added
// for this session but not saved.
func (im *Importer) Import(ctx context.Context, text string) ([]Subscription, error) {
	log := im.logger()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	detected, err := im.Extractor.DetectSubscriptions(ctx, text)
	if err != nil {
		return nil, err
	}
	log.Debug("extraction returned", zap.Int("count", len(detected)), zap.Int("input_bytes", len(text)))
	return im.ImportDetected(ctx, detected)
}

// ImportDetected assigns ids and statuses to already extracted items and
// appends them to the store.
func (im *Importer) ImportDetected(ctx context.Context, detected []DetectedSubscription) ([]Subscription, error) {
	newID := im.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	records := NewRecords(detected, newID)
	if err := im.Store.AddMany(ctx, records); err != nil {
		if IsStorageWriteError(err) {
			return records, err
		}
		return nil, err
	}
	im.logger().Info("subscriptions imported", zap.Int("count", len(records)))
	return records, nil
}

func (im *Importer) logger() *zap.Logger {
	if im.Logger == nil {
		return zap.NewNop()
	}
	return im.Logger
}
