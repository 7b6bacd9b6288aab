// Package inventory is the service layer between transports and the store.
// It validates typed requests, enforces the asset lifecycle and the
// assignment rules, and records every committed change in the activity log.
package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/activity"
	"github.com/erazemk/assetdesk/internal/store"
)

// ImageStore is the part of the image storage the service needs.
type ImageStore interface {
	Exists(name string) bool
	Remove(name string) error
}

// Service implements the inventory operations. Every mutating method takes
// the acting user explicitly.
type Service struct {
	DB       *sql.DB
	Log      *zap.Logger
	Activity *activity.Recorder
	Images   ImageStore
}

// New returns a Service. images may be nil when uploads are disabled.
func New(db *sql.DB, images ImageStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:       db,
		Log:      log,
		Activity: activity.New(db, log),
		Images:   images,
	}
}

// inTx runs fn in a transaction. With a single pooled connection, fn must
// only use tx.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// removeImage deletes an image once no asset references it. Failures are
// logged; the row change has already been committed.
func (s *Service) removeImage(ctx context.Context, name string) {
	if s.Images == nil || name == "" {
		return
	}
	n, err := store.CountAssetsWithImage(ctx, s.DB, name)
	if err != nil {
		s.Log.Warn("checking image references failed", zap.String("image", name), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}
	if err := s.Images.Remove(name); err != nil {
		s.Log.Warn("removing image failed", zap.String("image", name), zap.Error(err))
	}
}

// uniqueIDs drops duplicates, keeping the first occurrence.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
