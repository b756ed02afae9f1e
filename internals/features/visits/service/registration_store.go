package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"visitorku_backend/internals/features/visits/model"
	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/helpers/storage"
)

// RegistrationStore is the admin-side persistence gateway. Every mutation
// publishes its change-feed event so open dashboards converge without a
// refresh.
type RegistrationStore struct {
	db    *gorm.DB
	blobs storage.BlobService
	feed  reconcile.Feed
}

func NewRegistrationStore(db *gorm.DB, blobs storage.BlobService, feed reconcile.Feed) *RegistrationStore {
	return &RegistrationStore{db: db, blobs: blobs, feed: feed}
}

// LoadAll returns every registration ordered newest-first, the dashboard's
// initial dataset.
func (s *RegistrationStore) LoadAll(ctx context.Context) ([]reconcile.Record, error) {
	var rows []model.VisitorRegistrationModel
	if err := s.db.WithContext(ctx).
		Order("visitor_registration_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.Record, 0, len(rows))
	for _, m := range rows {
		out = append(out, toRecord(m))
	}
	return out, nil
}

// SaveEndTime writes the stored civil end time for one registration.
// Implements reconcile.EndTimeSaver.
func (s *RegistrationStore) SaveEndTime(ctx context.Context, id uuid.UUID, stored string) error {
	res := s.db.WithContext(ctx).
		Model(&model.VisitorRegistrationModel{}).
		Where("visitor_registration_id = ?", id).
		Update("visitor_registration_end_time", stored)
	if res.Error != nil {
		log.Printf("[ERROR] update end time %s: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return reconcile.ErrNotFound
	}
	s.feed.Publish(reconcile.Event{
		Type:  reconcile.EventUpdate,
		ID:    id,
		Patch: &reconcile.Patch{EndTime: &stored},
	})
	return nil
}

// Delete removes one registration. The record is fetched first so the delete
// event can carry the old row for subscribers that need it.
func (s *RegistrationStore) Delete(ctx context.Context, id uuid.UUID) error {
	var m model.VisitorRegistrationModel
	if err := s.db.WithContext(ctx).
		First(&m, "visitor_registration_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return reconcile.ErrNotFound
		}
		return err
	}
	if err := s.db.WithContext(ctx).
		Delete(&model.VisitorRegistrationModel{}, "visitor_registration_id = ?", id).Error; err != nil {
		log.Printf("[ERROR] delete registration %s: %v", id, err)
		return err
	}
	old := toRecord(m)
	s.feed.Publish(reconcile.Event{Type: reconcile.EventDelete, ID: id, Old: &old})
	s.cleanupBlobs(ctx, old)
	return nil
}

// cleanupBlobs removes the registration's stored images from the bucket.
// The row is already gone, so failures are logged and swallowed rather than
// failing the delete.
func (s *RegistrationStore) cleanupBlobs(ctx context.Context, rec reconcile.Record) {
	if s.blobs == nil {
		return
	}
	for _, url := range []*string{rec.PictureURL, rec.SignatureURL} {
		if url == nil || *url == "" {
			continue
		}
		if err := s.blobs.DeleteByPublicURL(ctx, *url); err != nil {
			log.Printf("[WARN] delete blob %s: %v", *url, err)
		}
	}
}
