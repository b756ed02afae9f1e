package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"visitorku_backend/internals/configs"
	"visitorku_backend/internals/features/visits/model"
	"visitorku_backend/internals/features/visits/reconcile"
	"visitorku_backend/internals/features/visits/wizard"
	"visitorku_backend/internals/helpers/civiltime"
	"visitorku_backend/internals/helpers/storage"
)

var (
	// ErrUpload: object-store failure; submission aborts, draft retained.
	ErrUpload = errors.New("image upload failed")
	// ErrPersist: record-store failure; submission aborts, draft retained.
	ErrPersist = errors.New("could not save registration")
)

// Notifier fires the staff-notification side effect. Failures are the
// notifier's problem: they must be logged and swallowed, never propagated.
type Notifier interface {
	NotifyStaff(rec reconcile.Record, staffEmail string)
}

// SubmitService maps a completed draft to a VisitorRegistration row:
// upload blobs, resolve the effective purpose, insert, publish the feed
// event, then fire-and-forget the staff mail.
type SubmitService struct {
	db     *gorm.DB
	blobs  storage.BlobService
	feed   reconcile.Feed
	notify Notifier // nil disables notifications
}

func NewSubmitService(db *gorm.DB, blobs storage.BlobService, feed reconcile.Feed, notify Notifier) *SubmitService {
	return &SubmitService{db: db, blobs: blobs, feed: feed, notify: notify}
}

// Submit is not idempotent and never retried automatically; on error the
// caller keeps the draft so the visitor can retry.
func (s *SubmitService) Submit(ctx context.Context, draft wizard.Draft) (uuid.UUID, error) {
	pictureURL, err := s.resolveImage(ctx, draft.Picture, "pictures", "photo.webp")
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	signatureURL, err := s.resolveImage(ctx, draft.Signature, "signatures", "signature.png")
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	peopleJSON, _ := json.Marshal(draft.People)
	addressJSON, _ := json.Marshal(draft.Address)

	rec := model.VisitorRegistrationModel{
		VisitorRegistrationName:           draft.VisitorName,
		VisitorRegistrationPhone:          draft.PhoneNumber,
		VisitorRegistrationNumberOfPeople: draft.NumberOfPeople,
		VisitorRegistrationPeople:         peopleJSON,
		VisitorRegistrationAddress:        addressJSON,
		VisitorRegistrationPurpose:        effectivePurpose(draft),
		VisitorRegistrationSchoolName:     configs.SchoolName,
		VisitorRegistrationStartTime:      civiltime.ToStored(draft.StartTime),
		VisitorRegistrationPictureURL:     pictureURL,
		VisitorRegistrationSignatureURL:   signatureURL,
	}
	if draft.EndTime != nil {
		stored := civiltime.ToStored(*draft.EndTime)
		rec.VisitorRegistrationEndTime = &stored
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		log.Printf("[ERROR] insert registration: %v", err)
		return uuid.Nil, ErrPersist
	}

	inserted := toRecord(rec)
	s.feed.Publish(reconcile.Event{Type: reconcile.EventInsert, ID: inserted.ID, New: &inserted})

	if s.notify != nil {
		staffEmail := ""
		if draft.Purpose == wizard.PurposeMeetingSchoolStaff {
			staffEmail = draft.StaffEmail
		}
		// fire-and-forget; NotifyStaff logs and swallows its own failures
		go s.notify.NotifyStaff(inserted, staffEmail)
	}

	return rec.VisitorRegistrationID, nil
}

// resolveImage uploads a staged blob, passes a URL string through, and
// persists null when absent.
func (s *SubmitService) resolveImage(ctx context.Context, ref wizard.ImageRef, dir, filename string) (*string, error) {
	switch {
	case ref.Blob != nil:
		url, err := s.blobs.UploadImage(ctx, dir, filename, ref.Blob.ContentType, ref.Blob.Data)
		if err != nil {
			return nil, err
		}
		return &url, nil
	case ref.URL != "":
		url := ref.URL
		return &url, nil
	default:
		return nil, nil
	}
}

// effectivePurpose persists the free-text description instead of the
// "other" tag when that option was chosen.
func effectivePurpose(d wizard.Draft) string {
	if d.Purpose == wizard.PurposeOther {
		return strings.TrimSpace(d.OtherPurpose)
	}
	return string(d.Purpose)
}

// toRecord mirrors dto.ToRecord without importing the dto package
// (controllers depend on dto; services stay below it).
func toRecord(m model.VisitorRegistrationModel) reconcile.Record {
	var people []wizard.Person
	_ = json.Unmarshal(m.VisitorRegistrationPeople, &people)
	var addr wizard.Address
	_ = json.Unmarshal(m.VisitorRegistrationAddress, &addr)

	return reconcile.Record{
		ID:             m.VisitorRegistrationID,
		VisitorName:    m.VisitorRegistrationName,
		PhoneNumber:    m.VisitorRegistrationPhone,
		NumberOfPeople: m.VisitorRegistrationNumberOfPeople,
		People:         people,
		Purpose:        m.VisitorRegistrationPurpose,
		Address:        addr,
		SchoolName:     m.VisitorRegistrationSchoolName,
		StartTime:      m.VisitorRegistrationStartTime,
		EndTime:        m.VisitorRegistrationEndTime,
		PictureURL:     m.VisitorRegistrationPictureURL,
		SignatureURL:   m.VisitorRegistrationSignatureURL,
		CreatedAt:      m.VisitorRegistrationCreatedAt,
	}
}
