package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"visitorku_backend/internals/features/visits/reconcile"
)

type RegistrationStoreSuite struct {
	suite.Suite
}

func TestRegistrationStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistrationStoreSuite))
}

func strPtr(v string) *string { return &v }

func (s *RegistrationStoreSuite) TestCleanupBlobsRemovesBothImages() {
	blobs := &fakeBlobs{}
	store := NewRegistrationStore(nil, blobs, reconcile.NewBus())

	store.cleanupBlobs(context.Background(), reconcile.Record{
		PictureURL:   strPtr("https://cdn.example.com/pictures/p.webp"),
		SignatureURL: strPtr("https://cdn.example.com/signatures/s.png"),
	})

	s.Equal([]string{
		"https://cdn.example.com/pictures/p.webp",
		"https://cdn.example.com/signatures/s.png",
	}, blobs.deleted)
}

func (s *RegistrationStoreSuite) TestCleanupBlobsSkipsMissingImages() {
	blobs := &fakeBlobs{}
	store := NewRegistrationStore(nil, blobs, reconcile.NewBus())

	store.cleanupBlobs(context.Background(), reconcile.Record{
		SignatureURL: strPtr(""),
	})
	s.Empty(blobs.deleted)
}

func (s *RegistrationStoreSuite) TestCleanupBlobsSwallowsFailures() {
	blobs := &fakeBlobs{err: errors.New("bucket unreachable")}
	store := NewRegistrationStore(nil, blobs, reconcile.NewBus())

	s.NotPanics(func() {
		store.cleanupBlobs(context.Background(), reconcile.Record{
			PictureURL: strPtr("https://cdn.example.com/pictures/p.webp"),
		})
	})
	s.Empty(blobs.deleted)
}

func (s *RegistrationStoreSuite) TestCleanupBlobsNilServiceIsNoop() {
	store := NewRegistrationStore(nil, nil, reconcile.NewBus())
	s.NotPanics(func() {
		store.cleanupBlobs(context.Background(), reconcile.Record{
			PictureURL: strPtr("https://cdn.example.com/pictures/p.webp"),
		})
	})
}
