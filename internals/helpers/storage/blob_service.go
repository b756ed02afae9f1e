// file: internals/helpers/storage/blob_service.go
package storage

import (
	"context"
	"os"
	"strings"
)

/*
BlobService is the uniform upload facade the controllers and the submission
pipeline depend on. The production implementation talks to Supabase Storage;
tests swap in a fake.
*/
type BlobService interface {
	// UploadImage stores data under a timestamp-prefixed name in dir and
	// returns the public URL.
	UploadImage(ctx context.Context, dir, filename, contentType string, data []byte) (publicURL string, err error)

	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

type SupabaseBlobService struct {
	bucket string
}

// NewSupabaseBlobServiceFromEnv reads the bucket name from ENV
// (STORAGE_BUCKET, default "registrations").
func NewSupabaseBlobServiceFromEnv() *SupabaseBlobService {
	bucket := strings.TrimSpace(os.Getenv("STORAGE_BUCKET"))
	if bucket == "" {
		bucket = "registrations"
	}
	return &SupabaseBlobService{bucket: bucket}
}

func (s *SupabaseBlobService) UploadImage(ctx context.Context, dir, filename, contentType string, data []byte) (string, error) {
	objectName := GenerateUniqueFilename(dir, filename)
	if err := UploadToSupabase(ctx, s.bucket, objectName, contentType, data); err != nil {
		return "", err
	}
	return PublicURL(s.bucket, objectName), nil
}

func (s *SupabaseBlobService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	bucket, path, err := ExtractSupabasePath(publicURL)
	if err != nil {
		return err
	}
	return DeleteFromSupabase(ctx, bucket, path)
}
