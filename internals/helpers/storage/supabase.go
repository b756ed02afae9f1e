// file: internals/helpers/storage/supabase.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sanitizeFilename strips everything except letters, digits, dot, dash, underscore
func sanitizeFilename(filename string) string {
	re := regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)
	return re.ReplaceAllString(filename, "_")
}

// GenerateUniqueFilename builds a timestamp-prefixed, collision-resistant
// object name under folder.
func GenerateUniqueFilename(folder, originalFilename string) string {
	timestamp := time.Now().Format("20060102150405")
	uuidStr := uuid.New().String()
	safeFilename := sanitizeFilename(originalFilename)
	return fmt.Sprintf("%s/%s-%s-%s", folder, timestamp, uuidStr, safeFilename)
}

// UploadToSupabase PUTs data into a Supabase Storage bucket.
func UploadToSupabase(ctx context.Context, bucket, filename, contentType string, data []byte) error {
	supabaseURL := os.Getenv("SUPABASE_PROJECT_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_PROJECT_URL or SUPABASE_SERVICE_ROLE_KEY is not set")
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", supabaseURL, bucket, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+supabaseKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("send upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PublicURL resolves the public URL for an uploaded object.
func PublicURL(bucket, filename string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		os.Getenv("SUPABASE_PROJECT_URL"),
		bucket,
		url.PathEscape(filename),
	)
}

// DeleteFromSupabase removes an object from a bucket.
func DeleteFromSupabase(ctx context.Context, bucket, path string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s",
		os.Getenv("SUPABASE_PROJECT_URL"), bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("SUPABASE_SERVICE_ROLE_KEY"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ExtractSupabasePath splits a public URL back into bucket + object path.
func ExtractSupabasePath(fullURL string) (bucket string, path string, err error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return "", "", err
	}

	parts := strings.SplitN(u.Path, "/object/public/", 2)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("not a Supabase public object url")
	}

	pathParts := strings.SplitN(parts[1], "/", 2)
	if len(pathParts) < 2 {
		return "", "", fmt.Errorf("cannot extract bucket and path")
	}

	return pathParts[0], pathParts[1], nil
}
