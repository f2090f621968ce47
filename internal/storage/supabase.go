package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
)

// Supabase uploads objects to a Supabase storage bucket over its REST API.
type Supabase struct {
	Client  *http.Client
	BaseURL string // e.g. https://xyz.supabase.co
	APIKey  string
	Bucket  string
}

func NewSupabase(baseURL, apiKey, bucket string) *Supabase {
	return &Supabase{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
		Bucket:  bucket,
	}
}

func (s *Supabase) objectPath(folder, filename string) string {
	name := uuid.New().String()[:8] + "_" + sanitizeFilename(filename)
	if folder == "" {
		return name
	}
	return path.Join(sanitizeFilename(folder), name)
}

func (s *Supabase) Upload(ctx context.Context, folder, filename string, r io.Reader) (Result, error) {
	object := s.objectPath(folder, filename)
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, s.Bucket, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.Client.Do(req)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("supabase upload failed: status %d", resp.StatusCode)
		return Result{Success: false, Error: err.Error()}, err
	}

	return Result{
		Success:    true,
		Backend:    "supabase",
		Identifier: object,
		URL:        fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.BaseURL, s.Bucket, object),
	}, nil
}

func (s *Supabase) Delete(ctx context.Context, identifier string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, s.Bucket, identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("supabase delete failed: status %d", resp.StatusCode)
	}
	return nil
}
