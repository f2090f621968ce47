package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type stubStore struct {
	uploadErr error
	deleteErr error
	lastBody  string
	deleted   []string
}

func (s *stubStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (Result, error) {
	data, _ := io.ReadAll(r)
	s.lastBody = string(data)
	if s.uploadErr != nil {
		return Result{Success: false, Error: s.uploadErr.Error()}, s.uploadErr
	}
	return Result{Success: true, Backend: "stub", Identifier: folder + "/" + filename}, nil
}

func (s *stubStore) Delete(ctx context.Context, identifier string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, identifier)
	return nil
}

func TestFallbackPrefersRemote(t *testing.T) {
	remote := &stubStore{}
	local := &stubStore{}
	f := NewFallback(remote, local)

	res, err := f.Upload(context.Background(), "docs", "a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Backend != "stub" || remote.lastBody != "hello" {
		t.Errorf("remote should have served the upload: %+v", res)
	}
	if local.lastBody != "" {
		t.Errorf("local must not be touched when the remote succeeds")
	}
}

func TestFallbackDegradesToLocal(t *testing.T) {
	remote := &stubStore{uploadErr: errors.New("bucket unreachable")}
	local := &stubStore{}
	f := NewFallback(remote, local)

	res, err := f.Upload(context.Background(), "docs", "a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload should succeed via local: %v", err)
	}
	if !res.Success {
		t.Errorf("expected success from local fallback: %+v", res)
	}
	// The remote consumed the stream; local must still get the full payload.
	if local.lastBody != "hello" {
		t.Errorf("local got %q, want full payload", local.lastBody)
	}
}

func TestFallbackDelete(t *testing.T) {
	remote := &stubStore{deleteErr: errors.New("gone away")}
	local := &stubStore{}
	f := NewFallback(remote, local)

	if err := f.Delete(context.Background(), "docs/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(local.deleted) != 1 || local.deleted[0] != "docs/a.txt" {
		t.Errorf("delete should fall through to local, got %v", local.deleted)
	}
}
