package storage

import (
	"bytes"
	"context"
	"io"
	"log"
)

// Fallback tries the remote store first and degrades to the local one when the
// remote is unreachable, so an upload never fails a request outright.
type Fallback struct {
	Remote Store
	Local  Store
}

func NewFallback(remote, local Store) *Fallback {
	return &Fallback{Remote: remote, Local: local}
}

func (f *Fallback) Upload(ctx context.Context, folder, filename string, r io.Reader) (Result, error) {
	// Buffer the payload: if the remote fails mid-stream the reader is spent.
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}

	res, err := f.Remote.Upload(ctx, folder, filename, bytes.NewReader(data))
	if err == nil {
		return res, nil
	}
	log.Printf("remote upload failed, falling back to local: %v", err)

	return f.Local.Upload(ctx, folder, filename, bytes.NewReader(data))
}

func (f *Fallback) Delete(ctx context.Context, identifier string) error {
	if err := f.Remote.Delete(ctx, identifier); err == nil {
		return nil
	}
	return f.Local.Delete(ctx, identifier)
}
