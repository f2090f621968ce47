package storage

import (
	"context"
	"io"
)

// Result mirrors the upload response shape the API returns to clients.
type Result struct {
	Success    bool   `json:"success"`
	Backend    string `json:"backend"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
	Error      string `json:"error,omitempty"`
}

// Store is the blob-store capability. Implementations: Local (disk) and
// Supabase (remote bucket). Fallback composes the two.
type Store interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (Result, error)
	Delete(ctx context.Context, identifier string) error
}
