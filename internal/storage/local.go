package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Local stores files on disk under BaseDir; they are served from the static
// /uploads mount.
type Local struct {
	BaseDir string
	BaseURL string // e.g. http://localhost:8080
}

func NewLocal(baseDir, baseURL string) *Local {
	return &Local{BaseDir: baseDir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Upload(ctx context.Context, folder, filename string, r io.Reader) (Result, error) {
	name := uuid.New().String()[:8] + "_" + sanitizeFilename(filename)
	rel := name
	if folder != "" {
		rel = filepath.Join(sanitizeFilename(folder), name)
	}

	abs := filepath.Join(l.BaseDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}

	f, err := os.Create(abs)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(abs)
		return Result{Success: false, Error: err.Error()}, err
	}

	return Result{
		Success:    true,
		Backend:    "local",
		Identifier: filepath.ToSlash(rel),
		URL:        fmt.Sprintf("%s/uploads/%s", l.BaseURL, filepath.ToSlash(rel)),
	}, nil
}

func (l *Local) Delete(ctx context.Context, identifier string) error {
	clean := filepath.Clean(identifier)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid identifier: %s", identifier)
	}
	return os.Remove(filepath.Join(l.BaseDir, clean))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return time.Now().Format("20060102150405")
	}
	return b.String()
}
