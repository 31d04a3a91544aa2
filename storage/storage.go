package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DocumentStore persists uploaded documents and returns the URL they are
// served from.
type DocumentStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

// DiskStore writes documents below Dir and serves them under URLPrefix.
type DiskStore struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewDiskStore(dir, urlPrefix string) *DiskStore {
	return &DiskStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), now: time.Now}
}

func (s *DiskStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitize(filename))
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}

func sanitize(filename string) string {
	name := filepath.Base(filename)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}
