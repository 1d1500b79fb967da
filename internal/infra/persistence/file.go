package persistence

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileSuffix = ".json"

// FileMedium is the persistent byte-string medium: one JSON document per
// root entry under a directory. Root-entry names are percent-escaped so
// any name maps to a valid file name. Writes go through a uniquely named
// temp file and a rename, so a crashed write never leaves a truncated
// document behind.
type FileMedium struct {
	dir string
}

// NewFileMedium creates the medium rooted at dir, creating it if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}
	return &FileMedium{dir: dir}, nil
}

// Load reads the document stored under root.
func (f *FileMedium) Load(_ context.Context, root string) (string, bool, error) {
	data, err := os.ReadFile(f.path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Store writes the document under root atomically.
func (f *FileMedium) Store(_ context.Context, root string, doc string) error {
	target := f.path(root)
	tmp := target + ".tmp-" + uuid.NewString()

	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Remove deletes the document under root. Absent entries are a no-op.
func (f *FileMedium) Remove(_ context.Context, root string) error {
	err := os.Remove(f.path(root))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys lists all root-entry names in directory order.
func (f *FileMedium) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		root, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue
		}
		keys = append(keys, root)
	}
	return keys, nil
}

// Clear removes every stored document in the directory.
func (f *FileMedium) Clear(ctx context.Context) error {
	keys, err := f.Keys(ctx)
	if err != nil {
		return err
	}
	for _, root := range keys {
		if err := f.Remove(ctx, root); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileMedium) path(root string) string {
	return filepath.Join(f.dir, url.PathEscape(root)+fileSuffix)
}
