// Package storage keeps shortlisted CV files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for file names that would escape the root.
var ErrInvalidName = errors.New("invalid file name")

// Store writes CV files and exported copies.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Copy(ctx context.Context, src, name string) (string, error)
	Remove(ctx context.Context, path string) error
}

// FS stores files under a single root directory.
type FS struct {
	root string
	perm os.FileMode
}

// NewFS creates a store rooted at dir. The directory is created on first write.
func NewFS(dir string) *FS {
	return &FS{root: filepath.Clean(dir), perm: 0o644}
}

// Save writes data to <root>/<name> and returns the full path. The file is
// written to a temporary name first and renamed into place.
func (f *FS) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := f.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", f.root, err)
	}

	tmp, err := os.CreateTemp(f.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), f.perm); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return dst, nil
}

// Copy duplicates src to <root>/<name> and returns the new path.
func (f *FS) Copy(ctx context.Context, src, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	return f.Save(ctx, name, data)
}

// Remove deletes a file written by Save. Paths outside the root are refused
// and a missing file is not an error.
func (f *FS) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filepath.Dir(filepath.Clean(path)) != f.root {
		return fmt.Errorf("%w: %q", ErrInvalidName, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (f *FS) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(f.root, name), nil
}
