// Package local implements a VolumeAdapter over a directory on local disk.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Adapter stores volume contents under a root directory on local disk.
type Adapter struct {
	root string
}

// New creates a local adapter rooted at dir, creating the root if needed.
func New(dir string) (*Adapter, error) {
	if dir == "" {
		return nil, fmt.Errorf("local adapter: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local adapter: create root: %w", err)
	}
	return &Adapter{root: dir}, nil
}

// abs resolves a volume-relative path under the root, rejecting escapes.
func (a *Adapter) abs(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("local adapter: path %q escapes volume root", path)
	}
	return filepath.Join(a.root, cleaned), nil
}

// CreateDirectory creates the directory and any missing parents. MkdirAll
// keeps this idempotent.
func (a *Adapter) CreateDirectory(ctx context.Context, path string) error {
	target, err := a.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// RenameDirectory renames the directory at path to newName within the same
// parent.
func (a *Adapter) RenameDirectory(ctx context.Context, path, newName string) error {
	oldAbs, err := a.abs(path)
	if err != nil {
		return err
	}
	newAbs := filepath.Join(filepath.Dir(oldAbs), newName)
	if _, err := os.Stat(oldAbs); os.IsNotExist(err) {
		return fmt.Errorf("rename directory %s: %w", path, fs.ErrNotExist)
	}
	if _, err := os.Stat(newAbs); err == nil {
		return fmt.Errorf("rename directory %s to %s: %w", path, newName, fs.ErrExist)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("rename directory %s: %w", path, err)
	}
	return nil
}

// DeleteDirectory removes the directory and everything under it.
func (a *Adapter) DeleteDirectory(ctx context.Context, path string) error {
	target, err := a.abs(path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("delete directory %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether a regular file exists at path.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	target, err := a.abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// WriteFile stores the contents of r at path, creating parent directories.
func (a *Adapter) WriteFile(ctx context.Context, path string, r io.Reader) error {
	target, err := a.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile opens the file at path for reading.
func (a *Adapter) ReadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	target, err := a.abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// DeleteFile removes the file at path.
func (a *Adapter) DeleteFile(ctx context.Context, path string) error {
	target, err := a.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, fs.ErrNotExist)
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
