// Package storage defines the capability interface over physical storage
// backends and the registry that maps configured volumes to adapters.
package storage

import (
	"context"
	"io"

	"mosaic/internal/domain/models"
)

// VolumeAdapter is the capability interface over a storage backend. All
// paths are volume-relative, slash-separated, without a leading slash.
//
// Adapters translate backend-specific failures into the io/fs sentinels:
// fs.ErrNotExist for missing files or directories, fs.ErrExist where an
// existing target is a real failure (renames). CreateDirectory never fails
// on an existing directory; creation is idempotent.
type VolumeAdapter interface {
	// CreateDirectory creates the directory and any missing parents.
	// Creating an already-existing directory is not an error.
	CreateDirectory(ctx context.Context, path string) error

	// RenameDirectory renames the directory at path to newName within the
	// same parent.
	RenameDirectory(ctx context.Context, path, newName string) error

	// DeleteDirectory removes the directory and everything under it.
	DeleteDirectory(ctx context.Context, path string) error

	// FileExists reports whether a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// WriteFile stores the contents of r at path, replacing any existing
	// file.
	WriteFile(ctx context.Context, path string, r io.Reader) error

	// ReadFile opens the file at path for reading. The caller closes it.
	ReadFile(ctx context.Context, path string) (io.ReadCloser, error)

	// DeleteFile removes the file at path. Deleting a missing file reports
	// fs.ErrNotExist.
	DeleteFile(ctx context.Context, path string) error
}

// VolumeRegistry resolves configured volumes and their adapters. Services
// depend on this interface so tests can substitute fakes.
type VolumeRegistry interface {
	// Volume returns the volume with the given id.
	Volume(id int64) (*models.Volume, error)

	// VolumeByUID returns the volume with the given uid.
	VolumeByUID(uid string) (*models.Volume, error)

	// AdapterFor returns the adapter backing the volume with the given id.
	AdapterFor(id int64) (VolumeAdapter, error)

	// All returns every configured volume.
	All() []*models.Volume
}
