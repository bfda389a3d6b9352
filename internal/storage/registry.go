package storage

import (
	"context"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	localvol "mosaic/internal/storage/local"
	s3vol "mosaic/internal/storage/s3"
)

// VolumeConfig declares one volume in the volumes file.
type VolumeConfig struct {
	ID   int64  `yaml:"id"`
	UID  string `yaml:"uid"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// local settings
	Path string `yaml:"path,omitempty"`

	// s3 settings
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// Validate checks the declaration before an adapter is built from it.
func (c VolumeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required, validation.Min(1)),
		validation.Field(&c.UID, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Type, validation.Required,
			validation.In(models.VolumeTypeLocal, models.VolumeTypeS3)),
		validation.Field(&c.Path,
			validation.Required.When(c.Type == models.VolumeTypeLocal)),
		validation.Field(&c.Bucket,
			validation.Required.When(c.Type == models.VolumeTypeS3)),
	)
}

type volumesFile struct {
	Volumes []VolumeConfig `yaml:"volumes"`
}

// Registry holds the configured volumes and the adapter backing each one.
type Registry struct {
	volumes  map[int64]*models.Volume
	byUID    map[string]*models.Volume
	adapters map[int64]VolumeAdapter
	ordered  []*models.Volume
}

// LoadRegistry reads the volumes file and builds an adapter per volume.
func LoadRegistry(ctx context.Context, path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read volumes file: %w", err)
	}

	var file volumesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse volumes file: %w", err)
	}

	return NewRegistry(ctx, file.Volumes)
}

// NewRegistry builds a registry from volume declarations.
func NewRegistry(ctx context.Context, configs []VolumeConfig) (*Registry, error) {
	r := &Registry{
		volumes:  make(map[int64]*models.Volume),
		byUID:    make(map[string]*models.Volume),
		adapters: make(map[int64]VolumeAdapter),
	}

	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: volume %q: %v", domain.ErrValidation, cfg.Name, err)
		}
		if _, dup := r.volumes[cfg.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate volume id %d", domain.ErrValidation, cfg.ID)
		}
		if _, dup := r.byUID[cfg.UID]; dup {
			return nil, fmt.Errorf("%w: duplicate volume uid %s", domain.ErrValidation, cfg.UID)
		}

		adapter, err := buildAdapter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", cfg.Name, err)
		}

		vol := &models.Volume{ID: cfg.ID, UID: cfg.UID, Name: cfg.Name, Type: cfg.Type}
		r.volumes[vol.ID] = vol
		r.byUID[vol.UID] = vol
		r.adapters[vol.ID] = adapter
		r.ordered = append(r.ordered, vol)
	}

	return r, nil
}

func buildAdapter(ctx context.Context, cfg VolumeConfig) (VolumeAdapter, error) {
	switch cfg.Type {
	case models.VolumeTypeLocal:
		return localvol.New(cfg.Path)
	case models.VolumeTypeS3:
		return s3vol.New(ctx, s3vol.Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			Prefix:    cfg.Prefix,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, fmt.Errorf("%w: unknown volume type %q", domain.ErrValidation, cfg.Type)
	}
}

// Volume returns the volume with the given id.
func (r *Registry) Volume(id int64) (*models.Volume, error) {
	vol, ok := r.volumes[id]
	if !ok {
		return nil, fmt.Errorf("volume %d: %w", id, domain.ErrNotFound)
	}
	return vol, nil
}

// VolumeByUID returns the volume with the given uid.
func (r *Registry) VolumeByUID(uid string) (*models.Volume, error) {
	vol, ok := r.byUID[uid]
	if !ok {
		return nil, fmt.Errorf("volume %s: %w", uid, domain.ErrNotFound)
	}
	return vol, nil
}

// AdapterFor returns the adapter backing the volume with the given id.
func (r *Registry) AdapterFor(id int64) (VolumeAdapter, error) {
	adapter, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("volume %d: %w", id, domain.ErrNotFound)
	}
	return adapter, nil
}

// All returns every configured volume in declaration order.
func (r *Registry) All() []*models.Volume {
	return r.ordered
}
