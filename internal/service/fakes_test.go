package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubClock returns a fixed instant.
type stubClock struct {
	now time.Time
}

func (c stubClock) Now() time.Time { return c.now }

// fakeTxManager just runs the function; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeFolderRepo is an in-memory FolderRepository.
type fakeFolderRepo struct {
	folders map[int64]*models.Folder
	nextID  int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[int64]*models.Folder)}
}

// add seeds a folder, assigning id and uid like an insert would.
func (r *fakeFolderRepo) add(f *models.Folder) *models.Folder {
	r.nextID++
	f.ID = r.nextID
	f.UID = fmt.Sprintf("uid-%d", f.ID)
	r.folders[f.ID] = f
	return f
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	return f, nil
}

func (r *fakeFolderRepo) GetByUID(ctx context.Context, uid string) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.UID == uid {
			return f, nil
		}
	}
	return nil, fmt.Errorf("folder %s: %w", uid, domain.ErrNotFound)
}

func (r *fakeFolderRepo) Find(ctx context.Context, criteria *models.FolderCriteria) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, f := range r.folders {
		if matches(f, criteria) {
			out = append(out, f)
		}
	}

	// Deterministic order: id, unless path order was requested.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if strings.HasPrefix(criteria.Order, "path") {
		sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	}

	if criteria.Offset > 0 {
		if criteria.Offset >= len(out) {
			return nil, nil
		}
		out = out[criteria.Offset:]
	}
	if criteria.Limit > 0 && len(out) > criteria.Limit {
		out = out[:criteria.Limit]
	}
	return out, nil
}

func (r *fakeFolderRepo) FindOne(ctx context.Context, criteria *models.FolderCriteria) (*models.Folder, error) {
	criteria.Limit = 1
	out, err := r.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[len(out)-1], nil
}

func (r *fakeFolderRepo) Count(ctx context.Context, criteria *models.FolderCriteria) (int64, error) {
	out, err := r.Find(ctx, criteria)
	return int64(len(out)), err
}

func (r *fakeFolderRepo) Save(ctx context.Context, folder *models.Folder) error {
	if folder.ID == 0 {
		r.add(folder)
		return nil
	}
	if _, ok := r.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
	}
	r.folders[folder.ID] = folder
	return nil
}

func (r *fakeFolderRepo) DescendantsOf(ctx context.Context, folder *models.Folder) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, f := range r.folders {
		if f.ID == folder.ID || f.ParentID == nil {
			continue
		}
		if !sameVolume(f.VolumeID, folder.VolumeID) {
			continue
		}
		if strings.HasPrefix(f.Path, folder.Path) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *fakeFolderRepo) DeleteSubtree(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		folder, ok := r.folders[id]
		if !ok {
			return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		descendants, _ := r.DescendantsOf(ctx, folder)
		for _, d := range descendants {
			delete(r.folders, d.ID)
		}
		delete(r.folders, id)
	}
	return nil
}


func matches(f *models.Folder, c *models.FolderCriteria) bool {
	if len(c.ID) > 0 {
		found := false
		for _, id := range c.ID {
			if f.ID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if c.UID != nil && f.UID != *c.UID {
		return false
	}
	if c.VolumeID != nil {
		if c.VolumeID.Valid {
			if f.VolumeID == nil || *f.VolumeID != c.VolumeID.Int64 {
				return false
			}
		} else if f.VolumeID != nil {
			return false
		}
	}
	if c.ParentID != nil {
		if c.ParentID.Valid {
			if f.ParentID == nil || *f.ParentID != c.ParentID.Int64 {
				return false
			}
		} else if f.ParentID != nil {
			return false
		}
	}
	if c.HasParent != nil && *c.HasParent != (f.ParentID != nil) {
		return false
	}
	if c.Name != nil && f.Name != *c.Name {
		return false
	}
	if c.Path != nil && f.Path != *c.Path {
		return false
	}
	if c.PathPrefix != nil && !strings.HasPrefix(f.Path, *c.PathPrefix) {
		return false
	}
	return true
}

func sameVolume(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// fakeAssetRepo is an in-memory AssetRepository.
type fakeAssetRepo struct {
	assets  map[int64]*models.Asset
	deleted []int64
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[int64]*models.Asset)}
}

func (r *fakeAssetRepo) add(a *models.Asset) *models.Asset {
	r.assets[a.ID] = a
	return a
}

func (r *fakeAssetRepo) ListByFolders(ctx context.Context, folderIDs []int64) ([]*models.Asset, error) {
	ids := make(map[int64]bool, len(folderIDs))
	for _, id := range folderIDs {
		ids[id] = true
	}
	var out []*models.Asset
	for _, a := range r.assets {
		if ids[a.FolderID] && a.DateDeleted == nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssetRepo) ListFilenames(ctx context.Context, folderID int64, stem string) ([]string, error) {
	var out []string
	for _, a := range r.assets {
		if a.FolderID != folderID || a.DateDeleted != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(a.Filename), strings.ToLower(stem)) {
			out = append(out, a.Filename)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeAssetRepo) Delete(ctx context.Context, id int64) error {
	delete(r.assets, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeAdapter is an in-memory VolumeAdapter that records operations.
type fakeAdapter struct {
	dirs  map[string]bool
	files map[string]bool
	ops   []string

	createErr error
	renameErr error
	deleteErr error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		dirs:  make(map[string]bool),
		files: make(map[string]bool),
	}
}

func (a *fakeAdapter) CreateDirectory(ctx context.Context, path string) error {
	if a.createErr != nil {
		return a.createErr
	}
	a.ops = append(a.ops, "mkdir "+path)
	a.dirs[path] = true
	return nil
}

func (a *fakeAdapter) RenameDirectory(ctx context.Context, path, newName string) error {
	if a.renameErr != nil {
		return a.renameErr
	}
	a.ops = append(a.ops, "rename "+path+" -> "+newName)
	delete(a.dirs, path)
	parent := ""
	if i := strings.LastIndex(path, "/"); i >= 0 {
		parent = path[:i+1]
	}
	a.dirs[parent+newName] = true
	return nil
}

func (a *fakeAdapter) DeleteDirectory(ctx context.Context, path string) error {
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.ops = append(a.ops, "rmdir "+path)
	delete(a.dirs, path)
	return nil
}

func (a *fakeAdapter) FileExists(ctx context.Context, path string) (bool, error) {
	return a.files[path], nil
}

func (a *fakeAdapter) WriteFile(ctx context.Context, path string, r io.Reader) error {
	a.files[path] = true
	return nil
}

func (a *fakeAdapter) ReadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (a *fakeAdapter) DeleteFile(ctx context.Context, path string) error {
	a.ops = append(a.ops, "rm "+path)
	delete(a.files, path)
	return nil
}

// fakeRegistry maps volume ids to fake adapters.
type fakeRegistry struct {
	volumes  map[int64]*models.Volume
	adapters map[int64]storage.VolumeAdapter
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		volumes:  make(map[int64]*models.Volume),
		adapters: make(map[int64]storage.VolumeAdapter),
	}
}

func (r *fakeRegistry) addVolume(v *models.Volume, adapter storage.VolumeAdapter) {
	r.volumes[v.ID] = v
	r.adapters[v.ID] = adapter
}

func (r *fakeRegistry) Volume(id int64) (*models.Volume, error) {
	v, ok := r.volumes[id]
	if !ok {
		return nil, fmt.Errorf("volume %d: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (r *fakeRegistry) VolumeByUID(uid string) (*models.Volume, error) {
	for _, v := range r.volumes {
		if v.UID == uid {
			return v, nil
		}
	}
	return nil, fmt.Errorf("volume %s: %w", uid, domain.ErrNotFound)
}

func (r *fakeRegistry) AdapterFor(id int64) (storage.VolumeAdapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("volume %d: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (r *fakeRegistry) All() []*models.Volume {
	var out []*models.Volume
	for _, v := range r.volumes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
