package postgres

import (
	"sync"

	"mosaic/internal/domain/models"
)

// FolderCache is the explicit read-through cache the folder repository
// owns, keyed by id and uid. It memoizes misses as well as hits: once a
// lookup comes back empty, repeated lookups are answered without a query
// until the cache is cleared. The persisted table stays the source of
// truth; the cache is advisory and scoped to a unit of work via Clear.
type FolderCache struct {
	mu    sync.RWMutex
	byID  map[int64]*models.Folder  // nil value = memoized miss
	byUID map[string]*models.Folder // nil value = memoized miss
}

// NewFolderCache creates an empty folder cache.
func NewFolderCache() *FolderCache {
	return &FolderCache{
		byID:  make(map[int64]*models.Folder),
		byUID: make(map[string]*models.Folder),
	}
}

// LookupID returns the cached folder for id. known reports whether the
// cache holds an entry at all; a known nil folder is a memoized miss.
func (c *FolderCache) LookupID(id int64) (folder *models.Folder, known bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	folder, known = c.byID[id]
	return folder, known
}

// LookupUID returns the cached folder for uid, with the same miss
// memoization as LookupID.
func (c *FolderCache) LookupUID(uid string) (folder *models.Folder, known bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	folder, known = c.byUID[uid]
	return folder, known
}

// StoreHit caches a folder under both keys, replacing any memoized miss.
func (c *FolderCache) StoreHit(folder *models.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[folder.ID] = folder
	if folder.UID != "" {
		c.byUID[folder.UID] = folder
	}
}

// StoreMissID memoizes the absence of a folder id.
func (c *FolderCache) StoreMissID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[id] = nil
}

// StoreMissUID memoizes the absence of a folder uid.
func (c *FolderCache) StoreMissUID(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUID[uid] = nil
}

// Evict drops a folder from both indexes, used after deletion.
func (c *FolderCache) Evict(folder *models.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, folder.ID)
	if folder.UID != "" {
		delete(c.byUID, folder.UID)
	}
}
