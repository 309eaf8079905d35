package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/store"
)

// SpaceMetadata is what the API exposes about a space.
type SpaceMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MemoryProfile defines the memory optimization strategy
type MemoryProfile string

const (
	MemoryProfileDefault MemoryProfile = "default"
	MemoryProfileLow     MemoryProfile = "low"
	MaxOpenStores                      = 10
	SpaceListTTL                       = 1 * time.Minute
	metadataFile                       = "metadata.json"
)

// StoreManager keeps one Badger store open per space, closing the least
// recently used when more than MaxOpenStores are open.
type StoreManager struct {
	baseDir       string
	spaces        *lru.Cache[string, *store.Store]
	mu            sync.RWMutex
	profile       MemoryProfile
	readOnly      bool
	cachedList    []SpaceMetadata
	lastListBuild time.Time
}

// NewStoreManager creates a StoreManager rooted at baseDir. A read-only
// manager never creates space directories.
func NewStoreManager(baseDir string, profile MemoryProfile, readOnly bool) *StoreManager {
	return newStoreManager(baseDir, profile, readOnly, MaxOpenStores)
}

func newStoreManager(baseDir string, profile MemoryProfile, readOnly bool, maxOpen int) *StoreManager {
	// Create LRU cache with eviction callback to close stores
	cache, _ := lru.NewWithEvict[string, *store.Store](maxOpen, func(_ string, s *store.Store) {
		_ = s.Close()
	})
	return &StoreManager{
		baseDir:  baseDir,
		spaces:   cache,
		profile:  profile,
		readOnly: readOnly,
	}
}

// GetStore returns the store of spaceID, opening it if necessary.
func (sm *StoreManager) GetStore(spaceID string) (*store.Store, error) {
	if spaceID == "" || spaceID != filepath.Base(spaceID) || spaceID == "." || spaceID == ".." {
		return nil, fmt.Errorf("%w: bad space id %q", errors.ErrInvalidInput, spaceID)
	}
	if s, ok := sm.spaces.Get(spaceID); ok {
		return s, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double-check under lock
	if s, ok := sm.spaces.Get(spaceID); ok {
		return s, nil
	}

	spaceDir := filepath.Join(sm.baseDir, spaceID)
	if _, err := os.Stat(spaceDir); os.IsNotExist(err) {
		if sm.readOnly {
			return nil, fmt.Errorf("%w: space %s", errors.ErrNotFound, spaceID)
		}
		if err := os.MkdirAll(spaceDir, 0o755); err != nil {
			return nil, err
		}
		sm.cachedList = nil
	}

	cfg := store.DefaultConfig(spaceDir)
	cfg.ReadOnly = sm.readOnly
	// The server inspects stores while a publish may hold the lock.
	cfg.BypassLockGuard = sm.readOnly
	if sm.profile == MemoryProfileLow {
		cfg.BlockCacheSize = 16 << 20
		cfg.IndexCacheSize = 8 << 20
		cfg.Profile = store.ProfileLowMem
	}

	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store for space %s: %w", spaceID, err)
	}
	sm.spaces.Add(spaceID, s)
	return s, nil
}

// SetMetadata writes the display metadata of a space.
func (sm *StoreManager) SetMetadata(meta SpaceMetadata) error {
	if sm.readOnly {
		return fmt.Errorf("%w: manager is read-only", errors.ErrInvalidInput)
	}
	dir := filepath.Join(sm.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	sm.mu.Lock()
	sm.cachedList = nil
	sm.mu.Unlock()
	return os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644)
}

// ListSpaces returns the spaces under the base directory. The listing is
// cached for SpaceListTTL.
func (sm *StoreManager) ListSpaces() ([]SpaceMetadata, error) {
	sm.mu.RLock()
	if time.Since(sm.lastListBuild) < SpaceListTTL && sm.cachedList != nil {
		list := make([]SpaceMetadata, len(sm.cachedList))
		copy(list, sm.cachedList)
		sm.mu.RUnlock()
		return list, nil
	}
	sm.mu.RUnlock()

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double-check
	if time.Since(sm.lastListBuild) < SpaceListTTL && sm.cachedList != nil {
		list := make([]SpaceMetadata, len(sm.cachedList))
		copy(list, sm.cachedList)
		return list, nil
	}

	entries, err := os.ReadDir(sm.baseDir)
	if os.IsNotExist(err) {
		return []SpaceMetadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	spaces := []SpaceMetadata{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		meta := SpaceMetadata{ID: id, Name: id}

		if data, err := os.ReadFile(filepath.Join(sm.baseDir, id, metadataFile)); err == nil {
			var jsonMeta SpaceMetadata
			if err := json.Unmarshal(data, &jsonMeta); err == nil {
				if jsonMeta.Name != "" {
					meta.Name = jsonMeta.Name
				}
				meta.Description = jsonMeta.Description
			}
		}
		spaces = append(spaces, meta)
	}

	sm.cachedList = spaces
	sm.lastListBuild = time.Now()

	list := make([]SpaceMetadata, len(spaces))
	copy(list, spaces)
	return list, nil
}

// CloseAll closes all open stores.
func (sm *StoreManager) CloseAll() {
	sm.spaces.Purge()
}
