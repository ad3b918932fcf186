package iocache

import (
	"sync"

	"github.com/huangsam/mlscore/internal/contract"
)

// StoreManager holds the cache and artifact stores of a process.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	artifacts    contract.ArtifactStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps existing stores. Either may be nil.
func NewStoreManager(cache contract.CacheStore, artifacts contract.ArtifactStore) *StoreManager {
	return &StoreManager{cache: cache, artifacts: artifacts}
}

// GetCacheStore returns the payload CacheStore.
func (mgr *StoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetArtifactStore returns the ArtifactStore.
func (mgr *StoreManager) GetArtifactStore() contract.ArtifactStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.artifacts
}
