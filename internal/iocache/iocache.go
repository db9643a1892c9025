// Package iocache is the durable tier behind the query cache.
package iocache

import (
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// QueryTable is the name of the table holding persisted query results.
const QueryTable = "query_cache"

// CacheStoreManager owns the durable query store for one session.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	query        *QueryStore
	closeOnce    sync.Once
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// InitStores opens the query store for the given backend and returns its manager.
// An empty backend leaves the manager without a store.
func InitStores(backend schema.DatabaseBackend, connStr string) (*CacheStoreManager, error) {
	mgr := &CacheStoreManager{}
	if backend == "" {
		return mgr, nil
	}
	store, err := NewCacheStore(QueryTable, backend, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize query caching: %w", err)
	}
	mgr.query = store
	return mgr, nil
}

// GetQueryStore returns the query CacheStore, or nil when none is configured.
func (mgr *CacheStoreManager) GetQueryStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.query == nil {
		return nil
	}
	return mgr.query
}

// PruneCache removes persisted results written before cutoff.
func (mgr *CacheStoreManager) PruneCache(cutoff time.Time) (int64, error) {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.query == nil {
		return 0, nil
	}
	return mgr.query.Prune(cutoff)
}

// CloseCaching should be called on application shutdown. Repeated calls are no-ops.
func (mgr *CacheStoreManager) CloseCaching() {
	mgr.closeOnce.Do(func() {
		mgr.Lock()
		defer mgr.Unlock()
		if mgr.query != nil {
			_ = mgr.query.Close()
		}
	})
}
