// Package runstore tracks pipeline runs and the platform scores they produce.
package runstore

import (
	"sync"

	"github.com/huangsam/rideintegrity/internal/contract"
)

// RunStoreManager owns the process-wide RunStore.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil before InitStores succeeds.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
