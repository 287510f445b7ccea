package organizer

import "sync"

// syncMap is a generic map guarded by a RWMutex. Reads dominate: every sweep
// looks up its folder lock, new folders are rare.
type syncMap[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

func newSyncMap[K comparable, V any]() *syncMap[K, V] {
	return &syncMap[K, V]{m: make(map[K]V)}
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores and returns value. loaded is true when the value already existed.
func (sm *syncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	sm.mu.RLock()
	actual, loaded = sm.m[key]
	sm.mu.RUnlock()
	if loaded {
		return actual, true
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Another goroutine may have stored between RUnlock and Lock.
	if actual, loaded = sm.m[key]; loaded {
		return actual, true
	}
	sm.m[key] = value
	return value, false
}
