package utils

import "sync"

// KeyedMutex provides one mutex per key so that work scoped to one key
// serializes without blocking work on other keys. Mutexes are created on
// first use and kept for the life of the process.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it if needed.
func (k *KeyedMutex) Lock(key uint64) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that was never
// locked panics, matching sync.Mutex semantics.
func (k *KeyedMutex) Unlock(key uint64) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()
	if !ok {
		panic("keyedmutex: unlock of unknown key")
	}

	m.Unlock()
}
