package storage

import (
	"errors"
	"sync"

	"simplestorage/internal/word"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// VersionedWord represents a slot value with its write version.
type VersionedWord struct {
	Value   word.Word
	Version uint64 // 0 if the slot was never written
}

// Store defines the interface for contract slot storage.
type Store interface {
	// Get reads a slot. Slots that were never written return the zero word
	// with version 0.
	Get(addr Address, slot word.Word) (*VersionedWord, error)
	// Put overwrites a slot and returns its new version.
	Put(addr Address, slot word.Word, value word.Word) (uint64, error)
	// Close releases the store. Subsequent calls return ErrClosed.
	Close() error
}

type slotKey [AddressLength + word.Size]byte

func makeSlotKey(addr Address, slot word.Word) slotKey {
	var k slotKey
	copy(k[:AddressLength], addr[:])
	copy(k[AddressLength:], slot[:])
	return k
}

// InMemoryStore is an in-memory implementation of Store.
// It's thread-safe.
type InMemoryStore struct {
	mu     sync.RWMutex
	data   map[slotKey]*VersionedWord
	closed bool
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[slotKey]*VersionedWord),
	}
}

// Get reads a slot.
func (s *InMemoryStore) Get(addr Address, slot word.Word) (*VersionedWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	vw, exists := s.data[makeSlotKey(addr, slot)]
	if !exists {
		return &VersionedWord{}, nil
	}

	// Return a copy to avoid external modifications
	return &VersionedWord{
		Value:   vw.Value,
		Version: vw.Version,
	}, nil
}

// Put overwrites a slot and bumps its version.
func (s *InMemoryStore) Put(addr Address, slot word.Word, value word.Word) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	key := makeSlotKey(addr, slot)
	var version uint64 = 1
	if existing, exists := s.data[key]; exists {
		version = existing.Version + 1
	}

	s.data[key] = &VersionedWord{
		Value:   value,
		Version: version,
	}
	return version, nil
}

// Close marks the store closed and drops its contents.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
