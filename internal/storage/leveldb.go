package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"simplestorage/internal/word"
)

// Encoded record: 8-byte big-endian version followed by the 32-byte word.
const recordSize = 8 + word.Size

// LevelDBStore implements Store on top of LevelDB.
type LevelDBStore struct {
	// mu serializes the read-modify-write in Put.
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelDBStore opens (or creates) a LevelDB store in dir.
func OpenLevelDBStore(dir string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB at %s: %w", dir, err)
	}
	return &LevelDBStore{db: db}, nil
}

// NewMemLevelDBStore returns a LevelDB store backed by memory.
func NewMemLevelDBStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(lvstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory LevelDB: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

// Get reads a slot.
func (s *LevelDBStore) Get(addr Address, slot word.Word) (*VersionedWord, error) {
	key := makeSlotKey(addr, slot)
	return s.get(key[:])
}

func (s *LevelDBStore) get(key []byte) (*VersionedWord, error) {
	raw, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return &VersionedWord{}, nil
	}
	if errors.Is(err, leveldb.ErrClosed) {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return decodeRecord(raw)
}

// Put overwrites a slot and bumps its version. Writes are synced to disk.
func (s *LevelDBStore) Put(addr Address, slot word.Word, value word.Word) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := makeSlotKey(addr, slot)
	existing, err := s.get(key[:])
	if err != nil {
		return 0, err
	}

	version := existing.Version + 1
	err = s.db.Put(key[:], encodeRecord(value, version), &opt.WriteOptions{Sync: true})
	if errors.Is(err, leveldb.ErrClosed) {
		return 0, ErrClosed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write slot: %w", err)
	}
	return version, nil
}

// Close closes the underlying database.
func (s *LevelDBStore) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, leveldb.ErrClosed) {
		return err
	}
	return nil
}

func encodeRecord(value word.Word, version uint64) []byte {
	buf := make([]byte, recordSize)
	binary.BigEndian.PutUint64(buf[:8], version)
	copy(buf[8:], value[:])
	return buf
}

func decodeRecord(raw []byte) (*VersionedWord, error) {
	if len(raw) != recordSize {
		return nil, fmt.Errorf("corrupt slot record: %d bytes", len(raw))
	}
	value, err := word.FromBytes(raw[8:])
	if err != nil {
		return nil, err
	}
	return &VersionedWord{
		Value:   value,
		Version: binary.BigEndian.Uint64(raw[:8]),
	}, nil
}
