package storage

import (
	"errors"
	"sync"
	"testing"

	"simplestorage/internal/word"
)

var (
	addr1 = BytesToAddress([]byte{0x01})
	addr2 = BytesToAddress([]byte{0x02})
	slot0 = word.Zero
	slot1 = word.FromUint64(1)
)

// stores returns a fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	lv, err := NewMemLevelDBStore()
	if err != nil {
		t.Fatalf("NewMemLevelDBStore: %v", err)
	}
	t.Cleanup(func() { lv.Close() })
	return map[string]Store{
		"memory":  NewInMemoryStore(),
		"leveldb": lv,
	}
}

func TestStore_GetPut(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			version, err := store.Put(addr1, slot0, word.FromUint64(42))
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if version != 1 {
				t.Errorf("Expected version 1, got %d", version)
			}

			vw, err := store.Get(addr1, slot0)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if vw.Value != word.FromUint64(42) {
				t.Errorf("Expected 42, got %s", vw.Value)
			}
			if vw.Version != 1 {
				t.Errorf("Expected version 1, got %d", vw.Version)
			}
		})
	}
}

func TestStore_GetUnwrittenIsZero(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			vw, err := store.Get(addr1, slot1)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !vw.Value.IsZero() {
				t.Errorf("Expected zero word, got %s", vw.Value)
			}
			if vw.Version != 0 {
				t.Errorf("Expected version 0, got %d", vw.Version)
			}
		})
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Put(addr1, slot0, word.FromUint64(0))
			version, _ := store.Put(addr1, slot0, word.FromUint64(7))
			if version != 2 {
				t.Errorf("Expected version 2 after second write, got %d", version)
			}

			vw, _ := store.Get(addr1, slot0)
			if vw.Value != word.FromUint64(7) {
				t.Errorf("Expected 7, got %s", vw.Value)
			}
		})
	}
}

func TestStore_SlotsAndAddressesAreIsolated(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Put(addr1, slot0, word.FromUint64(1))
			store.Put(addr1, slot1, word.FromUint64(2))
			store.Put(addr2, slot0, word.FromUint64(3))

			checks := []struct {
				addr Address
				slot word.Word
				want uint64
			}{
				{addr1, slot0, 1},
				{addr1, slot1, 2},
				{addr2, slot0, 3},
			}
			for _, c := range checks {
				vw, _ := store.Get(c.addr, c.slot)
				if vw.Value != word.FromUint64(c.want) {
					t.Errorf("Get(%s, %s) = %s, want %d", c.addr, c.slot, vw.Value, c.want)
				}
			}
		})
	}
}

func TestStore_Closed(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, err := store.Get(addr1, slot0); !errors.Is(err, ErrClosed) {
				t.Errorf("Expected ErrClosed from Get, got %v", err)
			}
			if _, err := store.Put(addr1, slot0, word.Zero); !errors.Is(err, ErrClosed) {
				t.Errorf("Expected ErrClosed from Put, got %v", err)
			}
		})
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					store.Put(addr1, slot0, word.FromUint64(uint64(i)))
				}(i)
			}
			wg.Wait()

			vw, err := store.Get(addr1, slot0)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if vw.Version != 10 {
				t.Errorf("Expected version 10 after 10 writes, got %d", vw.Version)
			}
		})
	}
}

func TestLevelDBStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenLevelDBStore(dir)
	if err != nil {
		t.Fatalf("OpenLevelDBStore: %v", err)
	}
	store.Put(addr1, slot0, word.FromUint64(99))
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = OpenLevelDBStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	vw, _ := store.Get(addr1, slot0)
	if vw.Value != word.FromUint64(99) {
		t.Errorf("Expected 99 after reopen, got %s", vw.Value)
	}
	if vw.Version != 1 {
		t.Errorf("Expected version 1 after reopen, got %d", vw.Version)
	}
}

func TestParseAddress(t *testing.T) {
	a := BytesToAddress([]byte{0xde, 0xad, 0xbe, 0xef})
	parsed, err := ParseAddress(a.Hex())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != a {
		t.Errorf("Expected %s, got %s", a, parsed)
	}

	for _, bad := range []string{"", "0x1234", "0x" + string(make([]byte, 40)), "zz00000000000000000000000000000000000000"} {
		if _, err := ParseAddress(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
