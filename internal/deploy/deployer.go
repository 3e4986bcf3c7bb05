package deploy

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/sha3"

	"simplestorage/internal/contract"
	"simplestorage/internal/storage"
	"simplestorage/internal/word"
)

// ErrNotDeployed is returned by At for addresses the deployer never created.
var ErrNotDeployed = errors.New("no contract deployed at address")

// RegistryAddress is reserved for deployment bookkeeping. Slot 0 holds the
// number of deployments, slots 1..n their addresses, and
// keccak256("nonce" || owner) the next nonce of each owner.
var RegistryAddress storage.Address

var countSlot = word.Zero

// Deployer instantiates SimpleStorage contracts on a store.
type Deployer struct {
	mu       sync.Mutex
	store    storage.Store
	opts     []contract.Option
	deployed map[storage.Address]struct{}
}

// NewDeployer returns a deployer over store, loading any deployments
// already recorded there. opts are applied to every contract handle.
func NewDeployer(store storage.Store, opts ...contract.Option) (*Deployer, error) {
	d := &Deployer{
		store:    store,
		opts:     opts,
		deployed: make(map[storage.Address]struct{}),
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Deployer) load() error {
	count, err := d.store.Get(RegistryAddress, countSlot)
	if err != nil {
		return fmt.Errorf("failed to read deployment count: %w", err)
	}
	n := count.Value.Big().Uint64()
	for i := uint64(1); i <= n; i++ {
		entry, err := d.store.Get(RegistryAddress, word.FromUint64(i))
		if err != nil {
			return fmt.Errorf("failed to read deployment %d: %w", i, err)
		}
		d.deployed[storage.BytesToAddress(entry.Value[:])] = struct{}{}
	}
	if n > 0 {
		log.Info().Uint64("contracts", n).Msg("Loaded deployment registry")
	}
	return nil
}

// Deploy creates a fresh SimpleStorage instance owned by owner. The new
// instance's value is zero.
func (d *Deployer) Deploy(ctx context.Context, owner string) (*contract.SimpleStorage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	nonceSlot := ownerNonceSlot(owner)
	nonceWord, err := d.store.Get(RegistryAddress, nonceSlot)
	if err != nil {
		return nil, fmt.Errorf("failed to read nonce for %q: %w", owner, err)
	}
	nonce := nonceWord.Value.Big().Uint64()

	addr := ContractAddress(owner, nonce)
	for d.isTaken(addr) {
		nonce++
		addr = ContractAddress(owner, nonce)
	}

	// Entry before count so a partial write never exposes an empty entry.
	index := uint64(len(d.deployed)) + 1
	var entry word.Word
	copy(entry[word.Size-storage.AddressLength:], addr[:])
	if _, err := d.store.Put(RegistryAddress, word.FromUint64(index), entry); err != nil {
		return nil, fmt.Errorf("failed to record deployment: %w", err)
	}
	if _, err := d.store.Put(RegistryAddress, countSlot, word.FromUint64(index)); err != nil {
		return nil, fmt.Errorf("failed to record deployment count: %w", err)
	}
	if _, err := d.store.Put(RegistryAddress, nonceSlot, word.FromUint64(nonce+1)); err != nil {
		return nil, fmt.Errorf("failed to bump nonce for %q: %w", owner, err)
	}
	d.deployed[addr] = struct{}{}

	log.Info().
		Str("owner", owner).
		Uint64("nonce", nonce).
		Str("address", addr.Hex()).
		Msg("Deployed SimpleStorage")

	return contract.New(addr, d.store, d.opts...), nil
}

// At returns a handle to the instance deployed at addr.
func (d *Deployer) At(addr storage.Address) (*contract.SimpleStorage, error) {
	d.mu.Lock()
	_, ok := d.deployed[addr]
	d.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDeployed, addr)
	}
	return contract.New(addr, d.store, d.opts...), nil
}

// Deployments returns every deployed address in ascending byte order.
func (d *Deployer) Deployments() []storage.Address {
	d.mu.Lock()
	defer d.mu.Unlock()

	addrs := make([]storage.Address, 0, len(d.deployed))
	for addr := range d.deployed {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})
	return addrs
}

func (d *Deployer) isTaken(addr storage.Address) bool {
	if addr == RegistryAddress {
		return true
	}
	_, ok := d.deployed[addr]
	return ok
}

// ContractAddress derives the address of the contract owner deploys with
// the given nonce: the last 20 bytes of keccak256(owner || nonce).
func ContractAddress(owner string, nonce uint64) storage.Address {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return storage.BytesToAddress(keccak256([]byte(owner), n[:]))
}

func ownerNonceSlot(owner string) word.Word {
	var slot word.Word
	copy(slot[:], keccak256([]byte("nonce"), []byte(owner)))
	return slot
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}
