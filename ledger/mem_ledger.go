package ledger

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"sort"
	"sync"
)

// MemLedger keeps committed items as encoded bytes,
// so an item handed out by Get never aliases committed state.
type MemLedger[T ILedgerItem] struct {
	name        string
	memStorage  map[LedgerKey][]byte
	cachedItems *memItems[T]
	getNewItem  func() T
	version     int64

	mtx sync.RWMutex
}

func NewMemLedger[T ILedgerItem](name string, cb func() T) *MemLedger[T] {
	return &MemLedger[T]{
		name:        name,
		memStorage:  make(map[LedgerKey][]byte),
		cachedItems: newMemItems[T](),
		getNewItem:  cb,
	}
}

func (ledger *MemLedger[T]) Set(item T) xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.cachedItems.setUpdatedItem(item)
	ledger.cachedItems.setGotItem(item)
	return nil
}

func (ledger *MemLedger[T]) Get(key LedgerKey) (T, xerrors.XError) {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	return ledger.get(key)
}

func (ledger *MemLedger[T]) get(key LedgerKey) (T, xerrors.XError) {
	var emptyNil T
	if item, ok := ledger.cachedItems.getGotItem(key); ok {
		return item, nil
	}

	if item, xerr := ledger.read(key); xerr != nil {
		return emptyNil, xerr
	} else {
		ledger.cachedItems.setGotItem(item)
		return item, nil
	}
}

func (ledger *MemLedger[T]) IterateReadAllItems(cb func(T) xerrors.XError) xerrors.XError {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	keys := ledger.sortedKeys()
	for _, k := range keys {
		item, xerr := ledger.read(k)
		if xerr != nil {
			return xerr
		}
		if xerr := cb(item); xerr != nil {
			return xerr
		}
	}
	return nil
}

func (ledger *MemLedger[T]) read(key LedgerKey) (T, xerrors.XError) {
	var emptyNil T
	bz, ok := ledger.memStorage[key]
	if !ok {
		return emptyNil, xerrors.ErrNotFoundResult
	}

	item := ledger.getNewItem()
	if xerr := item.Decode(bz); xerr != nil {
		return emptyNil, xerr
	} else if key != item.Key() {
		return emptyNil, xerrors.New("mem_ledger: the key is compromised - the requested key is not equal to the key encoded in value")
	}
	return item, nil
}

// Commit returns the keccak256 of every committed key and value in key order.
func (ledger *MemLedger[T]) Commit() ([]byte, int64, xerrors.XError) {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	encoded := make(map[LedgerKey][]byte, len(ledger.cachedItems.updatedItems))
	for key, item := range ledger.cachedItems.updatedItems {
		bz, xerr := item.Encode()
		if xerr != nil {
			return nil, -1, xerr
		}
		encoded[key] = bz
	}

	for key, bz := range encoded {
		ledger.memStorage[key] = bz
	}
	ledger.cachedItems.reset()
	ledger.version++

	keys := ledger.sortedKeys()
	hashed := make([][]byte, 0, len(keys)*2)
	for _, k := range keys {
		_k := k
		hashed = append(hashed, _k[:], ledger.memStorage[k])
	}
	return crypto.Keccak256(hashed...), ledger.version, nil
}

func (ledger *MemLedger[T]) Rollback() {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.cachedItems.reset()
}

func (ledger *MemLedger[T]) Close() xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.memStorage = nil
	ledger.cachedItems.reset()
	return nil
}

func (ledger *MemLedger[T]) sortedKeys() LedgerKeyList {
	keys := make(LedgerKeyList, 0, len(ledger.memStorage))
	for k := range ledger.memStorage {
		keys = append(keys, k)
	}
	sort.Sort(keys)
	return keys
}

var _ ILedger[ILedgerItem] = (*MemLedger[ILedgerItem])(nil)
