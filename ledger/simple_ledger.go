package ledger

import (
	"fmt"
	"github.com/cosmos/iavl"
	"github.com/rigochain/rigo-gov/types/xerrors"
	tmdb "github.com/tendermint/tm-db"
	"sort"
	"sync"
)

type SimpleLedger[T ILedgerItem] struct {
	name        string
	db          tmdb.DB
	tree        *iavl.MutableTree
	cachedItems *memItems[T]
	getNewItem  func() T

	mtx sync.RWMutex
}

func NewSimpleLedger[T ILedgerItem](name, dbDir string, cacheSize int, cb func() T) (*SimpleLedger[T], xerrors.XError) {
	if db, err := tmdb.NewDB(name, "goleveldb", dbDir); err != nil {
		return nil, xerrors.From(err)
	} else if tree, err := iavl.NewMutableTree(db, cacheSize); err != nil {
		_ = db.Close()
		return nil, xerrors.From(err)
	} else if _, err := tree.Load(); err != nil {
		_ = db.Close()
		return nil, xerrors.From(err)
	} else {
		return &SimpleLedger[T]{
			name:        name,
			db:          db,
			tree:        tree,
			cachedItems: newMemItems[T](),
			getNewItem:  cb,
		}, nil
	}
}

func (ledger *SimpleLedger[T]) Set(item T) xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.cachedItems.setUpdatedItem(item)
	ledger.cachedItems.setGotItem(item)
	return nil
}

func (ledger *SimpleLedger[T]) Get(key LedgerKey) (T, xerrors.XError) {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	return ledger.get(key)
}

func (ledger *SimpleLedger[T]) get(key LedgerKey) (T, xerrors.XError) {
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

// IterateReadAllItems visits the committed items only.
func (ledger *SimpleLedger[T]) IterateReadAllItems(cb func(T) xerrors.XError) xerrors.XError {
	ledger.mtx.RLock()
	defer ledger.mtx.RUnlock()

	var cbErr xerrors.XError
	stopped, err := ledger.tree.Iterate(func(key []byte, value []byte) bool {
		item := ledger.getNewItem()
		if xerr := item.Decode(value); xerr != nil {
			cbErr = xerr
			return true
		} else if item.Key() != ToLedgerKey(key) {
			cbErr = xerrors.New(fmt.Sprintf("wrong key - key:%X vs. item's key:%X", key, item.Key()))
			return true
		} else if xerr := cb(item); xerr != nil {
			cbErr = xerr
			return true
		}
		return false
	})

	if err != nil {
		return xerrors.From(err)
	} else if stopped {
		return cbErr
	}
	return nil
}

func (ledger *SimpleLedger[T]) read(key LedgerKey) (T, xerrors.XError) {
	var emptyNil T
	item := ledger.getNewItem()

	if bz, err := ledger.tree.Get(key[:]); err != nil {
		return emptyNil, xerrors.From(err)
	} else if bz == nil {
		return emptyNil, xerrors.ErrNotFoundResult
	} else if xerr := item.Decode(bz); xerr != nil {
		return emptyNil, xerr
	} else if key != item.Key() {
		return emptyNil, xerrors.New("simple_ledger: the key is compromised - the requested key is not equal to the key encoded in value")
	} else {
		return item, nil
	}
}

func (ledger *SimpleLedger[T]) Commit() ([]byte, int64, xerrors.XError) {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	var keys LedgerKeyList
	for k := range ledger.cachedItems.updatedItems {
		keys = append(keys, k)
	}
	sort.Sort(keys)

	for _, k := range keys {
		_val := ledger.cachedItems.updatedItems[k]
		_key := _val.Key()
		if bz, xerr := _val.Encode(); xerr != nil {
			return nil, -1, xerr
		} else if _, err := ledger.tree.Set(_key[:], bz); err != nil {
			return nil, -1, xerrors.ErrCommit.Wrap(err)
		}
	}

	if r1, r2, err := ledger.tree.SaveVersion(); err != nil {
		return r1, r2, xerrors.ErrCommit.Wrap(err)
	} else {
		ledger.cachedItems.reset()
		return r1, r2, nil
	}
}

func (ledger *SimpleLedger[T]) Rollback() {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	ledger.cachedItems.reset()
}

func (ledger *SimpleLedger[T]) Close() xerrors.XError {
	ledger.mtx.Lock()
	defer ledger.mtx.Unlock()

	if ledger.db != nil {
		if err := ledger.db.Close(); err != nil {
			return xerrors.From(err)
		}
	}

	ledger.db = nil
	ledger.tree = nil
	return nil
}

var _ ILedger[ILedgerItem] = (*SimpleLedger[ILedgerItem])(nil)
