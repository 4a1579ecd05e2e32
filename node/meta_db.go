package node

import (
	"encoding/binary"
	"sync"

	tmdb "github.com/tendermint/tm-db"
)

const (
	keyHeight  = "bh"
	keyAppHash = "ah"
	keyOwner   = "ow"
)

// MetaDB keeps the height and the app hash of the last committed call.
type MetaDB struct {
	db tmdb.DB

	mtx   sync.RWMutex
	cache map[string][]byte
}

// openMetaDB opens a goleveldb under dir, or a memory db when dir is empty.
func openMetaDB(name, dir string) (*MetaDB, error) {
	var db tmdb.DB
	if dir == "" {
		db = tmdb.NewMemDB()
	} else {
		var err error
		// The returned 'db' instance is safe in concurrent use.
		if db, err = tmdb.NewDB(name, "goleveldb", dir); err != nil {
			return nil, err
		}
	}

	return &MetaDB{
		db:    db,
		cache: make(map[string][]byte),
	}, nil
}

func (stdb *MetaDB) Close() error {
	stdb.mtx.Lock()
	defer stdb.mtx.Unlock()

	stdb.cache = map[string][]byte{}
	return stdb.db.Close()
}

func (stdb *MetaDB) LastHeight() int64 {
	v := stdb.get(keyHeight)
	if v == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(v))
}

func (stdb *MetaDB) PutLastHeight(h int64) error {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(h))
	return stdb.put(keyHeight, v)
}

func (stdb *MetaDB) LastAppHash() []byte {
	return stdb.get(keyAppHash)
}

func (stdb *MetaDB) PutLastAppHash(v []byte) error {
	return stdb.put(keyAppHash, v)
}

// Owner returns the owner the ledgers were created with, or nil.
func (stdb *MetaDB) Owner() []byte {
	return stdb.get(keyOwner)
}

func (stdb *MetaDB) PutOwner(v []byte) error {
	return stdb.put(keyOwner, v)
}

func (stdb *MetaDB) putCache(k string, v []byte) {
	stdb.mtx.Lock()
	defer stdb.mtx.Unlock()

	stdb.cache[k] = v
}

func (stdb *MetaDB) getCache(k string) []byte {
	stdb.mtx.RLock()
	defer stdb.mtx.RUnlock()

	return stdb.cache[k]
}

func (stdb *MetaDB) get(k string) []byte {
	if v := stdb.getCache(k); v != nil {
		return v
	}

	if v, err := stdb.db.Get([]byte(k)); err == nil && v != nil {
		stdb.putCache(k, v)
		return v
	}

	return nil
}

func (stdb *MetaDB) put(k string, v []byte) error {
	if err := stdb.db.SetSync([]byte(k), v); err != nil {
		return err
	}
	stdb.putCache(k, v)
	return nil
}
