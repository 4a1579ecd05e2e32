package ledger

import (
	"bytes"
	"encoding/binary"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"sort"
)

const LEDGERKEYSIZE = 32

type LedgerKey = [32]byte

func ToLedgerKey(s []byte) LedgerKey {
	var ret LedgerKey
	n := len(s)
	if n > LEDGERKEYSIZE {
		n = LEDGERKEYSIZE
	}
	copy(ret[:], s[:n])
	return ret
}

// Uint64ToLedgerKey puts the prefix at the first byte and id at the last 8 bytes.
func Uint64ToLedgerKey(prefix byte, id uint64) LedgerKey {
	var ret LedgerKey
	ret[0] = prefix
	binary.BigEndian.PutUint64(ret[LEDGERKEYSIZE-8:], id)
	return ret
}

type LedgerKeyList []LedgerKey

func (a LedgerKeyList) Len() int {
	return len(a)
}
func (a LedgerKeyList) Less(i, j int) bool {
	ret := bytes.Compare(a[i][:], a[j][:])
	return ret > 0
}
func (a LedgerKeyList) Swap(i, j int) {
	a[i], a[j] = a[j], a[i]
}

var _ sort.Interface = LedgerKeyList(nil)

type ILedgerItem interface {
	Key() LedgerKey
	Encode() ([]byte, xerrors.XError)
	Decode([]byte) xerrors.XError
}

// ILedger stages every write in memory until Commit.
// Rollback drops everything staged since the last Commit.
// Get sees staged items; IterateReadAllItems visits committed items only.
type ILedger[T ILedgerItem] interface {
	Set(T) xerrors.XError
	Get(LedgerKey) (T, xerrors.XError)
	IterateReadAllItems(func(T) xerrors.XError) xerrors.XError
	Commit() ([]byte, int64, xerrors.XError)
	Rollback()
	Close() xerrors.XError
}
