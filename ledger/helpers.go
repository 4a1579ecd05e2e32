package ledger

import (
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// NewLedger opens an iavl backed ledger under dbDir,
// or a ledger kept in memory when dbDir is empty.
func NewLedger[T ILedgerItem](name, dbDir string, cacheSize int, cb func() T) (ILedger[T], xerrors.XError) {
	if dbDir == "" {
		return NewMemLedger[T](name, cb), nil
	}
	ledger, xerr := NewSimpleLedger[T](name, dbDir, cacheSize, cb)
	if xerr != nil {
		return nil, xerr
	}
	return ledger, nil
}
