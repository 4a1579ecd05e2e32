package types

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// Sequence is a named counter kept in a ledger.
type Sequence struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

func NewSequence(name string) *Sequence {
	return &Sequence{Name: name}
}

func SequenceKey(name string) ledger.LedgerKey {
	return ledger.ToLedgerKey(crypto.Keccak256([]byte(name)))
}

func (s *Sequence) Key() ledger.LedgerKey {
	return SequenceKey(s.Name)
}

func (s *Sequence) Encode() ([]byte, xerrors.XError) {
	if bz, err := json.Marshal(s); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (s *Sequence) Decode(bz []byte) xerrors.XError {
	if err := json.Unmarshal(bz, s); err != nil {
		return xerrors.From(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*Sequence)(nil)

// NextSequence increments the counter and returns the new value. The first value is 1.
func NextSequence(l ledger.ILedger[*Sequence], name string) (uint64, xerrors.XError) {
	seq, xerr := l.Get(SequenceKey(name))
	if xerr != nil && !errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return 0, xerr
	} else if xerr != nil {
		seq = NewSequence(name)
	}

	seq.Value++
	if xerr := l.Set(seq); xerr != nil {
		return 0, xerr
	}
	return seq.Value, nil
}

// CurrentSequence returns the last issued value, or 0.
func CurrentSequence(l ledger.ILedger[*Sequence], name string) (uint64, xerrors.XError) {
	seq, xerr := l.Get(SequenceKey(name))
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return 0, nil
	} else if xerr != nil {
		return 0, xerr
	}
	return seq.Value, nil
}
