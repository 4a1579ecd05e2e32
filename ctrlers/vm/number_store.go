package vm

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

const NumberStoreABI = `[
	{"type":"function","name":"setNumber","stateMutability":"nonpayable","inputs":[{"name":"n","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setBytes","stateMutability":"nonpayable","inputs":[{"name":"b","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"number","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"data","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"fail","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

// NumberStore is a call target holding one number and one bytes32 word.
// fail() always reverts.
type NumberStore struct {
	*ABIContract

	number  *big.Int
	data    [32]byte
	callers []types.Address

	mtx sync.RWMutex
}

func NewNumberStore() *NumberStore {
	contract, xerr := NewABIContract(NumberStoreABI)
	if xerr != nil {
		panic(xerr)
	}

	s := &NumberStore{
		ABIContract: contract,
		number:      new(big.Int),
	}
	contract.
		Handle("setNumber", s.setNumber).
		Handle("setBytes", s.setBytes).
		Handle("number", s.getNumber).
		Handle("data", s.getData).
		Handle("fail", s.fail)
	return s
}

func (s *NumberStore) setNumber(ctx *ctrlertypes.CallContext, _ *uint256.Int, args []interface{}, journal IJournal) ([]interface{}, xerrors.XError) {
	n, ok := args[0].(*big.Int)
	if !ok {
		return nil, xerrors.ErrInvalidParams.Wrapf("setNumber: wrong argument %T", args[0])
	}

	s.mtx.Lock()
	prev, prevCallers := s.number, s.callers
	s.number = new(big.Int).Set(n)
	s.callers = append(append([]types.Address{}, s.callers...), ctx.Caller)
	s.mtx.Unlock()

	journal.OnRevert(func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		s.number, s.callers = prev, prevCallers
	})
	return nil, nil
}

func (s *NumberStore) setBytes(ctx *ctrlertypes.CallContext, _ *uint256.Int, args []interface{}, journal IJournal) ([]interface{}, xerrors.XError) {
	b, ok := args[0].([32]byte)
	if !ok {
		return nil, xerrors.ErrInvalidParams.Wrapf("setBytes: wrong argument %T", args[0])
	}

	s.mtx.Lock()
	prev, prevCallers := s.data, s.callers
	s.data = b
	s.callers = append(append([]types.Address{}, s.callers...), ctx.Caller)
	s.mtx.Unlock()

	journal.OnRevert(func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		s.data, s.callers = prev, prevCallers
	})
	return nil, nil
}

func (s *NumberStore) getNumber(*ctrlertypes.CallContext, *uint256.Int, []interface{}, IJournal) ([]interface{}, xerrors.XError) {
	return []interface{}{s.Number()}, nil
}

func (s *NumberStore) getData(*ctrlertypes.CallContext, *uint256.Int, []interface{}, IJournal) ([]interface{}, xerrors.XError) {
	return []interface{}{s.Data()}, nil
}

func (s *NumberStore) fail(*ctrlertypes.CallContext, *uint256.Int, []interface{}, IJournal) ([]interface{}, xerrors.XError) {
	return nil, xerrors.New("number_store: reverted")
}

func (s *NumberStore) Number() *big.Int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return new(big.Int).Set(s.number)
}

func (s *NumberStore) Data() [32]byte {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.data
}

// Callers returns the caller of every successful state change in order.
func (s *NumberStore) Callers() []types.Address {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return append([]types.Address{}, s.callers...)
}
