package coord

import (
	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/vm"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// switchTarget fails while broken is set.
type switchTarget struct {
	broken bool
	calls  int
}

func (s *switchTarget) Call(_ *ctrlertypes.CallContext, _ *uint256.Int, _ []byte, journal vm.IJournal) ([]byte, xerrors.XError) {
	if s.broken {
		return nil, xerrors.New("switch target is broken")
	}
	s.calls++
	journal.OnRevert(func() { s.calls-- })
	return nil, nil
}

// reentrantTarget calls back into the coordinator while a batch is executing.
type reentrantTarget struct {
	coord   *Coordinator
	batchID uint64
	err     xerrors.XError
}

func (r *reentrantTarget) Call(ctx *ctrlertypes.CallContext, _ *uint256.Int, _ []byte, _ vm.IJournal) ([]byte, xerrors.XError) {
	r.err = r.coord.Execute(ctx, r.batchID)
	return nil, r.err
}

var (
	_ vm.ICallable = (*switchTarget)(nil)
	_ vm.ICallable = (*reentrantTarget)(nil)
)
