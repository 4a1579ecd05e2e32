package action

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

var _ vm.ICallable = (*switchTarget)(nil)
