package vm

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

// ICallable is the code behind a target address.
type ICallable interface {
	Call(ctx *ctrlertypes.CallContext, value *uint256.Int, input []byte, journal IJournal) ([]byte, xerrors.XError)
}

// Dispatcher routes calls to the targets registered at addresses.
// State changes made by targets are journaled until Commit,
// so they can be reverted to any snapshot or dropped by Rollback.
type Dispatcher struct {
	targets map[types.Address]ICallable
	journal *journal

	logger log.Logger
	mtx    sync.RWMutex
}

func NewDispatcher(logger log.Logger) *Dispatcher {
	return &Dispatcher{
		targets: make(map[types.Address]ICallable),
		journal: &journal{},
		logger:  logger.With("module", "rigo_Dispatcher"),
	}
}

func (d *Dispatcher) Register(addr types.Address, target ICallable) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.targets[addr] = target
}

func (d *Dispatcher) Target(addr types.Address) (ICallable, bool) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	target, ok := d.targets[addr]
	return target, ok
}

func (d *Dispatcher) OnRevert(undo func()) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.journal.append(undo)
}

func (d *Dispatcher) Snapshot() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.journal.snapshot()
}

func (d *Dispatcher) RevertToSnapshot(revid int) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if !d.journal.revertTo(revid) {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
}

// Call runs the target without holding the dispatcher lock,
// so the target may take snapshots or record undo entries.
func (d *Dispatcher) Call(ctx *ctrlertypes.CallContext, to types.Address, value *uint256.Int, input []byte) ([]byte, xerrors.XError) {
	target, ok := d.Target(to)
	if !ok {
		return nil, xerrors.ErrCallFailed.Wrapf("no target at %s", to.Hex())
	}
	if value == nil {
		value = uint256.NewInt(0)
	}

	ret, xerr := target.Call(ctx, value, input, d)
	if xerr != nil {
		d.logger.Debug("call failed", "target", to, "error", xerr)
		return nil, xerrors.ErrCallFailed.Wrap(xerr)
	}
	return ret, nil
}

// Commit makes the journaled changes permanent.
func (d *Dispatcher) Commit() ([]byte, int64, xerrors.XError) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.journal.reset()
	return nil, 0, nil
}

// Rollback undoes every change recorded since the last Commit.
func (d *Dispatcher) Rollback() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.journal.undo(0)
	d.journal.reset()
}

func (d *Dispatcher) Close() xerrors.XError {
	return nil
}

var _ ctrlertypes.ICallDispatcher = (*Dispatcher)(nil)
var _ ctrlertypes.ILedgerHandler = (*Dispatcher)(nil)
var _ IJournal = (*Dispatcher)(nil)
