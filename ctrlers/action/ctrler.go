package action

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

const seqBatch = "action/batch"

type ActionCtrler struct {
	self          types.Address
	proposalStore types.Address
	coordinator   types.Address
	dispatcher    ctrlertypes.ICallDispatcher

	batchLedger ledger.ILedger[*ActionBatch]
	seqLedger   ledger.ILedger[*ctrlertypes.Sequence]

	logger log.Logger
	mtx    sync.RWMutex
}

func NewActionCtrler(config *cfg.Config, self, proposalStore, coordinator types.Address, dispatcher ctrlertypes.ICallDispatcher, logger log.Logger) (*ActionCtrler, xerrors.XError) {
	batchLedger, xerr := ledger.NewLedger[*ActionBatch]("action_batches", config.LedgerDir(), 128, func() *ActionBatch { return &ActionBatch{} })
	if xerr != nil {
		return nil, xerr
	}
	seqLedger, xerr := ledger.NewLedger[*ctrlertypes.Sequence]("action_seq", config.LedgerDir(), 1, func() *ctrlertypes.Sequence { return &ctrlertypes.Sequence{} })
	if xerr != nil {
		_ = batchLedger.Close()
		return nil, xerr
	}

	return &ActionCtrler{
		self:          self,
		proposalStore: proposalStore,
		coordinator:   coordinator,
		dispatcher:    dispatcher,
		batchLedger:   batchLedger,
		seqLedger:     seqLedger,
		logger:        logger.With("module", "rigo_ActionCtrler"),
	}, nil
}

func (ctrler *ActionCtrler) CreateBatch(
	ctx *ctrlertypes.CallContext,
	targets []types.Address,
	sigs []string,
	args [][]byte,
	values []*uint256.Int,
	description string) (uint64, xerrors.XError) {

	n := len(targets)
	if n == 0 || len(sigs) != n || len(args) != n || len(values) != n {
		return 0, xerrors.ErrArityMismatch.Wrapf("targets(%d), signatures(%d), args(%d), values(%d)", len(targets), len(sigs), len(args), len(values))
	}

	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	id, xerr := ctrlertypes.NextSequence(ctrler.seqLedger, seqBatch)
	if xerr != nil {
		return 0, xerr
	}

	batch := &ActionBatch{
		ID:          id,
		Targets:     append([]types.Address{}, targets...),
		Signatures:  append([]string{}, sigs...),
		Args:        make([]bytes.HexBytes, n),
		Values:      make([]*uint256.Int, n),
		Description: description,
		Creator:     ctx.Caller,
		CreatedAt:   ctx.Now,
	}
	for i := 0; i < n; i++ {
		batch.Args[i] = bytes.HexBytes(args[i]).Copy()
		if values[i] == nil {
			batch.Values[i] = uint256.NewInt(0)
		} else {
			batch.Values[i] = values[i].Clone()
		}
	}

	if xerr := ctrler.batchLedger.Set(batch); xerr != nil {
		return 0, xerr
	}

	ctx.Emit(ctrlertypes.ExecutableCreatedEvent(id))
	ctrler.logger.Debug("action batch created", "id", id, "calls", n, "creator", ctx.Caller)
	return id, nil
}

func (ctrler *ActionCtrler) BindToProposal(ctx *ctrlertypes.CallContext, batchID, proposalID uint64) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.proposalStore {
		return xerrors.ErrUnauthorized.Wrapf("only the proposal store can bind a batch")
	}

	batch, xerr := ctrler.getBatch(batchID)
	if xerr != nil {
		return xerr
	}
	if batch.IsBound() {
		return xerrors.ErrAlreadyBound.Wrapf("batch %d is bound to proposal %d", batchID, batch.BoundProposalID)
	}

	batch.BoundProposalID = proposalID
	return ctrler.batchLedger.Set(batch)
}

// BoundProposalOf returns the proposal the batch is bound to, or 0.
func (ctrler *ActionCtrler) BoundProposalOf(batchID uint64) (uint64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	batch, xerr := ctrler.getBatch(batchID)
	if xerr != nil {
		return 0, xerr
	}
	return batch.BoundProposalID, nil
}

func (ctrler *ActionCtrler) GetBatch(batchID uint64) (*ActionBatch, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	batch, xerr := ctrler.getBatch(batchID)
	if xerr != nil {
		return nil, xerr
	}
	return batch.clone(), nil
}

func (ctrler *ActionCtrler) getBatch(batchID uint64) (*ActionBatch, xerrors.XError) {
	batch, xerr := ctrler.batchLedger.Get(BatchKey(batchID))
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return nil, xerrors.ErrNotFound.Wrapf("action batch %d", batchID)
	} else if xerr != nil {
		return nil, xerr
	}
	return batch, nil
}

// Execute dispatches every call of the batch in order.
// When a call fails, the changes made by the previous calls are reverted
// and the batch remains executable.
func (ctrler *ActionCtrler) Execute(ctx *ctrlertypes.CallContext, batchID uint64) xerrors.XError {
	ctrler.mtx.Lock()
	if ctx.Caller != ctrler.coordinator {
		ctrler.mtx.Unlock()
		return xerrors.ErrUnauthorized.Wrapf("only the coordinator can execute a batch")
	}
	batch, xerr := ctrler.getBatch(batchID)
	if xerr != nil {
		ctrler.mtx.Unlock()
		return xerr
	}
	if batch.Executed {
		ctrler.mtx.Unlock()
		return xerrors.ErrNotExecutable.Wrapf("batch %d was already executed", batchID)
	}
	calls := batch.clone()
	ctrler.mtx.Unlock()

	callCtx := ctx.As(ctrler.self)
	snap := ctrler.dispatcher.Snapshot()
	for i := 0; i < calls.Len(); i++ {
		if _, xerr := ctrler.dispatcher.Call(callCtx, calls.Targets[i], calls.Values[i], calls.CallData(i)); xerr != nil {
			ctrler.dispatcher.RevertToSnapshot(snap)
			ctrler.logger.Info("action batch reverted", "id", batchID, "call", i, "target", calls.Targets[i], "error", xerr)
			return xerrors.ErrCallFailed.Wrapf("batch %d, call %d: %w", batchID, i, xerr)
		}
	}

	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	batch, xerr = ctrler.getBatch(batchID)
	if xerr != nil {
		return xerr
	}
	batch.Executed = true
	return ctrler.batchLedger.Set(batch)
}

// ReadAllBatches returns the committed batches.
func (ctrler *ActionCtrler) ReadAllBatches() ([]*ActionBatch, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	var ret []*ActionBatch
	if xerr := ctrler.batchLedger.IterateReadAllItems(func(b *ActionBatch) xerrors.XError {
		ret = append(ret, b)
		return nil
	}); xerr != nil {
		return nil, xerr
	}
	return ret, nil
}

func (ctrler *ActionCtrler) Commit() ([]byte, int64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	h0, v0, xerr := ctrler.batchLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	h1, _, xerr := ctrler.seqLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	return append(h0, h1...), v0, nil
}

func (ctrler *ActionCtrler) Rollback() {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	ctrler.batchLedger.Rollback()
	ctrler.seqLedger.Rollback()
}

func (ctrler *ActionCtrler) Close() xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctrler.batchLedger != nil {
		if xerr := ctrler.batchLedger.Close(); xerr != nil {
			ctrler.logger.Error("batchLedger.Close()", "error", xerr.Error())
		}
		ctrler.batchLedger = nil
	}
	if ctrler.seqLedger != nil {
		if xerr := ctrler.seqLedger.Close(); xerr != nil {
			ctrler.logger.Error("seqLedger.Close()", "error", xerr.Error())
		}
		ctrler.seqLedger = nil
	}
	return nil
}

var _ ctrlertypes.IActionHandler = (*ActionCtrler)(nil)
var _ ctrlertypes.ILedgerHandler = (*ActionCtrler)(nil)
