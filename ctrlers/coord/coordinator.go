package coord

import (
	"sync/atomic"

	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

// Coordinator closes voting, turns the verdict of a mechanism into the
// proposal's final state and triggers the execution of queued batches.
// It keeps no state of its own.
type Coordinator struct {
	self      types.Address
	proposals ctrlertypes.IProposalHandler
	directory ctrlertypes.IDirectory
	actions   ctrlertypes.IActionHandler

	entered atomic.Bool
	logger  log.Logger
}

func NewCoordinator(
	self types.Address,
	proposals ctrlertypes.IProposalHandler,
	directory ctrlertypes.IDirectory,
	actions ctrlertypes.IActionHandler,
	logger log.Logger) *Coordinator {
	return &Coordinator{
		self:      self,
		proposals: proposals,
		directory: directory,
		actions:   actions,
		logger:    logger.With("module", "rigo_Coordinator"),
	}
}

func (coord *Coordinator) Address() types.Address {
	return coord.self
}

func (coord *Coordinator) enter() xerrors.XError {
	if !coord.entered.CompareAndSwap(false, true) {
		return xerrors.ErrReentrantCall
	}
	return nil
}

func (coord *Coordinator) exit() {
	coord.entered.Store(false)
}

// IsVotable reports whether votes for the proposal are accepted at now.
func (coord *Coordinator) IsVotable(proposalID uint64, now int64) (bool, xerrors.XError) {
	v, xerr := coord.proposals.GetPropVotables(proposalID, now)
	if xerr != nil {
		return false, xerr
	}
	return v.State == ctrlertypes.PropStateActive && v.VoteStart <= now && now <= v.VoteEnd, nil
}

// Phase returns the state of the proposal at now, including the states
// derived from its voting window.
func (coord *Coordinator) Phase(proposalID uint64, now int64) (ctrlertypes.PropState, xerrors.XError) {
	v, xerr := coord.proposals.GetPropVotables(proposalID, now)
	if xerr != nil {
		return ctrlertypes.PropStatePending, xerr
	}
	if v.State == ctrlertypes.PropStateActive && now < v.VoteStart {
		return ctrlertypes.PropStatePending, nil
	}
	return v.State, nil
}

// QueueProposal closes the voting of a proposal whose window has passed and
// moves it to Queued, Defeated or Expired.
func (coord *Coordinator) QueueProposal(ctx *ctrlertypes.CallContext, proposalID uint64) (ctrlertypes.PropState, xerrors.XError) {
	if xerr := coord.enter(); xerr != nil {
		return ctrlertypes.PropStatePending, xerr
	}
	defer coord.exit()

	v, xerr := coord.proposals.GetPropVotables(proposalID, ctx.Now)
	if xerr != nil {
		return ctrlertypes.PropStatePending, xerr
	}
	if ctx.Now <= v.VoteEnd ||
		(v.State != ctrlertypes.PropStateActive && v.State != ctrlertypes.PropStateEnded) {
		return v.State, xerrors.ErrVotingActiveOrExecuted.Wrapf("proposal %d is %s at %d", proposalID, v.State, ctx.Now)
	}

	coordCtx := ctx.As(coord.self)
	if xerr := coord.proposals.PropVoting(coordCtx, proposalID); xerr != nil {
		return v.State, xerr
	}

	voteTypeID, xerr := coord.proposals.GetPropVoteType(proposalID)
	if xerr != nil {
		return ctrlertypes.PropStateEnded, xerr
	}
	mech, xerr := coord.directory.Mechanism(voteTypeID)
	if xerr != nil {
		return ctrlertypes.PropStateEnded, xerr
	}
	reached, passed, xerr := mech.ConsensusReached(proposalID)
	if xerr != nil {
		return ctrlertypes.PropStateEnded, xerr
	}

	var to ctrlertypes.PropState
	switch {
	case !reached:
		to, xerr = ctrlertypes.PropStateExpired, coord.proposals.PropExpire(coordCtx, proposalID)
	case passed:
		to, xerr = ctrlertypes.PropStateQueued, coord.proposals.PropQueued(coordCtx, proposalID)
	default:
		to, xerr = ctrlertypes.PropStateDefeated, coord.proposals.PropDefeated(coordCtx, proposalID)
	}
	if xerr != nil {
		return ctrlertypes.PropStateEnded, xerr
	}

	coord.logger.Info("proposal closed", "id", proposalID, "state", to, "reached", reached, "passed", passed)
	return to, nil
}

// Execute runs the action batch of a queued proposal.
// A failed batch leaves the proposal queued.
func (coord *Coordinator) Execute(ctx *ctrlertypes.CallContext, batchID uint64) xerrors.XError {
	if xerr := coord.enter(); xerr != nil {
		return xerr
	}
	defer coord.exit()

	proposalID, xerr := coord.actions.BoundProposalOf(batchID)
	if xerr != nil {
		return xerr
	} else if proposalID == 0 {
		return xerrors.ErrNotExecutable.Wrapf("batch %d is not bound to a proposal", batchID)
	}

	v, xerr := coord.proposals.GetPropVotables(proposalID, ctx.Now)
	if xerr != nil {
		return xerr
	}
	if v.State != ctrlertypes.PropStateQueued {
		return xerrors.ErrNotExecutable.Wrapf("proposal %d is %s", proposalID, v.State)
	}

	coordCtx := ctx.As(coord.self)
	if xerr := coord.actions.Execute(coordCtx, batchID); xerr != nil {
		coord.logger.Error("batch execution failed", "batch", batchID, "proposal", proposalID, "error", xerr)
		return xerr
	}
	if xerr := coord.proposals.PropExecuted(coordCtx, proposalID); xerr != nil {
		return xerr
	}

	coord.logger.Info("proposal executed", "id", proposalID, "batch", batchID)
	return nil
}

var _ ctrlertypes.ICoordinator = (*Coordinator)(nil)
