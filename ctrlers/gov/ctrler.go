package gov

import (
	"errors"
	"sync"

	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/ctrlers/gov/proposal"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

const seqProposal = "gov/proposal"

// ProposalCtrler stores proposals and drives their state machine.
// Only the coordinator may move a proposal out of the active state.
type ProposalCtrler struct {
	self        types.Address
	owner       types.Address
	coordinator types.Address
	directory   ctrlertypes.IDirectory
	actions     ctrlertypes.IActionHandler

	settingsLedger ledger.ILedger[*proposal.Settings]
	proposalLedger ledger.ILedger[*proposal.Proposal]
	seqLedger      ledger.ILedger[*ctrlertypes.Sequence]

	logger log.Logger
	mtx    sync.RWMutex
}

func NewProposalCtrler(
	config *cfg.Config,
	self, owner, coordinator types.Address,
	directory ctrlertypes.IDirectory,
	actions ctrlertypes.IActionHandler,
	logger log.Logger) (*ProposalCtrler, xerrors.XError) {

	settingsLedger, xerr := ledger.NewLedger[*proposal.Settings]("gov_settings", config.LedgerDir(), 1, func() *proposal.Settings { return &proposal.Settings{} })
	if xerr != nil {
		return nil, xerr
	}
	proposalLedger, xerr := ledger.NewLedger[*proposal.Proposal]("proposals", config.LedgerDir(), 128, func() *proposal.Proposal { return &proposal.Proposal{} })
	if xerr != nil {
		_ = settingsLedger.Close()
		return nil, xerr
	}
	seqLedger, xerr := ledger.NewLedger[*ctrlertypes.Sequence]("gov_seq", config.LedgerDir(), 1, func() *ctrlertypes.Sequence { return &ctrlertypes.Sequence{} })
	if xerr != nil {
		_ = settingsLedger.Close()
		_ = proposalLedger.Close()
		return nil, xerr
	}

	return &ProposalCtrler{
		self:           self,
		owner:          owner,
		coordinator:    coordinator,
		directory:      directory,
		actions:        actions,
		settingsLedger: settingsLedger,
		proposalLedger: proposalLedger,
		seqLedger:      seqLedger,
		logger:         logger.With("module", "rigo_ProposalCtrler"),
	}, nil
}

func (ctrler *ProposalCtrler) Initialise(ctx *ctrlertypes.CallContext, minDelay, startDelay, votingPeriod int64) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.owner {
		return xerrors.ErrUnauthorized.Wrapf("only the owner can initialise the proposal store")
	}
	if _, xerr := ctrler.settings(); xerr == nil {
		return xerrors.ErrAlreadyInitialized.Wrapf("proposal store")
	} else if !errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return xerr
	}

	settings, xerr := proposal.NewSettings(minDelay, startDelay, votingPeriod)
	if xerr != nil {
		return xerr
	}
	return ctrler.settingsLedger.Set(settings)
}

func (ctrler *ProposalCtrler) settings() (*proposal.Settings, xerrors.XError) {
	return ctrler.settingsLedger.Get((&proposal.Settings{}).Key())
}

// Settings returns the timing parameters, or nil before initialisation.
func (ctrler *ProposalCtrler) Settings() *proposal.Settings {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	s, xerr := ctrler.settings()
	if xerr != nil {
		return nil
	}
	_s := *s
	return &_s
}

func (ctrler *ProposalCtrler) CreatePropWithExe(ctx *ctrlertypes.CallContext, description string, voteTypeID types.VoteTypeID, batchID uint64) (uint64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	settings, xerr := ctrler.settings()
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return 0, xerrors.ErrInvalidParams.Wrapf("proposal store is not initialised")
	} else if xerr != nil {
		return 0, xerr
	}

	if _, xerr := ctrler.directory.VoteType(voteTypeID); xerr != nil {
		return 0, xerrors.ErrUnknownVoteType.Wrap(xerr)
	}

	if bound, xerr := ctrler.actions.BoundProposalOf(batchID); xerr != nil {
		return 0, xerrors.ErrUnknownBatch.Wrap(xerr)
	} else if bound != 0 {
		return 0, xerrors.ErrUnknownBatch.Wrapf("batch %d is bound to proposal %d", batchID, bound)
	}

	id, xerr := ctrlertypes.NextSequence(ctrler.seqLedger, seqProposal)
	if xerr != nil {
		return 0, xerr
	}

	if xerr := ctrler.actions.BindToProposal(ctx.As(ctrler.self), batchID, id); xerr != nil {
		return 0, xerr
	}

	voteStart := ctx.Now + settings.StartDelay
	voteEnd := voteStart + settings.VotingPeriod
	prop := proposal.NewProposal(id, description, voteTypeID, batchID, voteStart, voteEnd, ctx.Caller)
	if xerr := ctrler.proposalLedger.Set(prop); xerr != nil {
		return 0, xerr
	}

	ctx.Emit(ctrlertypes.ProposalCreatedEvent(id, batchID))
	ctrler.logger.Debug("proposal created", "id", id, "batch", batchID, "voteStart", voteStart, "voteEnd", voteEnd)
	return id, nil
}

func (ctrler *ProposalCtrler) getProposal(id uint64) (*proposal.Proposal, xerrors.XError) {
	prop, xerr := ctrler.proposalLedger.Get(proposal.ProposalKey(id))
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return nil, xerrors.ErrNotFound.Wrapf("proposal %d", id)
	} else if xerr != nil {
		return nil, xerr
	}
	return prop, nil
}

func (ctrler *ProposalCtrler) GetProposal(id uint64) (*proposal.Proposal, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	prop, xerr := ctrler.getProposal(id)
	if xerr != nil {
		return nil, xerr
	}
	return prop.Clone(), nil
}

func (ctrler *ProposalCtrler) GetPropVotables(id uint64, now int64) (*ctrlertypes.PropVotables, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	prop, xerr := ctrler.getProposal(id)
	if xerr != nil {
		return nil, xerr
	}
	return prop.Votables(now), nil
}

func (ctrler *ProposalCtrler) GetPropVoteType(id uint64) (types.VoteTypeID, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	prop, xerr := ctrler.getProposal(id)
	if xerr != nil {
		return types.VoteTypeID{}, xerr
	}
	return prop.Clone().VoteTypeID, nil
}

func (ctrler *ProposalCtrler) PropVoting(ctx *ctrlertypes.CallContext, id uint64) xerrors.XError {
	return ctrler.transit(ctx, id, ctrlertypes.PropStateEnded, "")
}

func (ctrler *ProposalCtrler) PropQueued(ctx *ctrlertypes.CallContext, id uint64) xerrors.XError {
	return ctrler.transit(ctx, id, ctrlertypes.PropStateQueued, "queued")
}

func (ctrler *ProposalCtrler) PropDefeated(ctx *ctrlertypes.CallContext, id uint64) xerrors.XError {
	return ctrler.transit(ctx, id, ctrlertypes.PropStateDefeated, "defeated")
}

func (ctrler *ProposalCtrler) PropExpire(ctx *ctrlertypes.CallContext, id uint64) xerrors.XError {
	return ctrler.transit(ctx, id, ctrlertypes.PropStateExpired, "expired")
}

func (ctrler *ProposalCtrler) PropExecuted(ctx *ctrlertypes.CallContext, id uint64) xerrors.XError {
	return ctrler.transit(ctx, id, ctrlertypes.PropStateExecuted, "executed")
}

// transit applies one state transition and emits evtKey unless it is empty.
func (ctrler *ProposalCtrler) transit(ctx *ctrlertypes.CallContext, id uint64, to ctrlertypes.PropState, evtKey string) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.coordinator {
		return xerrors.ErrUnauthorized.Wrapf("only the coordinator can change the state of a proposal")
	}

	prop, xerr := ctrler.getProposal(id)
	if xerr != nil {
		return xerr
	}
	if xerr := prop.Transit(to); xerr != nil {
		return xerr
	}
	if xerr := ctrler.proposalLedger.Set(prop); xerr != nil {
		return xerr
	}

	if evtKey != "" {
		ctx.Emit(ctrlertypes.ProposalStateEvent(evtKey, id))
	}
	ctrler.logger.Debug("proposal state changed", "id", id, "state", to)
	return nil
}

func (ctrler *ProposalCtrler) Commit() ([]byte, int64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	h0, v0, xerr := ctrler.proposalLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	h1, _, xerr := ctrler.settingsLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	h2, _, xerr := ctrler.seqLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	return append(append(h0, h1...), h2...), v0, nil
}

func (ctrler *ProposalCtrler) Rollback() {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	ctrler.proposalLedger.Rollback()
	ctrler.settingsLedger.Rollback()
	ctrler.seqLedger.Rollback()
}

func (ctrler *ProposalCtrler) Close() xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctrler.proposalLedger != nil {
		if xerr := ctrler.proposalLedger.Close(); xerr != nil {
			ctrler.logger.Error("proposalLedger.Close()", "error", xerr.Error())
		}
		ctrler.proposalLedger = nil
	}
	if ctrler.settingsLedger != nil {
		if xerr := ctrler.settingsLedger.Close(); xerr != nil {
			ctrler.logger.Error("settingsLedger.Close()", "error", xerr.Error())
		}
		ctrler.settingsLedger = nil
	}
	if ctrler.seqLedger != nil {
		if xerr := ctrler.seqLedger.Close(); xerr != nil {
			ctrler.logger.Error("seqLedger.Close()", "error", xerr.Error())
		}
		ctrler.seqLedger = nil
	}
	return nil
}

var _ ctrlertypes.IProposalHandler = (*ProposalCtrler)(nil)
var _ ctrlertypes.ILedgerHandler = (*ProposalCtrler)(nil)
