package booth

import (
	"errors"
	"sync"

	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

const seqInstalled = "booth/installed"

// BoothCtrler is the only entry point for votes. It checks the ballot and the
// voting window, weighs the voter and forwards the vote to the mechanism
// counting the proposal's vote type.
type BoothCtrler struct {
	self        types.Address
	owner       types.Address
	directory   ctrlertypes.IDirectory
	proposals   ctrlertypes.IProposalHandler
	coordinator ctrlertypes.ICoordinator
	weights     ctrlertypes.IWeightHandler

	voteTypeLedger ledger.ILedger[*ctrlertypes.VoteType]
	seqLedger      ledger.ILedger[*ctrlertypes.Sequence]

	logger log.Logger
	mtx    sync.RWMutex
}

func NewBoothCtrler(
	config *cfg.Config,
	self, owner types.Address,
	directory ctrlertypes.IDirectory,
	proposals ctrlertypes.IProposalHandler,
	coordinator ctrlertypes.ICoordinator,
	weights ctrlertypes.IWeightHandler,
	logger log.Logger) (*BoothCtrler, xerrors.XError) {

	voteTypeLedger, xerr := ledger.NewLedger[*ctrlertypes.VoteType]("booth_vote_types", config.LedgerDir(), 16, func() *ctrlertypes.VoteType { return &ctrlertypes.VoteType{} })
	if xerr != nil {
		return nil, xerr
	}
	seqLedger, xerr := ledger.NewLedger[*ctrlertypes.Sequence]("booth_seq", config.LedgerDir(), 1, func() *ctrlertypes.Sequence { return &ctrlertypes.Sequence{} })
	if xerr != nil {
		_ = voteTypeLedger.Close()
		return nil, xerr
	}

	return &BoothCtrler{
		self:           self,
		owner:          owner,
		directory:      directory,
		proposals:      proposals,
		coordinator:    coordinator,
		weights:        weights,
		voteTypeLedger: voteTypeLedger,
		seqLedger:      seqLedger,
		logger:         logger.With("module", "rigo_BoothCtrler"),
	}, nil
}

// Initialise registers the first vote type in the directory and installs it.
func (ctrler *BoothCtrler) Initialise(ctx *ctrlertypes.CallContext, mechanism types.Address, voteTypeID types.VoteTypeID, ballotFormat string) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.owner {
		return xerrors.ErrUnauthorized.Wrapf("only the owner can initialise the voting booth")
	}
	if n, xerr := ctrlertypes.CurrentSequence(ctrler.seqLedger, seqInstalled); xerr != nil {
		return xerr
	} else if n > 0 {
		return xerrors.ErrAlreadyInitialized.Wrapf("voting booth")
	}

	vt := &ctrlertypes.VoteType{
		ID:           voteTypeID,
		Mechanism:    mechanism,
		BallotFormat: ballotFormat,
	}
	if xerr := ctrler.directory.RegisterVoteType(ctx, vt); xerr != nil {
		return xerr
	}
	return ctrler.install(vt)
}

// InstallVoteType makes a vote type already registered in the directory
// available to proposals voted through this booth.
func (ctrler *BoothCtrler) InstallVoteType(ctx *ctrlertypes.CallContext, voteTypeID types.VoteTypeID) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.owner {
		return xerrors.ErrUnauthorized.Wrapf("only the owner can install a vote type")
	}
	if n, xerr := ctrlertypes.CurrentSequence(ctrler.seqLedger, seqInstalled); xerr != nil {
		return xerr
	} else if n == 0 {
		return xerrors.ErrInvalidParams.Wrapf("voting booth is not initialised")
	}

	vt, xerr := ctrler.directory.VoteType(voteTypeID)
	if xerr != nil {
		return xerr
	}
	if _, xerr := ctrler.voteTypeLedger.Get(vt.Key()); xerr == nil {
		return xerrors.ErrAlreadyInitialized.Wrapf("vote type %s is already installed", voteTypeID.Name())
	} else if !errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return xerr
	}
	return ctrler.install(vt)
}

func (ctrler *BoothCtrler) install(vt *ctrlertypes.VoteType) xerrors.XError {
	if xerr := ctrler.voteTypeLedger.Set(vt); xerr != nil {
		return xerr
	}
	if _, xerr := ctrlertypes.NextSequence(ctrler.seqLedger, seqInstalled); xerr != nil {
		return xerr
	}
	ctrler.logger.Debug("vote type installed", "id", vt.ID.Name(), "mechanism", vt.Mechanism)
	return nil
}

func (ctrler *BoothCtrler) IsInstalled(voteTypeID types.VoteTypeID) bool {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	_, xerr := ctrler.voteTypeLedger.Get(ledger.LedgerKey(voteTypeID))
	return xerr == nil
}

func (ctrler *BoothCtrler) Vote(ctx *ctrlertypes.CallContext, proposalID uint64, ballot []byte) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	voteTypeID, xerr := ctrler.proposals.GetPropVoteType(proposalID)
	if xerr != nil {
		return xerrors.ErrInvalidProposalOrType.Wrap(xerr)
	}
	if _, xerr := ctrler.voteTypeLedger.Get(ledger.LedgerKey(voteTypeID)); xerr != nil {
		return xerrors.ErrInvalidProposalOrType.Wrapf("vote type %s is not installed", voteTypeID.Name())
	}
	mech, xerr := ctrler.directory.Mechanism(voteTypeID)
	if xerr != nil {
		return xerrors.ErrInvalidProposalOrType.Wrap(xerr)
	}

	choice, xerr := mech.DecodeBallot(ballot)
	if xerr != nil {
		return xerr
	}

	if ok, xerr := ctrler.coordinator.IsVotable(proposalID, ctx.Now); xerr != nil {
		return xerr
	} else if !ok {
		return xerrors.ErrNotVotable.Wrapf("proposal %d at %d", proposalID, ctx.Now)
	}

	if !ctrler.weights.IsInitialised() {
		return xerrors.ErrNotVotable.Wrapf("weight oracle is not initialised")
	}
	weight := ctrler.weights.WeightOf(ctx.Caller, ctx.Now)
	return mech.RecordVote(ctx.As(ctrler.self), proposalID, ctx.Caller, &ctrlertypes.WeightedChoice{
		Weight: weight,
		Choice: choice,
	})
}

func (ctrler *BoothCtrler) Commit() ([]byte, int64, xerrors.XError) {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	h0, v0, xerr := ctrler.voteTypeLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	h1, _, xerr := ctrler.seqLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	return append(h0, h1...), v0, nil
}

func (ctrler *BoothCtrler) Rollback() {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	ctrler.voteTypeLedger.Rollback()
	ctrler.seqLedger.Rollback()
}

func (ctrler *BoothCtrler) Close() xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctrler.voteTypeLedger != nil {
		if xerr := ctrler.voteTypeLedger.Close(); xerr != nil {
			ctrler.logger.Error("voteTypeLedger.Close()", "error", xerr.Error())
		}
		ctrler.voteTypeLedger = nil
	}
	if ctrler.seqLedger != nil {
		if xerr := ctrler.seqLedger.Close(); xerr != nil {
			ctrler.logger.Error("seqLedger.Close()", "error", xerr.Error())
		}
		ctrler.seqLedger = nil
	}
	return nil
}

var _ ctrlertypes.ILedgerHandler = (*BoothCtrler)(nil)
