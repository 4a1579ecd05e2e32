package consensus

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

// SimpleMajority counts one weighted bool ballot per voter.
// A proposal reaches quorum when the total weight cast is at least the quorum,
// and passes when the weight for is greater than the weight against.
type SimpleMajority struct {
	self   types.Address
	booth  types.Address
	quorum *uint256.Int

	ballotLedger ledger.ILedger[*Ballot]
	tallyLedger  ledger.ILedger[*ctrlertypes.Tally]

	logger log.Logger
	mtx    sync.RWMutex
}

func NewSimpleMajority(config *cfg.Config, self, booth types.Address, quorum *uint256.Int, logger log.Logger) (*SimpleMajority, xerrors.XError) {
	ballotLedger, xerr := ledger.NewLedger[*Ballot]("sm_ballots", config.LedgerDir(), 128, func() *Ballot { return &Ballot{} })
	if xerr != nil {
		return nil, xerr
	}
	tallyLedger, xerr := ledger.NewLedger[*ctrlertypes.Tally]("sm_tallies", config.LedgerDir(), 128, func() *ctrlertypes.Tally { return &ctrlertypes.Tally{} })
	if xerr != nil {
		_ = ballotLedger.Close()
		return nil, xerr
	}

	return &SimpleMajority{
		self:         self,
		booth:        booth,
		quorum:       quorum.Clone(),
		ballotLedger: ballotLedger,
		tallyLedger:  tallyLedger,
		logger:       logger.With("module", "rigo_SimpleMajority"),
	}, nil
}

func (sm *SimpleMajority) Address() types.Address {
	return sm.self
}

func (sm *SimpleMajority) BallotFormat() string {
	return ctrlertypes.BallotFormatBool
}

func (sm *SimpleMajority) Quorum() *uint256.Int {
	return sm.quorum.Clone()
}

func (sm *SimpleMajority) EncodeBallot(choice ctrlertypes.Choice) []byte {
	return EncodeBoolBallot(choice)
}

func (sm *SimpleMajority) DecodeBallot(bz []byte) (ctrlertypes.Choice, xerrors.XError) {
	return DecodeBoolBallot(bz)
}

func (sm *SimpleMajority) RecordVote(ctx *ctrlertypes.CallContext, propID uint64, voter types.Address, wc *ctrlertypes.WeightedChoice) xerrors.XError {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if ctx.Caller != sm.booth {
		return xerrors.ErrUnauthorized.Wrapf("only the voting booth can record a vote")
	}
	if wc == nil || wc.Weight == nil {
		return xerrors.ErrInvalidParams.Wrapf("no weight")
	}

	if _, xerr := sm.ballotLedger.Get(BallotKey(propID, voter)); xerr == nil {
		return xerrors.ErrDuplicateVote.Wrapf("voter %s on proposal %d", voter.Hex(), propID)
	} else if !errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return xerr
	}

	tally, xerr := sm.tally(propID)
	if xerr != nil {
		return xerr
	}
	side := tally.WeightAgainst
	if wc.Choice.IsFor() {
		side = tally.WeightFor
	}
	sum, overflow := new(uint256.Int).AddOverflow(side, wc.Weight)
	if overflow {
		return xerrors.ErrInvalidParams.Wrapf("%s weight of proposal %d overflows", wc.Choice, propID)
	}
	if wc.Choice.IsFor() {
		tally.WeightFor = sum
	} else {
		tally.WeightAgainst = sum
	}
	tally.VoterTurnout++

	ballot := &Ballot{
		ProposalID: propID,
		Voter:      voter,
		Weight:     wc.Weight.Clone(),
		Choice:     wc.Choice,
		CastAt:     ctx.Now,
	}
	if xerr := sm.ballotLedger.Set(ballot); xerr != nil {
		return xerr
	}
	if xerr := sm.tallyLedger.Set(tally); xerr != nil {
		return xerr
	}

	ctx.Emit(ctrlertypes.VoteCastEvent(propID, voter, wc.Choice, wc.Weight))
	sm.logger.Debug("vote recorded", "proposal", propID, "voter", voter, "choice", wc.Choice, "weight", wc.Weight.Dec())
	return nil
}

// tally returns the stored tally or a new zero tally.
func (sm *SimpleMajority) tally(propID uint64) (*ctrlertypes.Tally, xerrors.XError) {
	tally, xerr := sm.tallyLedger.Get(ctrlertypes.NewTally(propID).Key())
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return ctrlertypes.NewTally(propID), nil
	} else if xerr != nil {
		return nil, xerr
	}
	return tally, nil
}

func (sm *SimpleMajority) CurrentTally(propID uint64) (*ctrlertypes.Tally, xerrors.XError) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	tally, xerr := sm.tally(propID)
	if xerr != nil {
		return nil, xerr
	}
	return tally.Clone(), nil
}

// ConsensusReached compares exact tallies, since RecordVote refuses a ballot
// overflowing either side. Only the total may exceed 2^256-1, and then the
// quorum is reached.
func (sm *SimpleMajority) ConsensusReached(propID uint64) (bool, bool, xerrors.XError) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	tally, xerr := sm.tally(propID)
	if xerr != nil {
		return false, false, xerr
	}
	total, overflow := new(uint256.Int).AddOverflow(tally.WeightFor, tally.WeightAgainst)
	reached := overflow || !total.Lt(sm.quorum)
	passed := tally.WeightFor.Gt(tally.WeightAgainst)
	return reached, passed, nil
}

func (sm *SimpleMajority) HasVoted(propID uint64, voter types.Address) (bool, xerrors.XError) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if _, xerr := sm.ballotLedger.Get(BallotKey(propID, voter)); xerr == nil {
		return true, nil
	} else if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return false, nil
	} else {
		return false, xerr
	}
}

func (sm *SimpleMajority) GetBallot(propID uint64, voter types.Address) (*Ballot, xerrors.XError) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	ballot, xerr := sm.ballotLedger.Get(BallotKey(propID, voter))
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return nil, xerrors.ErrNotFound.Wrapf("ballot of %s on proposal %d", voter.Hex(), propID)
	} else if xerr != nil {
		return nil, xerr
	}
	_b := *ballot
	_b.Weight = ballot.Weight.Clone()
	return &_b, nil
}

func (sm *SimpleMajority) Commit() ([]byte, int64, xerrors.XError) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	h0, v0, xerr := sm.ballotLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	h1, _, xerr := sm.tallyLedger.Commit()
	if xerr != nil {
		return nil, -1, xerr
	}
	return append(h0, h1...), v0, nil
}

func (sm *SimpleMajority) Rollback() {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	sm.ballotLedger.Rollback()
	sm.tallyLedger.Rollback()
}

func (sm *SimpleMajority) Close() xerrors.XError {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if sm.ballotLedger != nil {
		if xerr := sm.ballotLedger.Close(); xerr != nil {
			sm.logger.Error("ballotLedger.Close()", "error", xerr.Error())
		}
		sm.ballotLedger = nil
	}
	if sm.tallyLedger != nil {
		if xerr := sm.tallyLedger.Close(); xerr != nil {
			sm.logger.Error("tallyLedger.Close()", "error", xerr.Error())
		}
		sm.tallyLedger = nil
	}
	return nil
}

var _ ctrlertypes.IConsensusMechanism = (*SimpleMajority)(nil)
var _ ctrlertypes.ILedgerHandler = (*SimpleMajority)(nil)
