package types

import (
	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

type ILedgerHandler interface {
	Commit() ([]byte, int64, xerrors.XError)
	Rollback()
	Close() xerrors.XError
}

// IBalanceSource supplies a token balance of an account at a point in time.
// Token identifies the source and must stay the same across restarts.
type IBalanceSource interface {
	Token() types.Address
	BalanceOfAt(types.Address, int64) *uint256.Int
}

type IWeightHandler interface {
	IsInitialised() bool
	WeightOf(types.Address, int64) *uint256.Int
}

type IConsensusMechanism interface {
	Address() types.Address
	BallotFormat() string
	EncodeBallot(Choice) []byte
	DecodeBallot([]byte) (Choice, xerrors.XError)
	RecordVote(*CallContext, uint64, types.Address, *WeightedChoice) xerrors.XError
	CurrentTally(uint64) (*Tally, xerrors.XError)
	ConsensusReached(uint64) (bool, bool, xerrors.XError)
	HasVoted(uint64, types.Address) (bool, xerrors.XError)
}

type IDirectory interface {
	RegisterVoteType(*CallContext, *VoteType) xerrors.XError
	VoteType(types.VoteTypeID) (*VoteType, xerrors.XError)
	Mechanism(types.VoteTypeID) (IConsensusMechanism, xerrors.XError)
}

type IActionHandler interface {
	BindToProposal(*CallContext, uint64, uint64) xerrors.XError
	BoundProposalOf(uint64) (uint64, xerrors.XError)
	Execute(*CallContext, uint64) xerrors.XError
}

type IProposalHandler interface {
	GetPropVotables(uint64, int64) (*PropVotables, xerrors.XError)
	GetPropVoteType(uint64) (types.VoteTypeID, xerrors.XError)
	PropVoting(*CallContext, uint64) xerrors.XError
	PropQueued(*CallContext, uint64) xerrors.XError
	PropDefeated(*CallContext, uint64) xerrors.XError
	PropExpire(*CallContext, uint64) xerrors.XError
	PropExecuted(*CallContext, uint64) xerrors.XError
}

type ICoordinator interface {
	IsVotable(uint64, int64) (bool, xerrors.XError)
}

// ICallDispatcher delivers the calls of an action batch to their targets.
// RevertToSnapshot undoes every state change made after the snapshot was taken.
type ICallDispatcher interface {
	Snapshot() int
	RevertToSnapshot(int)
	Call(*CallContext, types.Address, *uint256.Int, []byte) ([]byte, xerrors.XError)
}
