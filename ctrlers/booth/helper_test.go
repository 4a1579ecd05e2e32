package booth

import (
	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

type proposalsMock struct {
	voteTypes map[uint64]types.VoteTypeID
}

func (m *proposalsMock) GetPropVotables(id uint64, _ int64) (*ctrlertypes.PropVotables, xerrors.XError) {
	if _, ok := m.voteTypes[id]; !ok {
		return nil, xerrors.ErrNotFound.Wrapf("proposal %d", id)
	}
	return &ctrlertypes.PropVotables{State: ctrlertypes.PropStateActive}, nil
}

func (m *proposalsMock) GetPropVoteType(id uint64) (types.VoteTypeID, xerrors.XError) {
	vt, ok := m.voteTypes[id]
	if !ok {
		return types.VoteTypeID{}, xerrors.ErrNotFound.Wrapf("proposal %d", id)
	}
	return vt, nil
}

func (m *proposalsMock) PropVoting(*ctrlertypes.CallContext, uint64) xerrors.XError   { return nil }
func (m *proposalsMock) PropQueued(*ctrlertypes.CallContext, uint64) xerrors.XError   { return nil }
func (m *proposalsMock) PropDefeated(*ctrlertypes.CallContext, uint64) xerrors.XError { return nil }
func (m *proposalsMock) PropExpire(*ctrlertypes.CallContext, uint64) xerrors.XError   { return nil }
func (m *proposalsMock) PropExecuted(*ctrlertypes.CallContext, uint64) xerrors.XError { return nil }

// windowMock accepts votes within [start, end].
type windowMock struct {
	start, end int64
}

func (m *windowMock) IsVotable(_ uint64, now int64) (bool, xerrors.XError) {
	return m.start <= now && now <= m.end, nil
}

// weightsMock is uninitialised when nil.
type weightsMock map[types.Address]uint64

func (m weightsMock) IsInitialised() bool {
	return m != nil
}

func (m weightsMock) WeightOf(addr types.Address, _ int64) *uint256.Int {
	return uint256.NewInt(m[addr])
}

var (
	_ ctrlertypes.IProposalHandler = (*proposalsMock)(nil)
	_ ctrlertypes.ICoordinator     = (*windowMock)(nil)
	_ ctrlertypes.IWeightHandler   = weightsMock(nil)
)
