package consensus

import (
	"testing"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/stretchr/testify/require"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

var (
	booth     = ctrlertypes.VotingBoothAddress
	quorum    = uint256.NewInt(1200)
	proposer  = types.RandAddress()
	voterOne  = types.RandAddress()
	voterTwo  = types.RandAddress()
	voterThr  = types.RandAddress()
	weightsOf = map[types.Address]uint64{
		proposer: 1010,
		voterOne: 110,
		voterTwo: 110,
		voterThr: 1001,
	}
)

func newSimpleMajority(t *testing.T, q *uint256.Int) *SimpleMajority {
	sm, xerr := NewSimpleMajority(cfg.TestConfig(), ctrlertypes.SimpleMajorityAddress, booth, q, tmlog.NewNopLogger())
	require.NoError(t, xerr)
	t.Cleanup(func() { _ = sm.Close() })
	return sm
}

func boothCtx(now int64) *ctrlertypes.CallContext {
	return ctrlertypes.NewCallContext(types.RandAddress(), now).As(booth)
}

func vote(sm *SimpleMajority, propID uint64, voter types.Address, support bool) error {
	return sm.RecordVote(boothCtx(1), propID, voter, &ctrlertypes.WeightedChoice{
		Weight: uint256.NewInt(weightsOf[voter]),
		Choice: ctrlertypes.ChoiceOf(support),
	})
}
