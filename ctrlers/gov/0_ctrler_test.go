package gov

import (
	"testing"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/ctrlers/action"
	"github.com/rigochain/rigo-gov/ctrlers/consensus"
	"github.com/rigochain/rigo-gov/ctrlers/directory"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/vm"
	"github.com/rigochain/rigo-gov/types"
	"github.com/stretchr/testify/require"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

var (
	owner       = types.RandAddress()
	proposer    = types.RandAddress()
	coordinator = ctrlertypes.CoordinatorAddress

	minDelay     = int64(15)
	startDelay   = int64(15)
	votingPeriod = int64(15)
)

type fixture struct {
	ctrler    *ProposalCtrler
	actions   *action.ActionCtrler
	directory *directory.Directory
	storeAddr types.Address
}

func newFixture(t *testing.T, initialise bool) *fixture {
	config := cfg.TestConfig()
	logger := tmlog.NewNopLogger()

	mech, xerr := consensus.NewSimpleMajority(config, ctrlertypes.SimpleMajorityAddress, ctrlertypes.VotingBoothAddress, uint256.NewInt(1200), logger)
	require.NoError(t, xerr)
	dir, xerr := directory.NewDirectory(config, owner, logger, mech)
	require.NoError(t, xerr)
	require.NoError(t, dir.RegisterVoteType(ctrlertypes.NewCallContext(owner, 1), &ctrlertypes.VoteType{
		ID:           ctrlertypes.SimpleMajorityVoteType,
		Mechanism:    ctrlertypes.SimpleMajorityAddress,
		BallotFormat: ctrlertypes.BallotFormatBool,
	}))

	dispatcher := vm.NewDispatcher(logger)
	storeAddr := types.RandAddress()
	dispatcher.Register(storeAddr, vm.NewNumberStore())

	actions, xerr := action.NewActionCtrler(config, ctrlertypes.ActionRegistryAddress, ctrlertypes.ProposalStoreAddress, coordinator, dispatcher, logger)
	require.NoError(t, xerr)

	ctrler, xerr := NewProposalCtrler(config, ctrlertypes.ProposalStoreAddress, owner, coordinator, dir, actions, logger)
	require.NoError(t, xerr)

	t.Cleanup(func() {
		_ = ctrler.Close()
		_ = actions.Close()
		_ = dir.Close()
		_ = mech.Close()
	})

	if initialise {
		require.NoError(t, ctrler.Initialise(ctrlertypes.NewCallContext(owner, 1), minDelay, startDelay, votingPeriod))
	}

	return &fixture{
		ctrler:    ctrler,
		actions:   actions,
		directory: dir,
		storeAddr: storeAddr,
	}
}

func (f *fixture) newBatch(t *testing.T, n uint64) uint64 {
	ctx := ctrlertypes.NewCallContext(proposer, 1)
	arg := make([]byte, 32)
	arg[31] = byte(n)
	id, xerr := f.actions.CreateBatch(ctx, []types.Address{f.storeAddr}, []string{"setNumber(uint256)"}, [][]byte{arg}, []*uint256.Int{nil}, "")
	require.NoError(t, xerr)
	return id
}

func (f *fixture) propose(t *testing.T, now int64) uint64 {
	batchID := f.newBatch(t, 1)
	id, xerr := f.ctrler.CreatePropWithExe(ctrlertypes.NewCallContext(proposer, now), "proposal", ctrlertypes.SimpleMajorityVoteType, batchID)
	require.NoError(t, xerr)
	return id
}
