package coord

import (
	"testing"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/ctrlers/action"
	"github.com/rigochain/rigo-gov/ctrlers/consensus"
	"github.com/rigochain/rigo-gov/ctrlers/directory"
	"github.com/rigochain/rigo-gov/ctrlers/gov"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/vm"
	"github.com/rigochain/rigo-gov/types"
	"github.com/stretchr/testify/require"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

var (
	owner    = types.RandAddress()
	proposer = types.RandAddress()
	voterOne = types.RandAddress()
	voterTwo = types.RandAddress()
	voterThr = types.RandAddress()

	weightsOf = map[types.Address]uint64{
		proposer: 1010,
		voterOne: 110,
		voterTwo: 1001,
		voterThr: 110,
	}
)

const (
	createdAt = int64(100)
	voteStart = createdAt + 15
	voteEnd   = voteStart + 15
)

type fixture struct {
	coord     *Coordinator
	proposals *gov.ProposalCtrler
	actions   *action.ActionCtrler
	mech      *consensus.SimpleMajority

	dispatcher *vm.Dispatcher
	store      *vm.NumberStore
	storeAddr  types.Address
}

func newFixture(t *testing.T) *fixture {
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
	store := vm.NewNumberStore()
	storeAddr := types.RandAddress()
	dispatcher.Register(storeAddr, store)

	actions, xerr := action.NewActionCtrler(config, ctrlertypes.ActionRegistryAddress, ctrlertypes.ProposalStoreAddress, ctrlertypes.CoordinatorAddress, dispatcher, logger)
	require.NoError(t, xerr)
	proposals, xerr := gov.NewProposalCtrler(config, ctrlertypes.ProposalStoreAddress, owner, ctrlertypes.CoordinatorAddress, dir, actions, logger)
	require.NoError(t, xerr)
	require.NoError(t, proposals.Initialise(ctrlertypes.NewCallContext(owner, 1), 15, 15, 15))

	t.Cleanup(func() {
		_ = proposals.Close()
		_ = actions.Close()
		_ = dir.Close()
		_ = mech.Close()
	})

	return &fixture{
		coord:      NewCoordinator(ctrlertypes.CoordinatorAddress, proposals, dir, actions, logger),
		proposals:  proposals,
		actions:    actions,
		mech:       mech,
		dispatcher: dispatcher,
		store:      store,
		storeAddr:  storeAddr,
	}
}

func (f *fixture) batch(t *testing.T, target types.Address, sig string, arg []byte) uint64 {
	id, xerr := f.actions.CreateBatch(ctrlertypes.NewCallContext(proposer, createdAt),
		[]types.Address{target}, []string{sig}, [][]byte{arg}, []*uint256.Int{nil}, "")
	require.NoError(t, xerr)
	return id
}

// propose creates a proposal setting the number of the store to n.
func (f *fixture) propose(t *testing.T, n byte) (uint64, uint64) {
	arg := make([]byte, 32)
	arg[31] = n
	return f.proposeBatch(t, f.batch(t, f.storeAddr, "setNumber(uint256)", arg))
}

func (f *fixture) proposeBatch(t *testing.T, batchID uint64) (uint64, uint64) {
	id, xerr := f.proposals.CreatePropWithExe(ctrlertypes.NewCallContext(proposer, createdAt), "", ctrlertypes.SimpleMajorityVoteType, batchID)
	require.NoError(t, xerr)
	return id, batchID
}

func (f *fixture) vote(t *testing.T, propID uint64, voter types.Address, support bool) {
	ctx := ctrlertypes.NewCallContext(voter, voteStart).As(ctrlertypes.VotingBoothAddress)
	require.NoError(t, f.mech.RecordVote(ctx, propID, voter, &ctrlertypes.WeightedChoice{
		Weight: uint256.NewInt(weightsOf[voter]),
		Choice: ctrlertypes.ChoiceOf(support),
	}))
}
