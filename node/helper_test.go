package node

import (
	"testing"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/ctrlers/consensus"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/vm"
	"github.com/rigochain/rigo-gov/ctrlers/weight"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/stretchr/testify/require"
	tmlog "github.com/tendermint/tendermint/libs/log"
)

const genesisTime = int64(1_000)

var (
	owner    = types.ModuleAddress("owner")
	proposer = types.RandAddress()
	voterOne = types.RandAddress()
	voterTwo = types.RandAddress()
	voterThr = types.RandAddress()

	govToken = types.ModuleAddress("gov-token")
	repToken = types.ModuleAddress("rep-token")

	// gov and reputation balances
	balances = map[types.Address][2]uint64{
		proposer: {1000, 10},
		voterOne: {100, 10},
		voterTwo: {1000, 1},
		voterThr: {100, 10},
	}

	yes = consensus.EncodeBoolBallot(ctrlertypes.ChoiceFor)
	no  = consensus.EncodeBoolBallot(ctrlertypes.ChoiceAgainst)
)

type testApp struct {
	*GovApp
	clock     *types.ManualClock
	store     *vm.NumberStore
	storeAddr types.Address
}

func newBooks() (*weight.BalanceBook, *weight.BalanceBook) {
	govBook, repBook := weight.NewBalanceBook(govToken), weight.NewBalanceBook(repToken)
	for addr, b := range balances {
		govBook.SetBalance(addr, 0, uint256.NewInt(b[0]))
		repBook.SetBalance(addr, 0, uint256.NewInt(b[1]))
	}
	return govBook, repBook
}

func newTestApp(t *testing.T, config *cfg.Config) *testApp {
	clock := types.NewManualClock(genesisTime)
	app, err := NewGovApp(config, clock, tmlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop() })

	ta := &testApp{
		GovApp:    app,
		clock:     clock,
		store:     vm.NewNumberStore(),
		storeAddr: types.RandAddress(),
	}
	app.RegisterTarget(ta.storeAddr, ta.store)
	return ta
}

func newInitialisedApp(t *testing.T) *testApp {
	ta := newTestApp(t, cfg.TestConfig())
	govBook, repBook := newBooks()
	_, xerr := ta.InitGovernance(owner, govBook, repBook)
	require.NoError(t, xerr)
	return ta
}

func numberArg(n uint64) []byte {
	bz := uint256.NewInt(n).Bytes32()
	return bz[:]
}

// propose creates a batch setting the number of the store to n and a
// proposal executing it. It returns the proposal id and the batch id.
func (ta *testApp) propose(t *testing.T, n uint64) (uint64, uint64) {
	batchID, _, xerr := ta.CreateBatch(proposer,
		[]types.Address{ta.storeAddr},
		[]string{"setNumber(uint256)"},
		[][]byte{numberArg(n)},
		[]*uint256.Int{nil},
		"set number")
	require.NoError(t, xerr)
	return ta.proposeBatch(t, batchID), batchID
}

func (ta *testApp) proposeBatch(t *testing.T, batchID uint64) uint64 {
	propID, _, xerr := ta.Propose(proposer, "proposal", ctrlertypes.SimpleMajorityVoteType, batchID)
	require.NoError(t, xerr)
	return propID
}

func (ta *testApp) window(t *testing.T, propID uint64) (int64, int64) {
	prop, xerr := ta.Proposal(propID)
	require.NoError(t, xerr)
	return prop.VoteStart, prop.VoteEnd
}

func (ta *testApp) vote(t *testing.T, propID uint64, voter types.Address, ballot []byte) {
	_, xerr := ta.Vote(voter, propID, ballot)
	require.NoError(t, xerr)
}

// switchTarget fails while broken is set.
type switchTarget struct {
	broken bool
	calls  int
}

func (s *switchTarget) Call(_ *ctrlertypes.CallContext, _ *uint256.Int, _ []byte, journal vm.IJournal) ([]byte, xerrors.XError) {
	if s.broken {
		return nil, xerrors.New("switch target is broken")
	}
	s.calls++
	journal.OnRevert(func() { s.calls-- })
	return nil, nil
}

// reentrantTarget calls back into the app while its batch is executing.
// It executes the batch again, or reads its proposal when readOnly is set.
type reentrantTarget struct {
	app      *GovApp
	batchID  uint64
	propID   uint64
	readOnly bool
	err      xerrors.XError
}

func (r *reentrantTarget) Call(*ctrlertypes.CallContext, *uint256.Int, []byte, vm.IJournal) ([]byte, xerrors.XError) {
	if r.readOnly {
		_, r.err = r.app.Proposal(r.propID)
	} else {
		_, r.err = r.app.Execute(owner, r.batchID)
	}
	return nil, r.err
}
