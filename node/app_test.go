package node

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/weight"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/stretchr/testify/require"
)

func TestInitGovernance(t *testing.T) {
	ta := newTestApp(t, cfg.TestConfig())
	govBook, repBook := newBooks()

	_, xerr := ta.InitGovernance(proposer, govBook, repBook)
	require.ErrorIs(t, xerr, xerrors.ErrUnauthorized)
	_, xerr = ta.InitGovernance(owner, nil, repBook)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidParams)
	require.Equal(t, int64(0), ta.Info().LastHeight)

	// nothing is staged before initialisation
	_, _, xerr = ta.Propose(proposer, "", ctrlertypes.SimpleMajorityVoteType, 1)
	require.Error(t, xerr)

	_, xerr = ta.InitGovernance(owner, govBook, repBook)
	require.NoError(t, xerr)
	require.Equal(t, int64(1), ta.Info().LastHeight)

	_, xerr = ta.InitGovernance(owner, govBook, repBook)
	require.ErrorIs(t, xerr, xerrors.ErrAlreadyInitialized)

	params, xerr := ta.GovParams()
	require.NoError(t, xerr)
	require.Equal(t, int64(15), params.VotingPeriod())
	require.Equal(t, uint64(1200), params.Quorum().Uint64())

	vts, xerr := ta.VoteTypes()
	require.NoError(t, xerr)
	require.Len(t, vts, 1)
	require.Equal(t, ctrlertypes.SimpleMajorityVoteType, vts[0].ID)

	require.Equal(t, uint64(1010), ta.WeightOf(proposer).Uint64())
	require.Equal(t, uint64(110), ta.WeightOf(voterOne).Uint64())
	require.Equal(t, uint64(1001), ta.WeightOf(voterTwo).Uint64())
}

// passed, queued and executed
func TestScenario_Executed(t *testing.T) {
	ta := newInitialisedApp(t)
	propID, batchID := ta.propose(t, 42)
	require.Equal(t, uint64(1), propID)
	require.Equal(t, uint64(1), batchID)

	voteStart, voteEnd := ta.window(t, propID)
	require.Equal(t, genesisTime+15, voteStart)
	require.Equal(t, voteStart+15, voteEnd)

	phase, xerr := ta.Phase(propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStatePending, phase)

	ta.clock.Set(voteStart)
	ta.vote(t, propID, proposer, yes)
	ta.vote(t, propID, voterOne, no)
	ta.vote(t, propID, voterTwo, yes)
	ta.clock.Set(voteEnd)
	ta.vote(t, propID, voterThr, yes)

	tally, xerr := ta.Tally(propID)
	require.NoError(t, xerr)
	require.Equal(t, uint64(2121), tally.WeightFor.Uint64())
	require.Equal(t, uint64(110), tally.WeightAgainst.Uint64())
	require.Equal(t, uint64(4), tally.VoterTurnout)

	voted, xerr := ta.HasVoted(propID, voterThr)
	require.NoError(t, xerr)
	require.True(t, voted)

	ta.clock.Set(voteEnd + 1)
	state, evts, xerr := ta.Queue(proposer, propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStateQueued, state)
	v, ok := ctrlertypes.FindEventAttr(evts, ctrlertypes.EventTypeProposal, "queued")
	require.True(t, ok)
	require.Equal(t, "1", v)

	evts, xerr = ta.Execute(types.RandAddress(), batchID)
	require.NoError(t, xerr)
	_, ok = ctrlertypes.FindEventAttr(evts, ctrlertypes.EventTypeProposal, "executed")
	require.True(t, ok)
	require.Equal(t, int64(42), ta.store.Number().Int64())

	phase, xerr = ta.Phase(propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStateExecuted, phase)

	prop, xerr := ta.Proposal(propID)
	require.NoError(t, xerr)
	require.True(t, prop.Spent)

	batch, xerr := ta.Batch(batchID)
	require.NoError(t, xerr)
	require.True(t, batch.Executed)

	_, xerr = ta.Execute(types.RandAddress(), batchID)
	require.ErrorIs(t, xerr, xerrors.ErrNotExecutable)
	_, _, xerr = ta.Queue(proposer, propID)
	require.ErrorIs(t, xerr, xerrors.ErrVotingActiveOrExecuted)
}

// quorum not reached
func TestScenario_Expired(t *testing.T) {
	ta := newInitialisedApp(t)
	propID, batchID := ta.propose(t, 42)
	voteStart, voteEnd := ta.window(t, propID)

	ta.clock.Set(voteStart)
	ta.vote(t, propID, voterOne, yes)
	ta.vote(t, propID, voterThr, yes)

	ta.clock.Set(voteEnd + 1)
	state, evts, xerr := ta.Queue(proposer, propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStateExpired, state)
	_, ok := ctrlertypes.FindEventAttr(evts, ctrlertypes.EventTypeProposal, "expired")
	require.True(t, ok)

	_, xerr = ta.Execute(proposer, batchID)
	require.ErrorIs(t, xerr, xerrors.ErrNotExecutable)

	expired, xerr := ta.ProposalsByState(ctrlertypes.PropStateExpired)
	require.NoError(t, xerr)
	require.Len(t, expired, 1)
}

// quorum reached but voted down
func TestScenario_Defeated(t *testing.T) {
	ta := newInitialisedApp(t)
	propID, batchID := ta.propose(t, 42)
	voteStart, voteEnd := ta.window(t, propID)

	ta.clock.Set(voteStart)
	ta.vote(t, propID, proposer, no)
	ta.vote(t, propID, voterTwo, yes)

	ta.clock.Set(voteEnd + 1)
	state, evts, xerr := ta.Queue(proposer, propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStateDefeated, state)
	_, ok := ctrlertypes.FindEventAttr(evts, ctrlertypes.EventTypeProposal, "defeated")
	require.True(t, ok)

	_, xerr = ta.Execute(proposer, batchID)
	require.ErrorIs(t, xerr, xerrors.ErrNotExecutable)
	require.Equal(t, int64(0), ta.store.Number().Int64())
}

// rejected votes and an early queue
func TestScenario_Rejected(t *testing.T) {
	ta := newInitialisedApp(t)
	propID, _ := ta.propose(t, 42)
	voteStart, voteEnd := ta.window(t, propID)

	ta.clock.Set(voteStart - 1)
	_, xerr := ta.Vote(voterOne, propID, yes)
	require.ErrorIs(t, xerr, xerrors.ErrNotVotable)

	ta.clock.Set(voteStart)
	_, xerr = ta.Vote(voterOne, propID, []byte{0x01})
	require.ErrorIs(t, xerr, xerrors.ErrMalformedBallot)
	_, xerr = ta.Vote(voterOne, 0, yes)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidProposalOrType)
	_, xerr = ta.Vote(voterOne, propID+1, yes)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidProposalOrType)

	ta.vote(t, propID, voterOne, yes)
	_, xerr = ta.Vote(voterOne, propID, no)
	require.ErrorIs(t, xerr, xerrors.ErrDuplicateVote)

	ta.clock.Set(voteEnd)
	_, _, xerr = ta.Queue(proposer, propID)
	require.ErrorIs(t, xerr, xerrors.ErrVotingActiveOrExecuted)

	ta.clock.Set(voteEnd + 1)
	_, xerr = ta.Vote(voterTwo, propID, yes)
	require.ErrorIs(t, xerr, xerrors.ErrNotVotable)

	tally, xerr := ta.Tally(propID)
	require.NoError(t, xerr)
	require.Equal(t, uint64(110), tally.WeightFor.Uint64())
	require.Equal(t, uint64(1), tally.VoterTurnout)
}

func TestPropose_Errors(t *testing.T) {
	ta := newInitialisedApp(t)

	_, _, xerr := ta.Propose(proposer, "", ctrlertypes.SimpleMajorityVoteType, 0)
	require.ErrorIs(t, xerr, xerrors.ErrUnknownBatch)
	_, _, xerr = ta.Propose(proposer, "", types.VoteTypeIDFromString("NONE"), 1)
	require.ErrorIs(t, xerr, xerrors.ErrUnknownVoteType)

	_, batchID := ta.propose(t, 1)
	_, _, xerr = ta.Propose(proposer, "", ctrlertypes.SimpleMajorityVoteType, batchID)
	require.ErrorIs(t, xerr, xerrors.ErrUnknownBatch)

	_, _, xerr = ta.CreateBatch(proposer, []types.Address{ta.storeAddr}, []string{"setNumber(uint256)", ""}, [][]byte{nil}, []*uint256.Int{nil}, "")
	require.ErrorIs(t, xerr, xerrors.ErrArityMismatch)
}

func TestExecute_AtomicRetry(t *testing.T) {
	ta := newInitialisedApp(t)
	switcher := &switchTarget{broken: true}
	switchAddr := types.RandAddress()
	ta.RegisterTarget(switchAddr, switcher)

	batchID, _, xerr := ta.CreateBatch(proposer,
		[]types.Address{ta.storeAddr, switchAddr},
		[]string{"setNumber(uint256)", ""},
		[][]byte{numberArg(7), nil},
		[]*uint256.Int{nil, nil}, "")
	require.NoError(t, xerr)
	propID := ta.proposeBatch(t, batchID)
	voteStart, voteEnd := ta.window(t, propID)

	ta.clock.Set(voteStart)
	ta.vote(t, propID, proposer, yes)
	ta.vote(t, propID, voterTwo, yes)
	ta.clock.Set(voteEnd + 1)
	_, _, xerr = ta.Queue(proposer, propID)
	require.NoError(t, xerr)

	info := ta.Info()
	_, xerr = ta.Execute(proposer, batchID)
	require.ErrorIs(t, xerr, xerrors.ErrCallFailed)
	require.Equal(t, int64(0), ta.store.Number().Int64())
	require.Equal(t, info.LastHeight, ta.Info().LastHeight)
	require.Equal(t, info.LastAppHash, ta.Info().LastAppHash)

	phase, xerr := ta.Phase(propID)
	require.NoError(t, xerr)
	require.Equal(t, ctrlertypes.PropStateQueued, phase)

	switcher.broken = false
	_, xerr = ta.Execute(proposer, batchID)
	require.NoError(t, xerr)
	require.Equal(t, int64(7), ta.store.Number().Int64())
	require.Equal(t, 1, switcher.calls)
	require.Equal(t, info.LastHeight+1, ta.Info().LastHeight)
}

func TestExecute_Reentrancy(t *testing.T) {
	for _, readOnly := range []bool{false, true} {
		ta := newInitialisedApp(t)
		reentrant := &reentrantTarget{app: ta.GovApp, readOnly: readOnly}
		reentrantAddr := types.RandAddress()
		ta.RegisterTarget(reentrantAddr, reentrant)

		batchID, _, xerr := ta.CreateBatch(proposer, []types.Address{reentrantAddr}, []string{""}, [][]byte{nil}, []*uint256.Int{nil}, "")
		require.NoError(t, xerr)
		propID := ta.proposeBatch(t, batchID)
		reentrant.batchID, reentrant.propID = batchID, propID
		voteStart, voteEnd := ta.window(t, propID)

		ta.clock.Set(voteStart)
		ta.vote(t, propID, proposer, yes)
		ta.vote(t, propID, voterTwo, yes)
		ta.clock.Set(voteEnd + 1)
		_, _, xerr = ta.Queue(proposer, propID)
		require.NoError(t, xerr)
		info := ta.Info()

		done := make(chan xerrors.XError, 1)
		go func() {
			_, xerr := ta.Execute(proposer, batchID)
			done <- xerr
		}()
		select {
		case xerr = <-done:
		case <-time.After(5 * time.Second):
			require.FailNow(t, "execute did not return", "readOnly", readOnly)
		}
		require.ErrorIs(t, xerr, xerrors.ErrReentrantCall, "readOnly", readOnly)
		require.ErrorIs(t, reentrant.err, xerrors.ErrReentrantCall, "readOnly", readOnly)

		// the app is usable again and nothing was committed
		phase, xerr := ta.Phase(propID)
		require.NoError(t, xerr)
		require.Equal(t, ctrlertypes.PropStateQueued, phase)
		require.Equal(t, info, ta.Info())
		require.NoError(t, ta.Stop())
	}
}

func TestRollback_NoPartialState(t *testing.T) {
	ta := newInitialisedApp(t)
	_, batchID := ta.propose(t, 1)
	info := ta.Info()

	// the vote type exists in the directory but the booth does not take it
	other := types.VoteTypeIDFromString("OTHER")
	_, xerr := ta.RegisterVoteType(proposer, &ctrlertypes.VoteType{ID: other, Mechanism: ctrlertypes.SimpleMajorityAddress, BallotFormat: ctrlertypes.BallotFormatBool})
	require.ErrorIs(t, xerr, xerrors.ErrUnauthorized)
	_, xerr = ta.InstallVoteType(owner, other)
	require.ErrorIs(t, xerr, xerrors.ErrUnknownVoteType)
	require.Equal(t, info.LastAppHash, ta.Info().LastAppHash)

	_, xerr = ta.RegisterVoteType(owner, &ctrlertypes.VoteType{ID: other, Mechanism: ctrlertypes.SimpleMajorityAddress, BallotFormat: ctrlertypes.BallotFormatBool})
	require.NoError(t, xerr)
	otherBatch, _, xerr := ta.CreateBatch(proposer, []types.Address{ta.storeAddr}, []string{""}, [][]byte{nil}, []*uint256.Int{nil}, "")
	require.NoError(t, xerr)
	otherProp, _, xerr := ta.Propose(proposer, "", other, otherBatch)
	require.NoError(t, xerr)

	_, otherEnd := ta.window(t, otherProp)
	ta.clock.Set(otherEnd - 1)
	_, xerr = ta.Vote(voterOne, otherProp, yes)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidProposalOrType)

	_, xerr = ta.InstallVoteType(owner, other)
	require.NoError(t, xerr)
	ta.vote(t, otherProp, voterOne, yes)

	// a failed proposal leaves the batch unbound and the sequence untouched
	info = ta.Info()
	_, _, xerr = ta.Propose(proposer, "", types.VoteTypeIDFromString("NONE"), batchID+10)
	require.Error(t, xerr)
	require.Equal(t, info, ta.Info())

	props, xerr := ta.Proposals()
	require.NoError(t, xerr)
	require.Len(t, props, 2)
}

func TestInfo(t *testing.T) {
	ta := newInitialisedApp(t)
	info := ta.Info()
	require.Equal(t, "rigo-gov", info.Name)
	require.Equal(t, int64(1), info.LastHeight)
	require.Len(t, info.LastAppHash, 32)

	ta.propose(t, 1)
	info2 := ta.Info()
	require.Equal(t, int64(3), info2.LastHeight)
	require.NotEqual(t, info.LastAppHash, info2.LastAppHash)
}

func TestPersistence(t *testing.T) {
	config := cfg.DefaultConfig().SetRoot(t.TempDir())
	config.Owner = owner.Hex()

	ta := newTestApp(t, config)
	govBook, repBook := newBooks()
	_, xerr := ta.InitGovernance(owner, govBook, repBook)
	require.NoError(t, xerr)
	propID, batchID := ta.propose(t, 5)
	info := ta.Info()
	require.NoError(t, ta.Stop())

	ta = newTestApp(t, config)
	require.Equal(t, info.LastHeight, ta.Info().LastHeight)
	require.Equal(t, info.LastAppHash, ta.Info().LastAppHash)

	prop, xerr := ta.Proposal(propID)
	require.NoError(t, xerr)
	require.Equal(t, batchID, prop.ActionBatchID)

	// the weight oracle needs its sources again
	require.Equal(t, uint64(0), ta.WeightOf(proposer).Uint64())
	require.ErrorIs(t, ta.AttachBalanceSources(proposer, govBook, repBook), xerrors.ErrUnauthorized)
	require.NoError(t, ta.AttachBalanceSources(owner, govBook, repBook))
	require.Equal(t, uint64(1010), ta.WeightOf(proposer).Uint64())

	_, xerr = ta.InitGovernance(owner, govBook, repBook)
	require.ErrorIs(t, xerr, xerrors.ErrAlreadyInitialized)
	require.NoError(t, ta.Stop())

	config.Owner = proposer.Hex()
	_, err := NewGovApp(config, types.NewManualClock(0), ta.logger)
	require.Error(t, err)
}

func TestRestart_VoteNeedsBalanceSources(t *testing.T) {
	config := cfg.DefaultConfig().SetRoot(t.TempDir())
	config.Owner = owner.Hex()

	ta := newTestApp(t, config)
	govBook, repBook := newBooks()
	_, xerr := ta.InitGovernance(owner, govBook, repBook)
	require.NoError(t, xerr)
	propID, _ := ta.propose(t, 7)
	require.NoError(t, ta.Stop())

	ta = newTestApp(t, config)
	voteStart, _ := ta.window(t, propID)
	ta.clock.Set(voteStart)

	_, xerr = ta.Vote(proposer, propID, yes)
	require.ErrorIs(t, xerr, xerrors.ErrNotVotable)
	voted, xerr := ta.HasVoted(propID, proposer)
	require.NoError(t, xerr)
	require.False(t, voted)
	tally, xerr := ta.Tally(propID)
	require.NoError(t, xerr)
	require.Equal(t, uint64(0), tally.VoterTurnout)

	// sources of other tokens cannot replace the initialised ones
	require.ErrorIs(t, ta.AttachBalanceSources(owner, weight.NewBalanceBook(types.RandAddress()), repBook), xerrors.ErrInvalidParams)
	require.ErrorIs(t, ta.AttachBalanceSources(owner, govBook, weight.NewBalanceBook(types.RandAddress())), xerrors.ErrInvalidParams)
	require.NoError(t, ta.AttachBalanceSources(owner, govBook, repBook))
	require.ErrorIs(t, ta.AttachBalanceSources(owner, govBook, repBook), xerrors.ErrAlreadyInitialized)

	ta.vote(t, propID, proposer, yes)
	tally, xerr = ta.Tally(propID)
	require.NoError(t, xerr)
	require.Equal(t, uint64(1010), tally.WeightFor.Uint64())
	require.Equal(t, uint64(1), tally.VoterTurnout)
}
