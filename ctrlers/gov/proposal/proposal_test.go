package proposal

import (
	"testing"

	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/stretchr/testify/require"
)

var allStates = []ctrlertypes.PropState{
	ctrlertypes.PropStatePending,
	ctrlertypes.PropStateActive,
	ctrlertypes.PropStateEnded,
	ctrlertypes.PropStateQueued,
	ctrlertypes.PropStateExecuted,
	ctrlertypes.PropStateExpired,
	ctrlertypes.PropStateDefeated,
}

func TestTransit_DirectedEdgesOnly(t *testing.T) {
	allowed := map[[2]ctrlertypes.PropState]bool{
		{ctrlertypes.PropStateActive, ctrlertypes.PropStateEnded}:    true,
		{ctrlertypes.PropStateEnded, ctrlertypes.PropStateQueued}:    true,
		{ctrlertypes.PropStateEnded, ctrlertypes.PropStateExpired}:   true,
		{ctrlertypes.PropStateEnded, ctrlertypes.PropStateDefeated}:  true,
		{ctrlertypes.PropStateQueued, ctrlertypes.PropStateExecuted}: true,
	}

	for _, from := range allStates {
		for _, to := range allStates {
			prop := NewProposal(1, "", types.VoteTypeIDFromString("SIMPLE_MAJORITY"), 1, 10, 20, types.RandAddress())
			prop.State = from

			xerr := prop.Transit(to)
			if allowed[[2]ctrlertypes.PropState{from, to}] {
				require.NoError(t, xerr, "%s -> %s", from, to)
				require.Equal(t, to, prop.State)
				require.Equal(t, to.IsTerminal(), prop.Spent)
			} else {
				require.ErrorIs(t, xerr, xerrors.ErrInvalidTransition, "%s -> %s", from, to)
				require.Equal(t, from, prop.State)
				require.False(t, prop.Spent)
			}
		}
	}
}

func TestVotables(t *testing.T) {
	prop := NewProposal(1, "desc", types.VoteTypeIDFromString("SIMPLE_MAJORITY"), 1, 10, 20, types.RandAddress())

	v := prop.Votables(5)
	require.Equal(t, ctrlertypes.PropStateActive, v.State)
	require.False(t, v.Spent)
	require.Equal(t, int64(10), v.VoteStart)
	require.Equal(t, int64(20), v.VoteEnd)

	require.Equal(t, ctrlertypes.PropStateActive, prop.Votables(20).State)
	require.Equal(t, ctrlertypes.PropStateEnded, prop.Votables(21).State)

	// the stored state is not changed by a query
	require.Equal(t, ctrlertypes.PropStateActive, prop.State)
}

func TestProposalCodec(t *testing.T) {
	prop0 := NewProposal(3, "codec", types.VoteTypeIDFromString("SIMPLE_MAJORITY"), 5, 10, 20, types.RandAddress())
	require.NoError(t, prop0.Transit(ctrlertypes.PropStateEnded))

	bz, xerr := prop0.Encode()
	require.NoError(t, xerr)

	prop1 := &Proposal{}
	require.NoError(t, prop1.Decode(bz))
	require.Equal(t, prop0.Clone(), prop1.Clone())
	require.Equal(t, ProposalKey(3), prop1.Key())
}

func TestNewSettings(t *testing.T) {
	s, xerr := NewSettings(15, 15, 15)
	require.NoError(t, xerr)
	require.Equal(t, int64(15), s.VotingPeriod)

	_, xerr = NewSettings(15, 10, 15)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidParams)
	_, xerr = NewSettings(0, 0, 0)
	require.ErrorIs(t, xerr, xerrors.ErrInvalidParams)
}
