package node

import (
	"encoding/json"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/ctrlers/action"
	"github.com/rigochain/rigo-gov/ctrlers/gov/proposal"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

func (app *GovApp) Proposal(id uint64) (*proposal.Proposal, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.proposals.GetProposal(id)
}

func (app *GovApp) Proposals() ([]*proposal.Proposal, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.proposals.ReadAllProposals()
}

func (app *GovApp) ProposalsByState(state ctrlertypes.PropState) ([]*proposal.Proposal, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.proposals.ProposalsByState(state, app.clock.Now())
}

// Phase returns the state of the proposal at the current time.
func (app *GovApp) Phase(id uint64) (ctrlertypes.PropState, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return 0, xerr
	}
	defer app.mtx.Unlock()

	return app.coordinator.Phase(id, app.clock.Now())
}

func (app *GovApp) Batch(id uint64) (*action.ActionBatch, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.actions.GetBatch(id)
}

func (app *GovApp) Tally(proposalID uint64) (*ctrlertypes.Tally, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	vt, xerr := app.proposals.GetPropVoteType(proposalID)
	if xerr != nil {
		return nil, xerr
	}
	mech, xerr := app.directory.Mechanism(vt)
	if xerr != nil {
		return nil, xerr
	}
	return mech.CurrentTally(proposalID)
}

func (app *GovApp) HasVoted(proposalID uint64, voter types.Address) (bool, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return false, xerr
	}
	defer app.mtx.Unlock()

	vt, xerr := app.proposals.GetPropVoteType(proposalID)
	if xerr != nil {
		return false, xerr
	}
	mech, xerr := app.directory.Mechanism(vt)
	if xerr != nil {
		return false, xerr
	}
	return mech.HasVoted(proposalID, voter)
}

func (app *GovApp) WeightOf(voter types.Address) *uint256.Int {
	return app.weights.WeightOf(voter, app.clock.Now())
}

func (app *GovApp) VoteTypes() ([]*ctrlertypes.VoteType, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.directory.ReadAllVoteTypes()
}

// GovParams returns the stored parameters, or an error before initialisation.
func (app *GovApp) GovParams() (*ctrlertypes.GovParams, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	return app.storedParams()
}

// Query serves the read-only paths below. req.Data holds a decimal id
// for the paths taking one.
func (app *GovApp) Query(req abcitypes.RequestQuery) abcitypes.ResponseQuery {
	response := abcitypes.ResponseQuery{
		Code: abcitypes.CodeTypeOK,
		Key:  req.Data,
	}

	var (
		v    interface{}
		xerr xerrors.XError
	)
	switch req.Path {
	case "proposal", "phase", "tally", "batch":
		id, err := strconv.ParseUint(string(req.Data), 10, 64)
		if err != nil {
			xerr = xerrors.ErrInvalidParams.Wrapf("wrong id: %s", req.Data)
			break
		}
		switch req.Path {
		case "proposal":
			v, xerr = app.Proposal(id)
		case "phase":
			var s ctrlertypes.PropState
			s, xerr = app.Phase(id)
			v = s.String()
		case "tally":
			v, xerr = app.Tally(id)
		case "batch":
			v, xerr = app.Batch(id)
		}
	case "proposals":
		v, xerr = app.Proposals()
	case "vote_types":
		v, xerr = app.VoteTypes()
	case "params":
		v, xerr = app.GovParams()
	case "info":
		v = app.Info()
	default:
		xerr = xerrors.ErrInvalidParams.Wrapf("unknown query path: %s", req.Path)
	}

	if xerr == nil {
		bz, err := json.Marshal(v)
		if err != nil {
			xerr = xerrors.From(err)
		} else {
			response.Value = bz
		}
	}
	if xerr != nil {
		response.Code = xerr.Code()
		response.Log = xerr.Error()
	}
	return response
}
