package gov

import (
	"sort"

	"github.com/rigochain/rigo-gov/ctrlers/gov/proposal"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// ReadAllProposals returns every committed proposal in id order.
func (ctrler *ProposalCtrler) ReadAllProposals() ([]*proposal.Proposal, xerrors.XError) {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	var props []*proposal.Proposal
	if xerr := ctrler.proposalLedger.IterateReadAllItems(func(prop *proposal.Proposal) xerrors.XError {
		props = append(props, prop)
		return nil
	}); xerr != nil {
		return nil, xerr
	}

	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return props, nil
}

// ProposalsByState returns the committed proposals whose state at now is state.
func (ctrler *ProposalCtrler) ProposalsByState(state ctrlertypes.PropState, now int64) ([]*proposal.Proposal, xerrors.XError) {
	props, xerr := ctrler.ReadAllProposals()
	if xerr != nil {
		return nil, xerr
	}

	var ret []*proposal.Proposal
	for _, prop := range props {
		s := prop.EffectiveState(now)
		if s == ctrlertypes.PropStateActive && now < prop.VoteStart {
			s = ctrlertypes.PropStatePending
		}
		if s == state {
			ret = append(ret, prop)
		}
	}
	return ret, nil
}
