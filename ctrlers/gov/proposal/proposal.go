package proposal

import (
	"encoding/json"
	"sync"

	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// transitions lists the allowed edges of the proposal state machine.
var transitions = map[ctrlertypes.PropState][]ctrlertypes.PropState{
	ctrlertypes.PropStateActive: {ctrlertypes.PropStateEnded},
	ctrlertypes.PropStateEnded:  {ctrlertypes.PropStateQueued, ctrlertypes.PropStateExpired, ctrlertypes.PropStateDefeated},
	ctrlertypes.PropStateQueued: {ctrlertypes.PropStateExecuted},
}

func CanTransit(from, to ctrlertypes.PropState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Proposal struct {
	ID            uint64                `json:"id"`
	Description   string                `json:"description"`
	VoteTypeID    types.VoteTypeID      `json:"voteTypeId"`
	ActionBatchID uint64                `json:"actionBatchId"`
	VoteStart     int64                 `json:"voteStart"`
	VoteEnd       int64                 `json:"voteEnd"`
	State         ctrlertypes.PropState `json:"state"`
	Spent         bool                  `json:"spent"`
	Proposer      types.Address         `json:"proposer"`

	mtx sync.RWMutex
}

func NewProposal(id uint64, description string, voteTypeID types.VoteTypeID, batchID uint64, voteStart, voteEnd int64, proposer types.Address) *Proposal {
	return &Proposal{
		ID:            id,
		Description:   description,
		VoteTypeID:    voteTypeID,
		ActionBatchID: batchID,
		VoteStart:     voteStart,
		VoteEnd:       voteEnd,
		State:         ctrlertypes.PropStateActive,
		Proposer:      proposer,
	}
}

func ProposalKey(id uint64) ledger.LedgerKey {
	return ledger.Uint64ToLedgerKey('p', id)
}

func (prop *Proposal) Key() ledger.LedgerKey {
	prop.mtx.RLock()
	defer prop.mtx.RUnlock()

	return ProposalKey(prop.ID)
}

func (prop *Proposal) Encode() ([]byte, xerrors.XError) {
	prop.mtx.RLock()
	defer prop.mtx.RUnlock()

	if bz, err := json.Marshal(prop); err != nil {
		return bz, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (prop *Proposal) Decode(bz []byte) xerrors.XError {
	prop.mtx.Lock()
	defer prop.mtx.Unlock()

	if err := json.Unmarshal(bz, prop); err != nil {
		return xerrors.From(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*Proposal)(nil)

// EffectiveState reports Ended for an active proposal whose voting window has passed.
func (prop *Proposal) EffectiveState(now int64) ctrlertypes.PropState {
	prop.mtx.RLock()
	defer prop.mtx.RUnlock()

	return prop.effectiveState(now)
}

func (prop *Proposal) effectiveState(now int64) ctrlertypes.PropState {
	if prop.State == ctrlertypes.PropStateActive && now > prop.VoteEnd {
		return ctrlertypes.PropStateEnded
	}
	return prop.State
}

func (prop *Proposal) Votables(now int64) *ctrlertypes.PropVotables {
	prop.mtx.RLock()
	defer prop.mtx.RUnlock()

	return &ctrlertypes.PropVotables{
		State:     prop.effectiveState(now),
		Spent:     prop.Spent,
		VoteStart: prop.VoteStart,
		VoteEnd:   prop.VoteEnd,
	}
}

// Transit moves the stored state along an allowed edge.
// Entering a terminal state marks the proposal spent.
func (prop *Proposal) Transit(to ctrlertypes.PropState) xerrors.XError {
	prop.mtx.Lock()
	defer prop.mtx.Unlock()

	if !CanTransit(prop.State, to) {
		return xerrors.ErrInvalidTransition.Wrapf("proposal %d: %s -> %s", prop.ID, prop.State, to)
	}
	prop.State = to
	if to.IsTerminal() {
		prop.Spent = true
	}
	return nil
}

func (prop *Proposal) Clone() *Proposal {
	prop.mtx.RLock()
	defer prop.mtx.RUnlock()

	return &Proposal{
		ID:            prop.ID,
		Description:   prop.Description,
		VoteTypeID:    prop.VoteTypeID,
		ActionBatchID: prop.ActionBatchID,
		VoteStart:     prop.VoteStart,
		VoteEnd:       prop.VoteEnd,
		State:         prop.State,
		Spent:         prop.Spent,
		Proposer:      prop.Proposer,
	}
}
