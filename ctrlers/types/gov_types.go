package types

import (
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

type Choice uint8

const (
	ChoiceAgainst Choice = 0
	ChoiceFor     Choice = 1
)

func ChoiceOf(support bool) Choice {
	if support {
		return ChoiceFor
	}
	return ChoiceAgainst
}

func (c Choice) IsFor() bool {
	return c == ChoiceFor
}

func (c Choice) String() string {
	if c == ChoiceFor {
		return "for"
	}
	return "against"
}

type WeightedChoice struct {
	Weight *uint256.Int
	Choice Choice
}

// PropState is the lifecycle state of a proposal.
type PropState uint8

const (
	PropStatePending PropState = iota
	PropStateActive
	PropStateEnded
	PropStateQueued
	PropStateExecuted
	PropStateExpired
	PropStateDefeated
)

func (s PropState) String() string {
	switch s {
	case PropStatePending:
		return "pending"
	case PropStateActive:
		return "active"
	case PropStateEnded:
		return "ended"
	case PropStateQueued:
		return "queued"
	case PropStateExecuted:
		return "executed"
	case PropStateExpired:
		return "expired"
	case PropStateDefeated:
		return "defeated"
	default:
		return "unknown"
	}
}

func (s PropState) IsTerminal() bool {
	return s == PropStateExecuted || s == PropStateExpired || s == PropStateDefeated
}

type PropVotables struct {
	State     PropState `json:"state"`
	Spent     bool      `json:"spent"`
	VoteStart int64     `json:"voteStart"`
	VoteEnd   int64     `json:"voteEnd"`
}

// VoteType binds a vote type id to the mechanism that counts its ballots.
type VoteType struct {
	ID           types.VoteTypeID `json:"id"`
	Mechanism    types.Address    `json:"mechanism"`
	BallotFormat string           `json:"ballotFormat"`
}

func (vt *VoteType) Key() ledger.LedgerKey {
	return ledger.LedgerKey(vt.ID)
}

func (vt *VoteType) Encode() ([]byte, xerrors.XError) {
	if bz, err := json.Marshal(vt); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (vt *VoteType) Decode(bz []byte) xerrors.XError {
	if err := json.Unmarshal(bz, vt); err != nil {
		return xerrors.From(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*VoteType)(nil)

type Tally struct {
	ProposalID    uint64       `json:"proposalId"`
	WeightFor     *uint256.Int `json:"weightFor"`
	WeightAgainst *uint256.Int `json:"weightAgainst"`
	VoterTurnout  uint64       `json:"voterTurnout"`
}

func NewTally(propID uint64) *Tally {
	return &Tally{
		ProposalID:    propID,
		WeightFor:     uint256.NewInt(0),
		WeightAgainst: uint256.NewInt(0),
	}
}

func (t *Tally) Key() ledger.LedgerKey {
	return ledger.Uint64ToLedgerKey('t', t.ProposalID)
}

func (t *Tally) Total() *uint256.Int {
	return new(uint256.Int).Add(t.WeightFor, t.WeightAgainst)
}

func (t *Tally) Clone() *Tally {
	return &Tally{
		ProposalID:    t.ProposalID,
		WeightFor:     t.WeightFor.Clone(),
		WeightAgainst: t.WeightAgainst.Clone(),
		VoterTurnout:  t.VoterTurnout,
	}
}

func (t *Tally) Encode() ([]byte, xerrors.XError) {
	if bz, err := json.Marshal(t); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (t *Tally) Decode(bz []byte) xerrors.XError {
	if err := json.Unmarshal(bz, t); err != nil {
		return xerrors.From(err)
	}
	return nil
}

func (t *Tally) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		ProposalID    uint64 `json:"proposalId"`
		WeightFor     string `json:"weightFor"`
		WeightAgainst string `json:"weightAgainst"`
		VoterTurnout  uint64 `json:"voterTurnout"`
	}{
		ProposalID:    t.ProposalID,
		WeightFor:     uint256ToString(t.WeightFor),
		WeightAgainst: uint256ToString(t.WeightAgainst),
		VoterTurnout:  t.VoterTurnout,
	})
}

func (t *Tally) UnmarshalJSON(bz []byte) error {
	tm := &struct {
		ProposalID    uint64 `json:"proposalId"`
		WeightFor     string `json:"weightFor"`
		WeightAgainst string `json:"weightAgainst"`
		VoterTurnout  uint64 `json:"voterTurnout"`
	}{}
	if err := json.Unmarshal(bz, tm); err != nil {
		return err
	}

	wfor, err := stringToUint256(tm.WeightFor)
	if err != nil {
		return err
	}
	wagainst, err := stringToUint256(tm.WeightAgainst)
	if err != nil {
		return err
	}
	t.ProposalID = tm.ProposalID
	t.WeightFor = wfor
	t.WeightAgainst = wagainst
	t.VoterTurnout = tm.VoterTurnout
	return nil
}

var _ ledger.ILedgerItem = (*Tally)(nil)

func uint256ToString(value *uint256.Int) string {
	if value == nil {
		return "0"
	}
	return value.Dec()
}

func stringToUint256(value string) (*uint256.Int, error) {
	if value == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromDecimal(value)
}
