package consensus

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

var boolArgs abi.Arguments

func init() {
	boolType, err := abi.NewType("bool", "", nil)
	if err != nil {
		panic(err)
	}
	boolArgs = abi.Arguments{{Type: boolType}}
}

// EncodeBoolBallot returns the ABI encoding of a single bool.
func EncodeBoolBallot(choice ctrlertypes.Choice) []byte {
	bz, err := boolArgs.Pack(choice.IsFor())
	if err != nil {
		panic(err)
	}
	return bz
}

// DecodeBoolBallot accepts exactly one canonically encoded ABI bool.
func DecodeBoolBallot(bz []byte) (ctrlertypes.Choice, xerrors.XError) {
	if len(bz) != 32 {
		return ctrlertypes.ChoiceAgainst, xerrors.ErrMalformedBallot.Wrapf("ballot length: %d", len(bz))
	}
	vals, err := boolArgs.Unpack(bz)
	if err != nil {
		return ctrlertypes.ChoiceAgainst, xerrors.ErrMalformedBallot.Wrap(err)
	}
	support, ok := vals[0].(bool)
	if !ok {
		return ctrlertypes.ChoiceAgainst, xerrors.ErrMalformedBallot.Wrapf("unexpected type %T", vals[0])
	}
	return ctrlertypes.ChoiceOf(support), nil
}

type Ballot struct {
	ProposalID uint64
	Voter      types.Address
	Weight     *uint256.Int
	Choice     ctrlertypes.Choice
	CastAt     int64
}

func BallotKey(propID uint64, voter types.Address) ledger.LedgerKey {
	var bz [8 + types.AddrSize]byte
	binary.BigEndian.PutUint64(bz[:8], propID)
	copy(bz[8:], voter[:])
	return ledger.ToLedgerKey(crypto.Keccak256(bz[:]))
}

func (b *Ballot) Key() ledger.LedgerKey {
	return BallotKey(b.ProposalID, b.Voter)
}

type ballotJSON struct {
	ProposalID uint64             `json:"proposalId"`
	Voter      types.Address      `json:"voter"`
	Weight     string             `json:"weight"`
	Choice     ctrlertypes.Choice `json:"choice"`
	CastAt     int64              `json:"castAt"`
}

func (b *Ballot) Encode() ([]byte, xerrors.XError) {
	bz, err := json.Marshal(&ballotJSON{
		ProposalID: b.ProposalID,
		Voter:      b.Voter,
		Weight:     b.Weight.Dec(),
		Choice:     b.Choice,
		CastAt:     b.CastAt,
	})
	if err != nil {
		return nil, xerrors.From(err)
	}
	return bz, nil
}

func (b *Ballot) Decode(bz []byte) xerrors.XError {
	tm := &ballotJSON{}
	if err := json.Unmarshal(bz, tm); err != nil {
		return xerrors.From(err)
	}
	weight, err := uint256.FromDecimal(tm.Weight)
	if err != nil {
		return xerrors.From(err)
	}
	b.ProposalID = tm.ProposalID
	b.Voter = tm.Voter
	b.Weight = weight
	b.Choice = tm.Choice
	b.CastAt = tm.CastAt
	return nil
}

var _ ledger.ILedgerItem = (*Ballot)(nil)
