package action

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// ActionBatch is a list of calls executed together.
// Targets, Signatures, Args and Values are parallel arrays.
type ActionBatch struct {
	ID              uint64
	Targets         []types.Address
	Signatures      []string
	Args            []bytes.HexBytes
	Values          []*uint256.Int
	Description     string
	Creator         types.Address
	CreatedAt       int64
	BoundProposalID uint64
	Executed        bool
}

func BatchKey(id uint64) ledger.LedgerKey {
	return ledger.Uint64ToLedgerKey('b', id)
}

func (b *ActionBatch) Key() ledger.LedgerKey {
	return BatchKey(b.ID)
}

func (b *ActionBatch) Len() int {
	return len(b.Targets)
}

func (b *ActionBatch) IsBound() bool {
	return b.BoundProposalID != 0
}

// Selector returns the first 4 bytes of keccak256(sig).
func Selector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

// CallData returns the input of the i-th call. A call without
// signature passes its args as they are.
func (b *ActionBatch) CallData(i int) []byte {
	if b.Signatures[i] == "" {
		return append([]byte{}, b.Args[i]...)
	}
	return append(Selector(b.Signatures[i]), b.Args[i]...)
}

func (b *ActionBatch) clone() *ActionBatch {
	ret := *b
	ret.Targets = append([]types.Address{}, b.Targets...)
	ret.Signatures = append([]string{}, b.Signatures...)
	ret.Args = make([]bytes.HexBytes, len(b.Args))
	for i, a := range b.Args {
		ret.Args[i] = a.Copy()
	}
	ret.Values = make([]*uint256.Int, len(b.Values))
	for i, v := range b.Values {
		ret.Values[i] = v.Clone()
	}
	return &ret
}

type batchJSON struct {
	ID              uint64           `json:"id"`
	Targets         []types.Address  `json:"targets"`
	Signatures      []string         `json:"signatures"`
	Args            []bytes.HexBytes `json:"args"`
	Values          []string         `json:"values"`
	Description     string           `json:"description"`
	Creator         types.Address    `json:"creator"`
	CreatedAt       int64            `json:"createdAt"`
	BoundProposalID uint64           `json:"boundProposalId"`
	Executed        bool             `json:"executed"`
}

func (b *ActionBatch) MarshalJSON() ([]byte, error) {
	values := make([]string, len(b.Values))
	for i, v := range b.Values {
		values[i] = v.Dec()
	}
	return json.Marshal(&batchJSON{
		ID:              b.ID,
		Targets:         b.Targets,
		Signatures:      b.Signatures,
		Args:            b.Args,
		Values:          values,
		Description:     b.Description,
		Creator:         b.Creator,
		CreatedAt:       b.CreatedAt,
		BoundProposalID: b.BoundProposalID,
		Executed:        b.Executed,
	})
}

func (b *ActionBatch) UnmarshalJSON(bz []byte) error {
	tm := &batchJSON{}
	if err := json.Unmarshal(bz, tm); err != nil {
		return err
	}

	values := make([]*uint256.Int, len(tm.Values))
	for i, v := range tm.Values {
		n, err := uint256.FromDecimal(v)
		if err != nil {
			return err
		}
		values[i] = n
	}

	b.ID = tm.ID
	b.Targets = tm.Targets
	b.Signatures = tm.Signatures
	b.Args = tm.Args
	b.Values = values
	b.Description = tm.Description
	b.Creator = tm.Creator
	b.CreatedAt = tm.CreatedAt
	b.BoundProposalID = tm.BoundProposalID
	b.Executed = tm.Executed
	return nil
}

func (b *ActionBatch) Encode() ([]byte, xerrors.XError) {
	if bz, err := json.Marshal(b); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (b *ActionBatch) Decode(bz []byte) xerrors.XError {
	if err := json.Unmarshal(bz, b); err != nil {
		return xerrors.From(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*ActionBatch)(nil)
