package proposal

import (
	"encoding/json"

	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// Settings holds the timing parameters of the proposal store, in seconds.
type Settings struct {
	MinDelay     int64 `json:"minDelay"`
	StartDelay   int64 `json:"startDelay"`
	VotingPeriod int64 `json:"votingPeriod"`
}

func NewSettings(minDelay, startDelay, votingPeriod int64) (*Settings, xerrors.XError) {
	if xerr := ctrlertypes.ValidateDelays(minDelay, startDelay, votingPeriod); xerr != nil {
		return nil, xerr
	}
	return &Settings{
		MinDelay:     minDelay,
		StartDelay:   startDelay,
		VotingPeriod: votingPeriod,
	}, nil
}

func (s *Settings) Key() ledger.LedgerKey {
	return ledger.ToLedgerKey(bytes.ZeroBytes(32))
}

func (s *Settings) Encode() ([]byte, xerrors.XError) {
	if bz, err := json.Marshal(s); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (s *Settings) Decode(bz []byte) xerrors.XError {
	if err := json.Unmarshal(bz, s); err != nil {
		return xerrors.From(err)
	}
	return nil
}

var _ ledger.ILedgerItem = (*Settings)(nil)
