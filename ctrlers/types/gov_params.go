package types

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
	tmjson "github.com/tendermint/tendermint/libs/json"
)

// GovParams holds the parameters fixed when the engine is initialised.
// Delays and periods are in seconds.
type GovParams struct {
	minDelay     int64
	startDelay   int64
	votingPeriod int64
	quorum       *uint256.Int
	govCoeff     uint64
	repCoeff     uint64

	// tokens of the balance sources, set by WithSources
	govSource types.Address
	repSource types.Address

	mtx sync.RWMutex
}

func NewGovParams(minDelay, startDelay, votingPeriod int64, quorum *uint256.Int, govCoeff, repCoeff uint64) *GovParams {
	return &GovParams{
		minDelay:     minDelay,
		startDelay:   startDelay,
		votingPeriod: votingPeriod,
		quorum:       quorum.Clone(),
		govCoeff:     govCoeff,
		repCoeff:     repCoeff,
	}
}

func DefaultGovParams() *GovParams {
	return &GovParams{
		minDelay:     15,
		startDelay:   15,
		votingPeriod: 15,
		quorum:       uint256.NewInt(1200),
		govCoeff:     1,
		repCoeff:     1,
	}
}

// WithSources returns a copy of r bound to the tokens of the balance sources.
func (r *GovParams) WithSources(govSource, repSource types.Address) *GovParams {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	ret := NewGovParams(r.minDelay, r.startDelay, r.votingPeriod, r.quorum, r.govCoeff, r.repCoeff)
	ret.govSource = govSource
	ret.repSource = repSource
	return ret
}

func DecodeGovParams(bz []byte) (*GovParams, xerrors.XError) {
	ret := &GovParams{}
	if xerr := ret.Decode(bz); xerr != nil {
		return nil, xerr
	}
	return ret, nil
}

func (r *GovParams) Key() ledger.LedgerKey {
	return ledger.ToLedgerKey(bytes.ZeroBytes(32))
}

func (r *GovParams) Encode() ([]byte, xerrors.XError) {
	if bz, err := tmjson.Marshal(r); err != nil {
		return nil, xerrors.From(err)
	} else {
		return bz, nil
	}
}

func (r *GovParams) Decode(bz []byte) xerrors.XError {
	if err := tmjson.Unmarshal(bz, r); err != nil {
		return xerrors.From(err)
	}
	return nil
}

type govParamsJSON struct {
	MinDelay     int64  `json:"minDelay"`
	StartDelay   int64  `json:"startDelay"`
	VotingPeriod int64  `json:"votingPeriod"`
	Quorum       string `json:"quorum"`
	GovCoeff     uint64 `json:"govCoeff"`
	RepCoeff     uint64 `json:"repCoeff"`
	GovSource    string `json:"govSource,omitempty"`
	RepSource    string `json:"repSource,omitempty"`
}

func (r *GovParams) MarshalJSON() ([]byte, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return tmjson.Marshal(&govParamsJSON{
		MinDelay:     r.minDelay,
		StartDelay:   r.startDelay,
		VotingPeriod: r.votingPeriod,
		Quorum:       uint256ToString(r.quorum),
		GovCoeff:     r.govCoeff,
		RepCoeff:     r.repCoeff,
		GovSource:    sourceToString(r.govSource),
		RepSource:    sourceToString(r.repSource),
	})
}

func (r *GovParams) UnmarshalJSON(bz []byte) error {
	tm := &govParamsJSON{}
	if err := tmjson.Unmarshal(bz, tm); err != nil {
		return err
	}
	quorum, err := stringToUint256(tm.Quorum)
	if err != nil {
		return err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.minDelay = tm.MinDelay
	r.startDelay = tm.StartDelay
	r.votingPeriod = tm.VotingPeriod
	r.quorum = quorum
	r.govCoeff = tm.GovCoeff
	r.repCoeff = tm.RepCoeff
	r.govSource = common.HexToAddress(tm.GovSource)
	r.repSource = common.HexToAddress(tm.RepSource)
	return nil
}

func sourceToString(addr types.Address) string {
	if types.IsZeroAddress(addr) {
		return ""
	}
	return addr.Hex()
}

// Validate checks that both delays respect minDelay and that voting lasts.
func (r *GovParams) Validate() xerrors.XError {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	if xerr := ValidateDelays(r.minDelay, r.startDelay, r.votingPeriod); xerr != nil {
		return xerr
	}
	if r.quorum == nil {
		return xerrors.ErrInvalidParams.Wrapf("no quorum")
	}
	return nil
}

func (r *GovParams) MinDelay() int64 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.minDelay
}

func (r *GovParams) StartDelay() int64 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.startDelay
}

func (r *GovParams) VotingPeriod() int64 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.votingPeriod
}

func (r *GovParams) Quorum() *uint256.Int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.quorum.Clone()
}

func (r *GovParams) GovCoeff() uint64 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.govCoeff
}

func (r *GovParams) RepCoeff() uint64 {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.repCoeff
}

func (r *GovParams) GovSource() types.Address {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.govSource
}

func (r *GovParams) RepSource() types.Address {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.repSource
}

func (r *GovParams) String() string {
	if bz, err := r.MarshalJSON(); err != nil {
		return err.Error()
	} else {
		return string(bz)
	}
}

var _ ledger.ILedgerItem = (*GovParams)(nil)
