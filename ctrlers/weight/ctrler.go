package weight

import (
	"sync"

	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

var maxUint256 = new(uint256.Int).SetAllOne()

// WeightCtrler computes the voting weight of an account
// as govCoeff * gov balance + repCoeff * reputation balance.
type WeightCtrler struct {
	owner     types.Address
	govCoeff  *uint256.Int
	repCoeff  *uint256.Int
	govSource ctrlertypes.IBalanceSource
	repSource ctrlertypes.IBalanceSource

	logger log.Logger
	mtx    sync.RWMutex
}

func NewWeightCtrler(owner types.Address, govCoeff, repCoeff uint64, logger log.Logger) *WeightCtrler {
	return &WeightCtrler{
		owner:    owner,
		govCoeff: uint256.NewInt(govCoeff),
		repCoeff: uint256.NewInt(repCoeff),
		logger:   logger.With("module", "rigo_WeightCtrler"),
	}
}

func (ctrler *WeightCtrler) Initialise(ctx *ctrlertypes.CallContext, govSource, repSource ctrlertypes.IBalanceSource) xerrors.XError {
	ctrler.mtx.Lock()
	defer ctrler.mtx.Unlock()

	if ctx.Caller != ctrler.owner {
		return xerrors.ErrUnauthorized.Wrapf("only the owner can initialise the weight oracle")
	}
	if ctrler.govSource != nil || ctrler.repSource != nil {
		return xerrors.ErrAlreadyInitialized.Wrapf("weight oracle")
	}
	if govSource == nil || repSource == nil {
		return xerrors.ErrInvalidParams.Wrapf("balance source is nil")
	}

	ctrler.govSource = govSource
	ctrler.repSource = repSource
	return nil
}

func (ctrler *WeightCtrler) IsInitialised() bool {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	return ctrler.govSource != nil
}

// WeightOf never fails. It returns 0 before initialisation and
// saturates at 2^256-1.
func (ctrler *WeightCtrler) WeightOf(voter types.Address, at int64) *uint256.Int {
	ctrler.mtx.RLock()
	defer ctrler.mtx.RUnlock()

	if ctrler.govSource == nil || ctrler.repSource == nil {
		return uint256.NewInt(0)
	}

	gov := scaled(ctrler.govCoeff, ctrler.govSource.BalanceOfAt(voter, at))
	rep := scaled(ctrler.repCoeff, ctrler.repSource.BalanceOfAt(voter, at))

	sum, overflow := new(uint256.Int).AddOverflow(gov, rep)
	if overflow {
		return maxUint256.Clone()
	}
	return sum
}

func scaled(coeff, balance *uint256.Int) *uint256.Int {
	if balance == nil {
		return uint256.NewInt(0)
	}
	ret, overflow := new(uint256.Int).MulOverflow(coeff, balance)
	if overflow {
		return maxUint256.Clone()
	}
	return ret
}

var _ ctrlertypes.IWeightHandler = (*WeightCtrler)(nil)
