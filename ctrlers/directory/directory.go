package directory

import (
	"errors"
	"sync"

	cfg "github.com/rigochain/rigo-gov/cmd/config"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/tendermint/tendermint/libs/log"
)

// Directory is the registry of vote types.
// It knows every consensus mechanism wired into the engine and
// maps a vote type id to one of them.
type Directory struct {
	owner      types.Address
	mechanisms map[types.Address]ctrlertypes.IConsensusMechanism

	voteTypeLedger ledger.ILedger[*ctrlertypes.VoteType]

	logger log.Logger
	mtx    sync.RWMutex
}

func NewDirectory(config *cfg.Config, owner types.Address, logger log.Logger, mechs ...ctrlertypes.IConsensusMechanism) (*Directory, xerrors.XError) {
	voteTypeLedger, xerr := ledger.NewLedger[*ctrlertypes.VoteType](
		"vote_types", config.LedgerDir(), 128,
		func() *ctrlertypes.VoteType { return &ctrlertypes.VoteType{} })
	if xerr != nil {
		return nil, xerr
	}

	mechanisms := make(map[types.Address]ctrlertypes.IConsensusMechanism)
	for _, m := range mechs {
		mechanisms[m.Address()] = m
	}

	return &Directory{
		owner:          owner,
		mechanisms:     mechanisms,
		voteTypeLedger: voteTypeLedger,
		logger:         logger.With("module", "rigo_Directory"),
	}, nil
}

func (d *Directory) Owner() types.Address {
	return d.owner
}

func (d *Directory) RegisterVoteType(ctx *ctrlertypes.CallContext, vt *ctrlertypes.VoteType) xerrors.XError {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if ctx.Caller != d.owner {
		return xerrors.ErrUnauthorized.Wrapf("only the owner can register a vote type")
	}
	if vt.ID.IsZero() {
		return xerrors.ErrInvalidParams.Wrapf("empty vote type id")
	}

	mech, ok := d.mechanisms[vt.Mechanism]
	if !ok {
		return xerrors.ErrNotFound.Wrapf("consensus mechanism %s", vt.Mechanism.Hex())
	}
	if mech.BallotFormat() != vt.BallotFormat {
		return xerrors.ErrInvalidParams.Wrapf("ballot format mismatch: mechanism(%s) vs. vote type(%s)", mech.BallotFormat(), vt.BallotFormat)
	}

	if _, xerr := d.voteTypeLedger.Get(vt.Key()); xerr == nil {
		return xerrors.ErrAlreadyInitialized.Wrapf("vote type %s", vt.ID.Name())
	} else if !errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return xerr
	}

	_vt := *vt
	if xerr := d.voteTypeLedger.Set(&_vt); xerr != nil {
		return xerr
	}

	d.logger.Debug("vote type registered", "id", vt.ID.Name(), "mechanism", vt.Mechanism)
	return nil
}

func (d *Directory) VoteType(id types.VoteTypeID) (*ctrlertypes.VoteType, xerrors.XError) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.voteType(id)
}

func (d *Directory) voteType(id types.VoteTypeID) (*ctrlertypes.VoteType, xerrors.XError) {
	vt, xerr := d.voteTypeLedger.Get(ledger.LedgerKey(id))
	if errors.Is(xerr, xerrors.ErrNotFoundResult) {
		return nil, xerrors.ErrUnknownVoteType.Wrapf("vote type %s", id.Name())
	} else if xerr != nil {
		return nil, xerr
	}
	_vt := *vt
	return &_vt, nil
}

func (d *Directory) Mechanism(id types.VoteTypeID) (ctrlertypes.IConsensusMechanism, xerrors.XError) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	vt, xerr := d.voteType(id)
	if xerr != nil {
		return nil, xerr
	}
	mech, ok := d.mechanisms[vt.Mechanism]
	if !ok {
		return nil, xerrors.ErrNotFound.Wrapf("consensus mechanism %s", vt.Mechanism.Hex())
	}
	return mech, nil
}

// ReadAllVoteTypes returns the committed vote types.
func (d *Directory) ReadAllVoteTypes() ([]*ctrlertypes.VoteType, xerrors.XError) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()

	var ret []*ctrlertypes.VoteType
	if xerr := d.voteTypeLedger.IterateReadAllItems(func(vt *ctrlertypes.VoteType) xerrors.XError {
		ret = append(ret, vt)
		return nil
	}); xerr != nil {
		return nil, xerr
	}
	return ret, nil
}

func (d *Directory) Commit() ([]byte, int64, xerrors.XError) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.voteTypeLedger.Commit()
}

func (d *Directory) Rollback() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.voteTypeLedger.Rollback()
}

func (d *Directory) Close() xerrors.XError {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.voteTypeLedger != nil {
		if xerr := d.voteTypeLedger.Close(); xerr != nil {
			d.logger.Error("voteTypeLedger.Close()", "error", xerr.Error())
		}
		d.voteTypeLedger = nil
	}
	return nil
}

var _ ctrlertypes.IDirectory = (*Directory)(nil)
var _ ctrlertypes.ILedgerHandler = (*Directory)(nil)
