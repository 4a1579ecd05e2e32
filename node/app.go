package node

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/cmd/version"
	"github.com/rigochain/rigo-gov/ctrlers/action"
	"github.com/rigochain/rigo-gov/ctrlers/booth"
	"github.com/rigochain/rigo-gov/ctrlers/consensus"
	"github.com/rigochain/rigo-gov/ctrlers/coord"
	"github.com/rigochain/rigo-gov/ctrlers/directory"
	"github.com/rigochain/rigo-gov/ctrlers/gov"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/ctrlers/vm"
	"github.com/rigochain/rigo-gov/ctrlers/weight"
	"github.com/rigochain/rigo-gov/ledger"
	"github.com/rigochain/rigo-gov/types"
	rbytes "github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	tmos "github.com/tendermint/tendermint/libs/os"
)

// GovApp wires the governance modules together and runs every external
// call as one transaction: all ledgers are committed when the call
// succeeds and rolled back when it fails.
type GovApp struct {
	owner  types.Address
	params *ctrlertypes.GovParams
	clock  types.IClock

	metaDB       *MetaDB
	paramsLedger ledger.ILedger[*ctrlertypes.GovParams]
	dispatcher   *vm.Dispatcher
	directory    *directory.Directory
	mechanism    *consensus.SimpleMajority
	weights      *weight.WeightCtrler
	actions      *action.ActionCtrler
	proposals    *gov.ProposalCtrler
	coordinator  *coord.Coordinator
	booth        *booth.BoothCtrler

	handlers []ctrlertypes.ILedgerHandler

	lastHeight  int64
	lastAppHash rbytes.HexBytes
	infoMtx     sync.RWMutex

	// set while the calls of an action batch run
	executing atomic.Bool

	rootConfig *cfg.Config
	logger     log.Logger
	mtx        sync.Mutex
}

func NewGovApp(config *cfg.Config, clock types.IClock, logger log.Logger) (*GovApp, error) {
	owner, xerr := config.OwnerAddress()
	if xerr != nil {
		return nil, xerr
	}
	params, xerr := config.GovParams()
	if xerr != nil {
		return nil, xerr
	}
	if !config.InMemory {
		if err := tmos.EnsureDir(config.DBDir(), 0o700); err != nil {
			return nil, err
		}
	}

	metaDB, err := openMetaDB("gov_app", config.LedgerDir())
	if err != nil {
		return nil, err
	}
	if stored := metaDB.Owner(); stored == nil {
		if err := metaDB.PutOwner(owner.Bytes()); err != nil {
			_ = metaDB.Close()
			return nil, err
		}
	} else if !bytes.Equal(stored, owner.Bytes()) {
		_ = metaDB.Close()
		return nil, fmt.Errorf("owner mismatch: config(%s) vs. db(%x)", owner.Hex(), stored)
	}

	app := &GovApp{
		owner:       owner,
		params:      params,
		clock:       clock,
		metaDB:      metaDB,
		lastHeight:  metaDB.LastHeight(),
		lastAppHash: metaDB.LastAppHash(),
		rootConfig:  config,
		logger:      logger.With("module", "rigo_GovApp"),
	}
	if err := app.build(config, logger); err != nil {
		_ = app.Stop()
		return nil, err
	}
	return app, nil
}

func (app *GovApp) build(config *cfg.Config, logger log.Logger) error {
	var xerr xerrors.XError

	app.paramsLedger, xerr = ledger.NewLedger[*ctrlertypes.GovParams]("gov_params", config.LedgerDir(), 1, func() *ctrlertypes.GovParams { return &ctrlertypes.GovParams{} })
	if xerr != nil {
		return xerr
	}

	app.dispatcher = vm.NewDispatcher(logger)
	app.weights = weight.NewWeightCtrler(app.owner, app.params.GovCoeff(), app.params.RepCoeff(), logger)

	app.mechanism, xerr = consensus.NewSimpleMajority(config, ctrlertypes.SimpleMajorityAddress, ctrlertypes.VotingBoothAddress, app.params.Quorum(), logger)
	if xerr != nil {
		return xerr
	}
	app.directory, xerr = directory.NewDirectory(config, app.owner, logger, app.mechanism)
	if xerr != nil {
		return xerr
	}
	app.actions, xerr = action.NewActionCtrler(config, ctrlertypes.ActionRegistryAddress, ctrlertypes.ProposalStoreAddress, ctrlertypes.CoordinatorAddress, app.dispatcher, logger)
	if xerr != nil {
		return xerr
	}
	app.proposals, xerr = gov.NewProposalCtrler(config, ctrlertypes.ProposalStoreAddress, app.owner, ctrlertypes.CoordinatorAddress, app.directory, app.actions, logger)
	if xerr != nil {
		return xerr
	}
	app.coordinator = coord.NewCoordinator(ctrlertypes.CoordinatorAddress, app.proposals, app.directory, app.actions, logger)
	app.booth, xerr = booth.NewBoothCtrler(config, ctrlertypes.VotingBoothAddress, app.owner, app.directory, app.proposals, app.coordinator, app.weights, logger)
	if xerr != nil {
		return xerr
	}

	app.handlers = []ctrlertypes.ILedgerHandler{
		app.directory,
		app.mechanism,
		app.actions,
		app.proposals,
		app.booth,
		app.dispatcher,
	}
	return nil
}

func (app *GovApp) Stop() error {
	if xerr := app.lock(); xerr != nil {
		return xerr
	}
	defer app.mtx.Unlock()

	for _, h := range app.handlers {
		if xerr := h.Close(); xerr != nil {
			app.logger.Error("Close()", "error", xerr)
		}
	}
	app.handlers = nil
	if app.paramsLedger != nil {
		if xerr := app.paramsLedger.Close(); xerr != nil {
			app.logger.Error("paramsLedger.Close()", "error", xerr)
		}
		app.paramsLedger = nil
	}
	if app.metaDB != nil {
		if err := app.metaDB.Close(); err != nil {
			return err
		}
		app.metaDB = nil
	}
	return nil
}

// lock takes the app lock. It fails while a batch is executing, since the
// only code running then is a call target of that batch.
func (app *GovApp) lock() xerrors.XError {
	if app.executing.Load() {
		return xerrors.ErrReentrantCall.Wrapf("an action batch is executing")
	}
	app.mtx.Lock()
	return nil
}

// RegisterTarget makes a call target reachable from action batches.
// A target calling back into the app gets ErrReentrantCall.
func (app *GovApp) RegisterTarget(addr types.Address, target vm.ICallable) {
	app.dispatcher.Register(addr, target)
}

// execute runs fn as a single transaction.
func (app *GovApp) execute(caller types.Address, fn func(*ctrlertypes.CallContext) xerrors.XError) ([]abcitypes.Event, xerrors.XError) {
	if xerr := app.lock(); xerr != nil {
		return nil, xerr
	}
	defer app.mtx.Unlock()

	ctx := ctrlertypes.NewCallContext(caller, app.clock.Now())
	if xerr := fn(ctx); xerr != nil {
		app.rollback()
		app.logger.Debug("call reverted", "caller", caller, "now", ctx.Now, "error", xerr)
		return nil, xerr
	}
	app.commit()
	return ctx.Events(), nil
}

func (app *GovApp) rollback() {
	app.paramsLedger.Rollback()
	for _, h := range app.handlers {
		h.Rollback()
	}
}

// commit panics on failure since some ledgers may already be saved.
func (app *GovApp) commit() {
	hashes := make([][]byte, 0, len(app.handlers)+1)
	h, _, xerr := app.paramsLedger.Commit()
	if xerr != nil {
		panic(xerr)
	}
	hashes = append(hashes, h)
	for _, handler := range app.handlers {
		h, _, xerr := handler.Commit()
		if xerr != nil {
			panic(xerr)
		}
		hashes = append(hashes, h)
	}

	app.infoMtx.Lock()
	defer app.infoMtx.Unlock()

	appHash := crypto.Keccak256(hashes...)
	height := app.lastHeight + 1
	if err := app.metaDB.PutLastHeight(height); err != nil {
		panic(err)
	}
	if err := app.metaDB.PutLastAppHash(appHash); err != nil {
		panic(err)
	}
	app.lastHeight = height
	app.lastAppHash = appHash
	app.logger.Debug("committed", "height", height, "appHash", app.lastAppHash)
}

func (app *GovApp) storedParams() (*ctrlertypes.GovParams, xerrors.XError) {
	return app.paramsLedger.Get((&ctrlertypes.GovParams{}).Key())
}

// InitGovernance sets up the proposal store, the booth with the simple
// majority vote type and the weight oracle. Only the owner can call it, once.
func (app *GovApp) InitGovernance(caller types.Address, govSource, repSource ctrlertypes.IBalanceSource) ([]abcitypes.Event, xerrors.XError) {
	return app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		if ctx.Caller != app.owner {
			return xerrors.ErrUnauthorized.Wrapf("only the owner can initialise governance")
		}
		if _, xerr := app.storedParams(); xerr == nil {
			return xerrors.ErrAlreadyInitialized.Wrapf("governance")
		} else if !errors.Is(xerr, xerrors.ErrNotFoundResult) {
			return xerr
		}
		if govSource == nil || repSource == nil {
			return xerrors.ErrInvalidParams.Wrapf("balance source is nil")
		}

		if xerr := app.proposals.Initialise(ctx, app.params.MinDelay(), app.params.StartDelay(), app.params.VotingPeriod()); xerr != nil {
			return xerr
		}
		if xerr := app.booth.Initialise(ctx, ctrlertypes.SimpleMajorityAddress, ctrlertypes.SimpleMajorityVoteType, ctrlertypes.BallotFormatBool); xerr != nil {
			return xerr
		}
		if xerr := app.paramsLedger.Set(app.params.WithSources(govSource.Token(), repSource.Token())); xerr != nil {
			return xerr
		}
		// the weight oracle keeps no ledger, so it goes last
		return app.weights.Initialise(ctx, govSource, repSource)
	})
}

// AttachBalanceSources gives the weight oracle its balance sources again
// after the app is reopened over initialised ledgers. The sources must have
// the tokens given to InitGovernance, so the weight basis never changes
// during the lifetime of the governance.
func (app *GovApp) AttachBalanceSources(caller types.Address, govSource, repSource ctrlertypes.IBalanceSource) xerrors.XError {
	_, xerr := app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		if ctx.Caller != app.owner {
			return xerrors.ErrUnauthorized.Wrapf("only the owner can attach balance sources")
		}
		params, xerr := app.storedParams()
		if xerr != nil {
			return xerrors.ErrInvalidParams.Wrapf("governance is not initialised")
		}
		if govSource == nil || repSource == nil {
			return xerrors.ErrInvalidParams.Wrapf("balance source is nil")
		}
		if govSource.Token() != params.GovSource() || repSource.Token() != params.RepSource() {
			return xerrors.ErrInvalidParams.Wrapf("balance sources (%s, %s) differ from the initialised ones (%s, %s)",
				govSource.Token().Hex(), repSource.Token().Hex(), params.GovSource().Hex(), params.RepSource().Hex())
		}
		return app.weights.Initialise(ctx, govSource, repSource)
	})
	return xerr
}

func (app *GovApp) RegisterVoteType(caller types.Address, vt *ctrlertypes.VoteType) ([]abcitypes.Event, xerrors.XError) {
	return app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		return app.directory.RegisterVoteType(ctx, vt)
	})
}

func (app *GovApp) InstallVoteType(caller types.Address, id types.VoteTypeID) ([]abcitypes.Event, xerrors.XError) {
	return app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		return app.booth.InstallVoteType(ctx, id)
	})
}

func (app *GovApp) CreateBatch(
	caller types.Address,
	targets []types.Address,
	signatures []string,
	args [][]byte,
	values []*uint256.Int,
	description string) (uint64, []abcitypes.Event, xerrors.XError) {

	var id uint64
	evts, xerr := app.execute(caller, func(ctx *ctrlertypes.CallContext) (xerr xerrors.XError) {
		id, xerr = app.actions.CreateBatch(ctx, targets, signatures, args, values, description)
		return
	})
	if xerr != nil {
		return 0, nil, xerr
	}
	return id, evts, nil
}

func (app *GovApp) Propose(caller types.Address, description string, voteTypeID types.VoteTypeID, batchID uint64) (uint64, []abcitypes.Event, xerrors.XError) {
	var id uint64
	evts, xerr := app.execute(caller, func(ctx *ctrlertypes.CallContext) (xerr xerrors.XError) {
		id, xerr = app.proposals.CreatePropWithExe(ctx, description, voteTypeID, batchID)
		return
	})
	if xerr != nil {
		return 0, nil, xerr
	}
	return id, evts, nil
}

func (app *GovApp) Vote(caller types.Address, proposalID uint64, ballot []byte) ([]abcitypes.Event, xerrors.XError) {
	return app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		return app.booth.Vote(ctx, proposalID, ballot)
	})
}

func (app *GovApp) Queue(caller types.Address, proposalID uint64) (ctrlertypes.PropState, []abcitypes.Event, xerrors.XError) {
	var state ctrlertypes.PropState
	evts, xerr := app.execute(caller, func(ctx *ctrlertypes.CallContext) (xerr xerrors.XError) {
		state, xerr = app.coordinator.QueueProposal(ctx, proposalID)
		return
	})
	if xerr != nil {
		return state, nil, xerr
	}
	return state, evts, nil
}

func (app *GovApp) Execute(caller types.Address, batchID uint64) ([]abcitypes.Event, xerrors.XError) {
	return app.execute(caller, func(ctx *ctrlertypes.CallContext) xerrors.XError {
		app.executing.Store(true)
		defer app.executing.Store(false)

		return app.coordinator.Execute(ctx, batchID)
	})
}

// Info reports the build and the last committed state.
type Info struct {
	*version.Info
	LastHeight  int64            `json:"lastHeight"`
	LastAppHash rbytes.HexBytes `json:"lastAppHash"`
}

func (app *GovApp) Info() *Info {
	app.infoMtx.RLock()
	defer app.infoMtx.RUnlock()

	app.logger.Info("Info", "version", version.String(), "height", app.lastHeight)
	return &Info{
		Info:        version.NewInfo(),
		LastHeight:  app.lastHeight,
		LastAppHash: app.lastAppHash,
	}
}
