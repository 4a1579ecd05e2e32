package types

import (
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

// Identities of the governance modules.
var (
	DirectoryAddress      = types.ModuleAddress("directory")
	ActionRegistryAddress = types.ModuleAddress("action_registry")
	WeightOracleAddress   = types.ModuleAddress("weight_oracle")
	SimpleMajorityAddress = types.ModuleAddress("simple_majority")
	VotingBoothAddress    = types.ModuleAddress("voting_booth")
	ProposalStoreAddress  = types.ModuleAddress("proposal_store")
	CoordinatorAddress    = types.ModuleAddress("coordinator")
)

// SimpleMajorityVoteType is the id of the built-in simple majority vote type.
var SimpleMajorityVoteType = types.VoteTypeIDFromString("SIMPLE_MAJORITY")

const BallotFormatBool = "bool"

// ValidateDelays checks the proposal timing parameters.
func ValidateDelays(minDelay, startDelay, votingPeriod int64) xerrors.XError {
	if minDelay < 0 {
		return xerrors.ErrInvalidParams.Wrapf("negative minDelay: %d", minDelay)
	}
	if startDelay < minDelay {
		return xerrors.ErrInvalidParams.Wrapf("startDelay(%d) is less than minDelay(%d)", startDelay, minDelay)
	}
	if votingPeriod <= 0 || votingPeriod < minDelay {
		return xerrors.ErrInvalidParams.Wrapf("wrong votingPeriod: %d", votingPeriod)
	}
	return nil
}
