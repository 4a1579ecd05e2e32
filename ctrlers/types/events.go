package types

import (
	"strconv"

	"github.com/holiman/uint256"
	"github.com/rigochain/rigo-gov/types"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

const (
	EventTypeExecutable = "executable"
	EventTypeProposal   = "proposal"
	EventTypeVote       = "vote"
)

func attr(key, value string, index bool) abcitypes.EventAttribute {
	return abcitypes.EventAttribute{Key: []byte(key), Value: []byte(value), Index: index}
}

func u64str(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func ExecutableCreatedEvent(batchID uint64) abcitypes.Event {
	return abcitypes.Event{
		Type: EventTypeExecutable,
		Attributes: []abcitypes.EventAttribute{
			attr("created", u64str(batchID), true),
		},
	}
}

func ProposalCreatedEvent(propID, batchID uint64) abcitypes.Event {
	return abcitypes.Event{
		Type: EventTypeProposal,
		Attributes: []abcitypes.EventAttribute{
			attr("created", u64str(propID), true),
			attr("batch", u64str(batchID), false),
		},
	}
}

func VoteCastEvent(propID uint64, voter types.Address, choice Choice, weight *uint256.Int) abcitypes.Event {
	return abcitypes.Event{
		Type: EventTypeVote,
		Attributes: []abcitypes.EventAttribute{
			attr("proposal", u64str(propID), true),
			attr("voter", voter.Hex(), true),
			attr("choice", choice.String(), false),
			attr("weight", weight.Dec(), false),
		},
	}
}

// ProposalStateEvent reports a lifecycle transition. key is one of
// "queued", "executed", "expired" or "defeated".
func ProposalStateEvent(key string, propID uint64) abcitypes.Event {
	return abcitypes.Event{
		Type: EventTypeProposal,
		Attributes: []abcitypes.EventAttribute{
			attr(key, u64str(propID), true),
		},
	}
}

// FindEventAttr returns the value of the first attribute named key in events of type typ.
func FindEventAttr(evts []abcitypes.Event, typ, key string) (string, bool) {
	for _, evt := range evts {
		if evt.Type != typ {
			continue
		}
		for _, a := range evt.Attributes {
			if string(a.Key) == key {
				return string(a.Value), true
			}
		}
	}
	return "", false
}
