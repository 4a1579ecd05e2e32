package types

import (
	"github.com/rigochain/rigo-gov/types"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

// CallContext carries the caller identity and the time of one external call.
// Contexts derived by As share the event list of their parent.
type CallContext struct {
	Caller types.Address
	Now    int64

	events *[]abcitypes.Event
}

func NewCallContext(caller types.Address, now int64) *CallContext {
	return &CallContext{
		Caller: caller,
		Now:    now,
		events: &[]abcitypes.Event{},
	}
}

// As returns a context for a nested call made by the module at caller.
func (ctx *CallContext) As(caller types.Address) *CallContext {
	return &CallContext{
		Caller: caller,
		Now:    ctx.Now,
		events: ctx.events,
	}
}

func (ctx *CallContext) Emit(evts ...abcitypes.Event) {
	*ctx.events = append(*ctx.events, evts...)
}

func (ctx *CallContext) Events() []abcitypes.Event {
	return *ctx.events
}
