package vm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
)

type MethodFunc func(ctx *ctrlertypes.CallContext, value *uint256.Int, args []interface{}, journal IJournal) ([]interface{}, xerrors.XError)

// ABIContract is a call target whose methods are selected by the
// 4-byte selector of their ABI signature.
type ABIContract struct {
	abi      abi.ABI
	handlers map[string]MethodFunc
}

func NewABIContract(abiJSON string) (*ABIContract, xerrors.XError) {
	_abi, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, xerrors.From(err)
	}
	return &ABIContract{
		abi:      _abi,
		handlers: make(map[string]MethodFunc),
	}, nil
}

func (c *ABIContract) ABI() abi.ABI {
	return c.abi
}

// Handle binds fn to the method named name. It panics if the ABI has no such method.
func (c *ABIContract) Handle(name string, fn MethodFunc) *ABIContract {
	if _, ok := c.abi.Methods[name]; !ok {
		panic("abi_contract: no method " + name)
	}
	c.handlers[name] = fn
	return c
}

func (c *ABIContract) Call(ctx *ctrlertypes.CallContext, value *uint256.Int, input []byte, journal IJournal) ([]byte, xerrors.XError) {
	if len(input) < 4 {
		return nil, xerrors.New("abi_contract: input is too short")
	}

	method, err := c.abi.MethodById(input[:4])
	if err != nil {
		return nil, xerrors.From(err)
	}
	fn, ok := c.handlers[method.Name]
	if !ok {
		return nil, xerrors.New("abi_contract: not implemented: " + method.Sig)
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, xerrors.From(err)
	}

	rets, xerr := fn(ctx, value, args, journal)
	if xerr != nil {
		return nil, xerr
	}

	bz, err := method.Outputs.Pack(rets...)
	if err != nil {
		return nil, xerrors.From(err)
	}
	return bz, nil
}

var _ ICallable = (*ABIContract)(nil)
