package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	abytes "github.com/rigochain/rigo-gov/types/bytes"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"strings"
)

const AddrSize = common.AddressLength

type Address = common.Address

func RandAddress() Address {
	return common.BytesToAddress(abytes.RandBytes(AddrSize))
}

func ZeroAddress() Address {
	return Address{}
}

func IsZeroAddress(addr Address) bool {
	return addr == Address{}
}

// ModuleAddress returns the identity of an internal module.
// It is used as the caller address when a module calls another.
func ModuleAddress(name string) Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("rigo-gov/module/" + name))[12:])
}

func HexToAddress(_hex string) (Address, xerrors.XError) {
	if !strings.HasPrefix(_hex, "0x") {
		_hex = "0x" + _hex
	}
	if !common.IsHexAddress(_hex) {
		return Address{}, xerrors.ErrInvalidParams.Wrapf("wrong address: %s", _hex)
	}
	return common.HexToAddress(_hex), nil
}
