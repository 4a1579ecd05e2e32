package bytes

import (
	"bytes"
	"encoding/hex"
	"fmt"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"strings"
)

// HexBytes enables HEX-encoding for json/encoding.
type HexBytes tmbytes.HexBytes

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	s := "0x" + hex.EncodeToString(hb)
	jbz := make([]byte, len(s)+2)
	jbz[0] = '"'
	copy(jbz[1:], s)
	jbz[len(jbz)-1] = '"'
	return jbz, nil
}

func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string: %s", data)
	}

	str := strings.TrimPrefix(string(data[1:len(data)-1]), "0x")
	bz2, err := hex.DecodeString(str)
	if err != nil {
		return err
	}
	*hb = bz2
	return nil
}

func (hb HexBytes) Bytes() []byte {
	return hb
}

func (hb HexBytes) Compare(o HexBytes) int {
	return bytes.Compare(hb, o)
}

func (hb HexBytes) Copy() HexBytes {
	if hb == nil {
		return nil
	}
	ret := make(HexBytes, len(hb))
	copy(ret, hb)
	return ret
}

func (hb HexBytes) String() string {
	return "0x" + hex.EncodeToString(hb)
}

func FromHex(s string) (HexBytes, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func MustFromHex(s string) HexBytes {
	bz, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return bz
}
