package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// VoteTypeID identifies a consensus mechanism.
// It is an ABI bytes32 holding the ascii name, right-padded with zeros.
type VoteTypeID [32]byte

func VoteTypeIDFromString(s string) VoteTypeID {
	var id VoteTypeID
	copy(id[:], s)
	return id
}

func (id VoteTypeID) IsZero() bool {
	return id == VoteTypeID{}
}

func (id VoteTypeID) Name() string {
	return strings.TrimRight(string(id[:]), "\x00")
}

func (id VoteTypeID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id VoteTypeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *VoteTypeID) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	if len(raw) != len(id) {
		return fmt.Errorf("wrong vote type id length: %d", len(raw))
	}
	copy(id[:], raw)
	return nil
}
