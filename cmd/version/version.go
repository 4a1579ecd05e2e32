package version

import (
	"fmt"
	"strconv"

	"github.com/tendermint/tendermint/version"
)

const (
	FMT_VERSTR = "%v.%v.%v-%x@%s"
	AppName    = "rigo-gov"
)

var (
	majorVer  uint64 = 0
	minorVer  uint64 = 1
	patchVer  uint64 = 0
	commitVer uint64 = 0

	// set by ldflags:
	//  -ldflags "-X 'github.com/rigochain/rigo-gov/cmd/version.GitCommit=$(git rev-parse --short=8 HEAD)'"
	GitCommit string

	MASK_MAJOR_VER  = uint64(0xFF00000000000000)
	MASK_MINOR_VER  = uint64(0x00FF000000000000)
	MASK_PATCH_VER  = uint64(0x0000FFFF00000000)
	MASK_COMMIT_VER = uint64(0x00000000FFFFFFFF)
)

func init() {
	if GitCommit != "" {
		commitVer, _ = strconv.ParseUint(GitCommit, 16, 64)
	}
}

// Info is what the governance app reports about its build.
type Info struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	AppVersion uint64 `json:"appVersion"`
}

func NewInfo() *Info {
	return &Info{
		Name:       AppName,
		Version:    String(),
		AppVersion: Uint64(MASK_MAJOR_VER | MASK_MINOR_VER | MASK_PATCH_VER),
	}
}

func String() string {
	return fmt.Sprintf(FMT_VERSTR, majorVer, minorVer, patchVer, commitVer, version.TMCoreSemVer)
}

func maskOf(masks []uint64) uint64 {
	if len(masks) == 0 {
		return MASK_MAJOR_VER | MASK_MINOR_VER | MASK_PATCH_VER | MASK_COMMIT_VER
	}
	mask := uint64(0)
	for _, m := range masks {
		mask |= m
	}
	return mask
}

// Uint64 packs the version as major(8) | minor(8) | patch(16) | commit(32) bits.
func Uint64(masks ...uint64) uint64 {
	return ((majorVer << 56) + (minorVer << 48) + (patchVer << 32) + commitVer) & maskOf(masks)
}

// Parse is the inverse of Uint64.
func Parse(c uint64) string {
	return fmt.Sprintf(FMT_VERSTR,
		(c>>56)&0xFF,
		(c>>48)&0xFF,
		(c>>32)&0xFFFF,
		c&0xFFFFFFFF,
		version.TMCoreSemVer)
}
