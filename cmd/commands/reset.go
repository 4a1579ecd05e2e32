package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
	tmos "github.com/tendermint/tendermint/libs/os"
)

// ResetAllCmd removes every ledger of this governance app.
var ResetAllCmd = &cobra.Command{
	Use:     "unsafe-reset-all",
	Aliases: []string{"unsafe_reset_all"},
	Short:   "(unsafe) Remove all ledgers and governance history",
	Run: func(cmd *cobra.Command, args []string) {
		ResetAll(rootConfig.DBDir(), logger)
	},
}

// XXX: this is totally unsafe.
// it's only suitable for testing.
func ResetAll(dbDir string, logger log.Logger) {
	if err := os.RemoveAll(dbDir); err == nil {
		logger.Info("Removed all governance history", "dir", dbDir)
	} else {
		logger.Error("Error removing all governance history", "dir", dbDir, "err", err)
	}
	if err := tmos.EnsureDir(dbDir, 0o700); err != nil {
		logger.Error("unable to recreate dbDir", "err", err)
	}
}
