package main

import (
	"os"
	"path/filepath"

	"github.com/rigochain/rigo-gov/cmd/commands"
	"github.com/tendermint/tendermint/libs/cli"
)

func main() {
	commands.RootCmd.AddCommand(
		commands.NewInitFilesCmd(),
		commands.ResetAllCmd,
		commands.QueryCmd,
		commands.InfoCmd,
		commands.VersionCmd,
	)

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	executor := cli.PrepareBaseCmd(commands.RootCmd, "RIGOGOV", filepath.Join(home, ".rigo-gov"))
	if err := executor.Execute(); err != nil {
		panic(err)
	}
}
