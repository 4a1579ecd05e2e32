package commands

import (
	"fmt"

	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/rigochain/rigo-gov/types"
	"github.com/spf13/cobra"
	tmos "github.com/tendermint/tendermint/libs/os"
)

const initCmdName = "init"

var (
	initOwner    string
	initInMemory bool
)

func NewInitFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   initCmdName,
		Short: "Write the default config file for a governance app",
		RunE:  initFiles,
	}
	AddInitFlags(cmd)
	return cmd
}

func AddInitFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&initOwner,
		"owner",
		"",
		"hex address allowed to initialise the governance (required)")
	cmd.Flags().BoolVar(
		&initInMemory,
		"in_memory",
		false,
		"keep every ledger in memory")
	cmd.Flags().Int64Var(
		&rootConfig.Gov.StartDelay,
		"gov.start_delay",
		rootConfig.Gov.StartDelay,
		"seconds between proposal creation and the start of voting")
	cmd.Flags().Int64Var(
		&rootConfig.Gov.VotingPeriod,
		"gov.voting_period",
		rootConfig.Gov.VotingPeriod,
		"length of the voting window in seconds")
	cmd.Flags().StringVar(
		&rootConfig.Gov.Quorum,
		"gov.quorum",
		rootConfig.Gov.Quorum,
		"minimum total weight cast for a proposal to be decided")
}

func initFiles(cmd *cobra.Command, args []string) error {
	return InitFilesWith(rootConfig.RootDir, initOwner, initInMemory, rootConfig)
}

// InitFilesWith writes <home>/config/config.toml unless it already exists.
func InitFilesWith(home, owner string, inMemory bool, config *cfg.Config) error {
	path := cfg.ConfigFilePath(home)
	if tmos.FileExists(path) {
		logger.Info("Found config file", "path", path)
		return nil
	}

	addr, xerr := types.HexToAddress(owner)
	if xerr != nil {
		return fmt.Errorf("wrong owner(%s): %w", owner, xerr)
	}

	config.SetRoot(home)
	config.Owner = addr.Hex()
	config.InMemory = inMemory
	if err := config.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.WriteConfigFile(home, config); err != nil {
		return err
	}
	logger.Info("Generated config file", "path", path)
	return nil
}
