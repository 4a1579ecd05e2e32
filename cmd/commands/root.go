package commands

import (
	"os"

	cfg "github.com/rigochain/rigo-gov/cmd/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/cli"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	rootConfig = cfg.DefaultConfig()
	logger     = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
)

// RootCmd is the root command of rigo-gov.
// Every subcommand except `init` and `version` reads <home>/config/config.toml.
var RootCmd = &cobra.Command{
	Use:   "rigo-gov",
	Short: "Modular on-chain governance engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Name() == VersionCmd.Name() || cmd.Name() == initCmdName {
			rootConfig.SetRoot(viper.GetString(cli.HomeFlag))
			return nil
		}

		if rootConfig, err = cfg.LoadConfig(viper.GetString(cli.HomeFlag)); err != nil {
			return err
		}
		if logger, err = cfg.NewLogger(rootConfig); err != nil {
			return err
		}
		if viper.GetBool(cli.TraceFlag) {
			logger = log.NewTracingLogger(logger)
		}
		logger = logger.With("module", "main")
		return nil
	},
}
