package config

import (
	"os"

	tmcfg "github.com/tendermint/tendermint/config"
	tmflags "github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

func NewLogger(cfg *Config) (log.Logger, error) {
	var logger log.Logger
	if cfg.LogFormat == tmcfg.LogFormatJSON {
		logger = log.NewTMJSONLogger(log.NewSyncWriter(os.Stdout))
	} else {
		logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	}
	return tmflags.ParseLogLevel(cfg.LogLevel, logger, tmcfg.DefaultLogLevel)
}
