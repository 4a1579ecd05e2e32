package config

import (
	"fmt"
	"path/filepath"

	"github.com/holiman/uint256"
	ctrlertypes "github.com/rigochain/rigo-gov/ctrlers/types"
	"github.com/rigochain/rigo-gov/types"
	"github.com/rigochain/rigo-gov/types/xerrors"
	"github.com/spf13/viper"
	tmcfg "github.com/tendermint/tendermint/config"
)

type GovConfig struct {
	MinDelay     int64  `mapstructure:"min_delay"`
	StartDelay   int64  `mapstructure:"start_delay"`
	VotingPeriod int64  `mapstructure:"voting_period"`
	Quorum       string `mapstructure:"quorum"`
	GovCoeff     uint64 `mapstructure:"gov_coeff"`
	RepCoeff     uint64 `mapstructure:"rep_coeff"`
}

func DefaultGovConfig() *GovConfig {
	params := ctrlertypes.DefaultGovParams()
	return &GovConfig{
		MinDelay:     params.MinDelay(),
		StartDelay:   params.StartDelay(),
		VotingPeriod: params.VotingPeriod(),
		Quorum:       params.Quorum().Dec(),
		GovCoeff:     params.GovCoeff(),
		RepCoeff:     params.RepCoeff(),
	}
}

type Config struct {
	tmcfg.BaseConfig `mapstructure:",squash"`

	// InMemory keeps every ledger in memory instead of under DBDir().
	InMemory bool       `mapstructure:"in_memory"`
	Owner    string     `mapstructure:"owner"`
	Gov      *GovConfig `mapstructure:"gov"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseConfig: tmcfg.DefaultBaseConfig(),
		Gov:        DefaultGovConfig(),
	}
}

// TestConfig returns a config whose ledgers live in memory.
func TestConfig() *Config {
	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.Owner = types.ModuleAddress("owner").Hex()
	return cfg
}

func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// LedgerDir returns the directory for ledger databases.
// It is empty when ledgers are kept in memory.
func (cfg *Config) LedgerDir() string {
	if cfg.InMemory {
		return ""
	}
	return cfg.DBDir()
}

func (cfg *Config) OwnerAddress() (types.Address, xerrors.XError) {
	return types.HexToAddress(cfg.Owner)
}

func (cfg *Config) GovParams() (*ctrlertypes.GovParams, xerrors.XError) {
	quorum, err := uint256.FromDecimal(cfg.Gov.Quorum)
	if err != nil {
		return nil, xerrors.ErrInvalidParams.Wrapf("wrong quorum(%s): %v", cfg.Gov.Quorum, err)
	}
	params := ctrlertypes.NewGovParams(
		cfg.Gov.MinDelay,
		cfg.Gov.StartDelay,
		cfg.Gov.VotingPeriod,
		quorum,
		cfg.Gov.GovCoeff,
		cfg.Gov.RepCoeff)
	if xerr := params.Validate(); xerr != nil {
		return nil, xerr
	}
	return params, nil
}

func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if _, xerr := cfg.OwnerAddress(); xerr != nil {
		return fmt.Errorf("owner: %w", xerr)
	}
	if _, xerr := cfg.GovParams(); xerr != nil {
		return fmt.Errorf("gov: %w", xerr)
	}
	return nil
}

func ConfigFilePath(home string) string {
	return filepath.Join(home, "config", "config.toml")
}

// LoadConfig reads <home>/config/config.toml over the default config.
func LoadConfig(home string) (*Config, error) {
	cfg := DefaultConfig().SetRoot(home)

	v := viper.New()
	v.SetConfigFile(ConfigFilePath(home))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.SetRoot(home)

	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	return cfg, nil
}
