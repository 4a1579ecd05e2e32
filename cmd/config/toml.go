package config

import (
	"bytes"
	"path/filepath"
	"text/template"

	tmos "github.com/tendermint/tendermint/libs/os"
)

const DefaultDirPerm = 0o700

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile renders cfg and writes it to <home>/config/config.toml.
func WriteConfigFile(home string, cfg *Config) error {
	var buffer bytes.Buffer
	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	path := ConfigFilePath(home)
	if err := tmos.EnsureDir(filepath.Dir(path), DefaultDirPerm); err != nil {
		return err
	}
	return tmos.WriteFile(path, buffer.Bytes(), 0o644)
}

// Keys must match the mapstructure tags of Config.
const defaultConfigTemplate = `# rigo-gov configuration

db_backend = "{{ .DBBackend }}"
db_dir = "{{ js .DBPath }}"
log_level = "{{ .LogLevel }}"
log_format = "{{ .LogFormat }}"

in_memory = {{ .InMemory }}
owner = "{{ .Owner }}"

[gov]
min_delay = {{ .Gov.MinDelay }}
start_delay = {{ .Gov.StartDelay }}
voting_period = {{ .Gov.VotingPeriod }}
quorum = "{{ .Gov.Quorum }}"
gov_coeff = {{ .Gov.GovCoeff }}
rep_coeff = {{ .Gov.RepCoeff }}
`
