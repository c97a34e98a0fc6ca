package whitebox

import (
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"

	"code.cloudfoundry.org/whitebox/syslog"
)

type Config struct {
	Destination syslog.Drain `yaml:"destination"`
	Ident       string       `yaml:"ident"`
	AppendNul   *bool        `yaml:"append_nul"`
	Level       string       `yaml:"level"`
	SourcePath  string       `yaml:"source_path"`
	UseRFC3339  bool         `yaml:"use_rfc3339"`
}

func LoadConfig(path string) (*Config, error) {
	configFile, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config

	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, err
	}

	if config.Level == "" {
		config.Level = "INFO"
	}

	return &config, nil
}

// EmitterConfig translates the file-level settings into the emitter's
// per-instance configuration. An absent append_nul means true; old syslog
// daemons expect the NUL terminator, so opting out is explicit.
func (c *Config) EmitterConfig() syslog.EmitterConfig {
	appendNul := true
	if c.AppendNul != nil {
		appendNul = *c.AppendNul
	}

	return syslog.EmitterConfig{
		Drain:     c.Destination,
		Ident:     c.Ident,
		AppendNul: appendNul,
	}
}
