package coiserve

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort = 8000
	DefaultRoot = "."
)

// FileConfig is the YAML configuration file format.
// Zero values mean the setting is not present in the file.
type FileConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Root string `yaml:"root"`
}

// LoadConfigFile reads and parses the YAML config file with the given name.
func LoadConfigFile(filename string) (FileConfig, error) {
	var config FileConfig
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, &ConfigError{Field: "config file", Value: filename, Err: err}
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, &ConfigError{Field: "config file", Value: filename, Err: err}
	}
	return config, nil
}

// Merge copies the settings present in the file onto c.
func (fc FileConfig) Merge(c *Config) {
	if fc.Host != "" {
		c.Host = fc.Host
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.Root != "" {
		c.Root = fc.Root
	}
}
