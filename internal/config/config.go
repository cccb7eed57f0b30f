package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the BBS server configuration. Security policy (rate
// thresholds, timeouts, password rules) is fixed in code and is not
// part of this file.
type Config struct {
	BBS    BBSConfig    `yaml:"bbs"`
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
}

// BBSConfig holds board identity settings.
type BBSConfig struct {
	Name  string `yaml:"name"`
	Sysop string `yaml:"sysop"`
}

// ServerConfig holds network listener settings.
type ServerConfig struct {
	BindAddr string `yaml:"bind_addr"`
	Port     int    `yaml:"port"`
	HTTPPort int    `yaml:"http_port"`
}

// PathsConfig holds filesystem paths for data storage.
type PathsConfig struct {
	Data     string `yaml:"data"`
	Database string `yaml:"database"`
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	return &Config{
		BBS: BBSConfig{
			Name:  "Secure Text BBS",
			Sysop: "Sysop",
		},
		Server: ServerConfig{
			BindAddr: "0.0.0.0",
			Port:     2323,
			HTTPPort: 8080,
		},
		Paths: PathsConfig{
			Data:     "./data",
			Database: "./data/bbs.db",
		},
	}
}

// Load reads and parses a YAML config file. Missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
