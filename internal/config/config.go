package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings
type Config struct {
	Server struct {
		Name     string `yaml:"name"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		WebPort  string `yaml:"web_port"`
		Software string `yaml:"software"`
	} `yaml:"server"`
	Storage struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Limits struct {
		MaxSessions           int `yaml:"max_sessions"`
		MaxChannelMembers     int `yaml:"max_channel_members"`
		MaxChannelsPerSession int `yaml:"max_channels_per_session"`
		MaxNameLen            int `yaml:"max_name_len"`
	} `yaml:"limits"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Name = "irc.localhost"
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "6667"
	cfg.Server.WebPort = "8080"
	cfg.Server.Software = "ircd-0.1"
	cfg.Storage.SQLitePath = "irc.db"
	cfg.Limits.MaxSessions = 64
	cfg.Limits.MaxChannelMembers = 64
	cfg.Limits.MaxChannelsPerSession = 8
	cfg.Limits.MaxNameLen = 9
	return cfg
}

// Load reads the configuration file and returns a Config struct.
// A missing path or file falls back to defaults; environment variables
// IRC_HOST and IRC_PORT override the listen address either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if host, ok := os.LookupEnv("IRC_HOST"); ok {
		cfg.Server.Host = host
	}
	if port, ok := os.LookupEnv("IRC_PORT"); ok {
		cfg.Server.Port = port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server name must not be empty")
	}
	if c.Limits.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", c.Limits.MaxSessions)
	}
	if c.Limits.MaxChannelMembers < 1 {
		return fmt.Errorf("max_channel_members must be at least 1, got %d", c.Limits.MaxChannelMembers)
	}
	if c.Limits.MaxChannelsPerSession < 1 {
		return fmt.Errorf("max_channels_per_session must be at least 1, got %d", c.Limits.MaxChannelsPerSession)
	}
	if c.Limits.MaxNameLen < 1 {
		return fmt.Errorf("max_name_len must be at least 1, got %d", c.Limits.MaxNameLen)
	}
	return nil
}
