// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Listen   ListenConfig   `toml:"listen"`
	Daemon   DaemonConfig   `toml:"daemon"`
	Deepgram DeepgramConfig `toml:"deepgram"`
	Demo     DemoConfig     `toml:"demo"`
}

// ListenConfig maps listening-related settings.
type ListenConfig struct {
	Engine   *string `toml:"engine"`
	Locale   *string `toml:"locale"`
	Preview  *int    `toml:"preview"`
	LogLevel *string `toml:"log-level"`
}

// DaemonConfig maps settings of the local transcription daemon.
type DaemonConfig struct {
	Socket *string `toml:"socket"`
}

// DeepgramConfig maps settings of the Deepgram streaming engine.
type DeepgramConfig struct {
	APIKey     *string `toml:"api-key"`
	Model      *string `toml:"model"`
	SampleRate *int    `toml:"sample-rate"`
	// Audio is a raw PCM file path, or "-" for stdin.
	Audio *string `toml:"audio"`
}

// DemoConfig maps settings of the offline demo engine.
type DemoConfig struct {
	Interval *string `toml:"interval"`
	Words    *int    `toml:"words"`
	WordList *string `toml:"wordlist"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
