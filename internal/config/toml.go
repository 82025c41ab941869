// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Columns ColumnsConfig `toml:"columns"`
	Report  ReportConfig  `toml:"report"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
}

// ColumnsConfig maps input header names.
type ColumnsConfig struct {
	Date    *string `toml:"date"`
	Product *string `toml:"product"`
	Company *string `toml:"company"`
}

// ReportConfig maps report-related settings.
type ReportConfig struct {
	Format *string `toml:"format"`
	Save   *bool   `toml:"save"`
	Top    *int    `toml:"top"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// StoreConfig maps run history settings.
type StoreConfig struct {
	Path *string `toml:"path"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
