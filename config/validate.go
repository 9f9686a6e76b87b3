package config

import (
	"fmt"

	"tokenforge/core/types"
)

// Validate checks the configuration for values the daemon cannot start with.
func (cfg *Config) Validate() error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("config: ListenAddress must not be empty")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LogLevel %q", cfg.LogLevel)
	}
	if cfg.Treasury != "" {
		if _, err := types.ParseAddress(cfg.Treasury); err != nil {
			return fmt.Errorf("config: invalid Treasury: %w", err)
		}
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"GenesisSupply", cfg.GenesisSupply},
		{"AdminChannel.RatePerSecond", cfg.AdminChannel.RatePerSecond},
		{"AdminChannel.HardCap", cfg.AdminChannel.HardCap},
		{"GameChannel.RatePerSecond", cfg.GameChannel.RatePerSecond},
		{"GameChannel.HardCap", cfg.GameChannel.HardCap},
	} {
		if _, err := ParseAmount(field.value); err != nil {
			return fmt.Errorf("config: invalid %s: %w", field.name, err)
		}
	}
	return nil
}
