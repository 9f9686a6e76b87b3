package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ChannelConfig bounds one minting channel.
type ChannelConfig struct {
	RatePerSecond string `toml:"RatePerSecond"`
	HardCap       string `toml:"HardCap"`
}

// Config is the daemon configuration persisted as TOML.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`

	LogLevel   string `toml:"LogLevel"`
	LogPath    string `toml:"LogPath"`
	LogMaxSize int    `toml:"LogMaxSizeMB"`

	// Treasury receives the genesis supply and the admin and minter
	// capabilities on first start.
	Treasury      string `toml:"Treasury"`
	GenesisSupply string `toml:"GenesisSupply"`

	AdminChannel ChannelConfig `toml:"AdminChannel"`
	GameChannel  ChannelConfig `toml:"GameChannel"`

	// VestingPeriodSeconds overrides the unlock vesting window. Zero keeps
	// the engine default.
	VestingPeriodSeconds uint64 `toml:"VestingPeriodSeconds"`

	// RateLimitPerSecond and RateLimitBurst throttle gateway clients.
	RateLimitPerSecond float64 `toml:"RateLimitPerSecond"`
	RateLimitBurst     int     `toml:"RateLimitBurst"`

	// EventBuffer bounds the in-memory event ring served by the gateway.
	EventBuffer int `toml:"EventBuffer"`
}

// Load reads the configuration at path, creating a default file when none
// exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./tokenforge-data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogMaxSize <= 0 {
		cfg.LogMaxSize = 100
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 50
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 1024
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		GenesisSupply: "100000000000000", // 100,000 tokens at 9 decimals
		AdminChannel: ChannelConfig{
			RatePerSecond: "1000000000", // 1 token/s
			HardCap:       "10000000000000",
		},
		GameChannel: ChannelConfig{
			RatePerSecond: "40000000", // 0.04 token/s
			HardCap:       "10000000000000",
		},
	}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ParseAmount parses a decimal base-unit amount. Empty strings parse to
// zero.
func ParseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("config: negative amount %q", value)
	}
	return amount, nil
}
