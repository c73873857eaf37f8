package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the node configuration loaded from TOML.
type Config struct {
	RPCAddress        string `toml:"RPCAddress"`
	DataDir           string `toml:"DataDir"`
	Environment       string `toml:"Environment"`
	FeeRecipient      string `toml:"FeeRecipient"`
	VaultAddress      string `toml:"VaultAddress"`
	ProtocolFeeBps    uint32 `toml:"ProtocolFeeBps"`
	MinEscrowAmount   string `toml:"MinEscrowAmount"`
	MaxEscrowDuration int64  `toml:"MaxEscrowDuration"`
	Paused            bool   `toml:"Paused"`
	Emergency         bool   `toml:"Emergency"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path, cfg)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:        "127.0.0.1:8645",
		DataDir:           "./custodia-data",
		Environment:       "local",
		ProtocolFeeBps:    50,
		MinEscrowAmount:   "100",
		MaxEscrowDuration: 31_536_000,
	}
}

func createDefault(path string, cfg *Config) (*Config, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parseable fields without resolving them.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress required")
	}
	if c.ProtocolFeeBps > 10_000 {
		return fmt.Errorf("config: ProtocolFeeBps must be <= 10000")
	}
	if _, err := c.MinAmount(); err != nil {
		return err
	}
	if c.FeeRecipient != "" {
		if _, err := ParseAddress(c.FeeRecipient); err != nil {
			return fmt.Errorf("config: FeeRecipient: %w", err)
		}
	}
	if c.VaultAddress != "" {
		if _, err := ParseAddress(c.VaultAddress); err != nil {
			return fmt.Errorf("config: VaultAddress: %w", err)
		}
	}
	if c.MaxEscrowDuration <= 0 {
		return fmt.Errorf("config: MaxEscrowDuration must be positive")
	}
	return nil
}

// MinAmount parses the configured escrow amount floor.
func (c *Config) MinAmount() (*big.Int, error) {
	trimmed := strings.TrimSpace(c.MinEscrowAmount)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("config: MinEscrowAmount must be a non-negative integer")
	}
	return amount, nil
}

// ParseAddress decodes a 20-byte hex address, with or without 0x prefix.
func ParseAddress(s string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("invalid hex address: %w", err)
	}
	if len(raw) != 20 {
		return out, fmt.Errorf("address must be 20 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// Switches adapts the static pause/emergency flags to the guard interfaces
// consumed by the escrow engine.
type Switches struct {
	Pause bool
	Halt  bool
}

// IsPaused implements common.PauseView over the static config flags.
func (s Switches) IsPaused(string) bool { return s.Pause }

// InEmergency implements common.EmergencyView.
func (s Switches) InEmergency() bool { return s.Halt }
