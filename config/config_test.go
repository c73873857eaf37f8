package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "127.0.0.1:8645" {
		t.Fatalf("unexpected default rpc address %q", cfg.RPCAddress)
	}
	if cfg.ProtocolFeeBps != 50 {
		t.Fatalf("unexpected default fee %d", cfg.ProtocolFeeBps)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file written: %v", err)
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = "0.0.0.0:9000"
DataDir = "/tmp/custodia"
ProtocolFeeBps = 75
MinEscrowAmount = "500"
MaxEscrowDuration = 86400
FeeRecipient = "0xcccccccccccccccccccccccccccccccccccccccc"
VaultAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "0.0.0.0:9000" || cfg.ProtocolFeeBps != 75 || cfg.MaxEscrowDuration != 86_400 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	minAmount, err := cfg.MinAmount()
	if err != nil {
		t.Fatalf("min amount: %v", err)
	}
	if minAmount.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected min amount 500, got %s", minAmount)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing rpc address", func(c *Config) { c.RPCAddress = " " }},
		{"fee above range", func(c *Config) { c.ProtocolFeeBps = 10_001 }},
		{"bad min amount", func(c *Config) { c.MinEscrowAmount = "not-a-number" }},
		{"bad fee recipient", func(c *Config) { c.FeeRecipient = "0x1234" }},
		{"bad vault address", func(c *Config) { c.VaultAddress = "zz" }},
		{"non-positive duration", func(c *Config) { c.MaxEscrowDuration = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestParseAddress(t *testing.T) {
	want := [20]byte{0xAA, 0xBB}
	hexAddr := "aabb000000000000000000000000000000000000"
	for _, input := range []string{hexAddr, "0x" + hexAddr, "  " + hexAddr + "  "} {
		got, err := ParseAddress(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %x", input, got)
		}
	}
	if _, err := ParseAddress("aabb"); err == nil {
		t.Fatalf("expected error for short address")
	}
	if _, err := ParseAddress("zz"); err == nil {
		t.Fatalf("expected error for non-hex address")
	}
}

func TestSwitches(t *testing.T) {
	s := Switches{Pause: true}
	if !s.IsPaused("escrow") || s.InEmergency() {
		t.Fatalf("unexpected switch state: %+v", s)
	}
	s = Switches{Halt: true}
	if s.IsPaused("escrow") || !s.InEmergency() {
		t.Fatalf("unexpected switch state: %+v", s)
	}
}
