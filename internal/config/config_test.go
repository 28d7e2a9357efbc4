package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	if err := os.Setenv("SERVER_PORT", "9090"); err != nil {
		t.Fatalf("Failed to set SERVER_PORT: %v", err)
	}
	if err := os.Setenv("POSTGRES_HOST", "testhost"); err != nil {
		t.Fatalf("Failed to set POSTGRES_HOST: %v", err)
	}
	if err := os.Setenv("CACHE_BALANCE_TTL", "45s"); err != nil {
		t.Fatalf("Failed to set CACHE_BALANCE_TTL: %v", err)
	}
	if err := os.Setenv("ENABLED_CHAINS", "polkadot,westend"); err != nil {
		t.Fatalf("Failed to set ENABLED_CHAINS: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("POSTGRES_HOST")
		_ = os.Unsetenv("CACHE_BALANCE_TTL")
		_ = os.Unsetenv("ENABLED_CHAINS")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}

	if cfg.Cache.BalanceTTL != 45*time.Second {
		t.Errorf("Cache.BalanceTTL = %v, want %v", cfg.Cache.BalanceTTL, 45*time.Second)
	}

	if len(cfg.Chains.Enabled) != 2 {
		t.Fatalf("Chains.Enabled = %v, want 2 chains", cfg.Chains.Enabled)
	}

	if cfg.Chains.Chains["polkadot"].Decimals != 10 {
		t.Errorf("polkadot decimals = %v, want 10", cfg.Chains.Chains["polkadot"].Decimals)
	}

	if cfg.Chains.Chains["westend"].Decimals != 12 {
		t.Errorf("westend decimals = %v, want 12", cfg.Chains.Chains["westend"].Decimals)
	}

	if cfg.Subscan.Endpoints["polkadot"] == "" {
		t.Error("Subscan endpoint for polkadot should have a default")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_KEY_UNSET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				if err := os.Setenv(tt.key, tt.envValue); err != nil {
					t.Fatalf("Failed to set %s: %v", tt.key, err)
				}
				defer func() { _ = os.Unsetenv(tt.key) }()
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	if err := os.Setenv("TEST_INT", "42"); err != nil {
		t.Fatalf("Failed to set TEST_INT: %v", err)
	}
	if err := os.Setenv("TEST_INT_BAD", "not-a-number"); err != nil {
		t.Fatalf("Failed to set TEST_INT_BAD: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("TEST_INT")
		_ = os.Unsetenv("TEST_INT_BAD")
	}()

	if got := getEnvAsInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvAsInt(TEST_INT) = %v, want 42", got)
	}
	if got := getEnvAsInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getEnvAsInt(TEST_INT_BAD) = %v, want default 7", got)
	}
	if got := getEnvAsInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("getEnvAsInt(TEST_INT_MISSING) = %v, want default 7", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" polkadot , kusama ,, ")
	if len(got) != 2 || got[0] != "polkadot" || got[1] != "kusama" {
		t.Errorf("splitList = %v, want [polkadot kusama]", got)
	}

	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}
