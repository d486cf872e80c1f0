package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Layr-Labs/stampmsg/internal/keys"
)

var envKeys = []string{
	"STAMPMSG_CONFIG",
	"STAMPMSG_RELAY_URL",
	"STAMPMSG_KEYSERVER_URL",
	"STAMPMSG_NETWORK",
	"STAMPMSG_RELAY_TOKEN",
	"STAMPMSG_POLL_INTERVAL_SECS",
	"STAMPMSG_RELAY_RPS",
	"STAMPMSG_METADATA_TTL_SECS",
	"STAMPMSG_METRICS_ADDR",
	"MNEMONIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STAMPMSG_RELAY_URL", "http://127.0.0.1:8080")
	t.Setenv("STAMPMSG_KEYSERVER_URL", "https://keys.example.com")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Network != keys.Mainnet {
		t.Fatalf("network = %s", cfg.Network)
	}
	if cfg.PollInterval != 5*time.Second || cfg.MetadataTTL != 300*time.Second {
		t.Fatalf("intervals = %s %s", cfg.PollInterval, cfg.MetadataTTL)
	}
	if cfg.RelayRPS != 10 {
		t.Fatalf("rps = %v", cfg.RelayRPS)
	}
	if cfg.KeyserverURL.Host != "keys.example.com" {
		t.Fatalf("keyserver = %s", cfg.KeyserverURL)
	}
}

func TestFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing relay", map[string]string{"STAMPMSG_KEYSERVER_URL": "http://k"}, "STAMPMSG_RELAY_URL is required"},
		{"bad scheme", map[string]string{"STAMPMSG_RELAY_URL": "ftp://r", "STAMPMSG_KEYSERVER_URL": "http://k"}, "must be http(s)"},
		{"bad network", map[string]string{"STAMPMSG_RELAY_URL": "http://r", "STAMPMSG_KEYSERVER_URL": "http://k", "STAMPMSG_NETWORK": "regtest"}, "STAMPMSG_NETWORK"},
		{"zero poll", map[string]string{"STAMPMSG_RELAY_URL": "http://r", "STAMPMSG_KEYSERVER_URL": "http://k", "STAMPMSG_POLL_INTERVAL_SECS": "0"}, "STAMPMSG_POLL_INTERVAL_SECS"},
		{"negative rps", map[string]string{"STAMPMSG_RELAY_URL": "http://r", "STAMPMSG_KEYSERVER_URL": "http://k", "STAMPMSG_RELAY_RPS": "-1"}, "STAMPMSG_RELAY_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "stampmsg.yaml")
	data := `relayURL: http://relay.local:8080
keyserverURL: http://keys.local:8081
network: testnet
pollIntervalSecs: 30
relayToken: from-file
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("STAMPMSG_CONFIG", path)
	t.Setenv("STAMPMSG_RELAY_TOKEN", "from-env")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Network != keys.Testnet {
		t.Fatalf("network = %s", cfg.Network)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("poll = %s", cfg.PollInterval)
	}
	if cfg.RelayToken != "from-env" {
		t.Fatalf("token = %q", cfg.RelayToken)
	}
	if cfg.RelayURL.String() != "http://relay.local:8080" {
		t.Fatalf("relay = %s", cfg.RelayURL)
	}
	// Unset file fields keep defaults.
	if cfg.MetadataTTL != 300*time.Second {
		t.Fatalf("ttl = %s", cfg.MetadataTTL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
