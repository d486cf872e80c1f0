package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Layr-Labs/stampmsg/internal/keys"
)

type Config struct {
	RelayURL     *url.URL
	KeyserverURL *url.URL
	Network      keys.Network

	// RelayToken authorizes reads from this identity's relay inbox.
	RelayToken string

	// PollInterval is the period of message refreshes in watch mode.
	PollInterval time.Duration

	// RelayRPS bounds outgoing relay and keyserver requests; 0 disables it.
	RelayRPS float64

	// MetadataTTL is how long sampled keyserver metadata is reused.
	MetadataTTL time.Duration

	// MetricsAddr, if set, serves /metrics in watch mode.
	MetricsAddr string

	Mnemonic string
}

// File is the optional YAML config. Unset fields keep their defaults and
// environment variables override anything set here.
type File struct {
	RelayURL         string  `yaml:"relayURL"`
	KeyserverURL     string  `yaml:"keyserverURL"`
	Network          string  `yaml:"network"`
	RelayToken       string  `yaml:"relayToken"`
	PollIntervalSecs int     `yaml:"pollIntervalSecs"`
	RelayRPS         float64 `yaml:"relayRPS"`
	MetadataTTLSecs  int     `yaml:"metadataTTLSecs"`
	MetricsAddr      string  `yaml:"metricsAddr"`
}

// FromEnv loads the file named by STAMPMSG_CONFIG, if any, then applies
// environment overrides.
func FromEnv() (*Config, error) {
	return Load(strings.TrimSpace(os.Getenv("STAMPMSG_CONFIG")))
}

// Load reads the YAML file at path (skipped when empty) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	f := File{
		Network:          string(keys.Mainnet),
		PollIntervalSecs: 5,
		RelayRPS:         10,
		MetadataTTLSecs:  300,
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var parsed File
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		merge(&f, parsed)
	}
	return build(f)
}

func merge(dst *File, src File) {
	if src.RelayURL != "" {
		dst.RelayURL = src.RelayURL
	}
	if src.KeyserverURL != "" {
		dst.KeyserverURL = src.KeyserverURL
	}
	if src.Network != "" {
		dst.Network = src.Network
	}
	if src.RelayToken != "" {
		dst.RelayToken = src.RelayToken
	}
	if src.PollIntervalSecs != 0 {
		dst.PollIntervalSecs = src.PollIntervalSecs
	}
	if src.RelayRPS != 0 {
		dst.RelayRPS = src.RelayRPS
	}
	if src.MetadataTTLSecs != 0 {
		dst.MetadataTTLSecs = src.MetadataTTLSecs
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
}

func build(f File) (*Config, error) {
	cfg := &Config{
		RelayToken:  getenv("STAMPMSG_RELAY_TOKEN", f.RelayToken),
		MetricsAddr: getenv("STAMPMSG_METRICS_ADDR", f.MetricsAddr),
		Mnemonic:    strings.TrimSpace(os.Getenv("MNEMONIC")),
	}

	var err error
	if cfg.RelayURL, err = parseURL("STAMPMSG_RELAY_URL", getenv("STAMPMSG_RELAY_URL", f.RelayURL)); err != nil {
		return nil, err
	}
	if cfg.KeyserverURL, err = parseURL("STAMPMSG_KEYSERVER_URL", getenv("STAMPMSG_KEYSERVER_URL", f.KeyserverURL)); err != nil {
		return nil, err
	}
	if cfg.Network, err = keys.ParseNetwork(getenv("STAMPMSG_NETWORK", f.Network)); err != nil {
		return nil, fmt.Errorf("invalid STAMPMSG_NETWORK: %w", err)
	}

	if cfg.PollInterval, err = seconds("STAMPMSG_POLL_INTERVAL_SECS", f.PollIntervalSecs); err != nil {
		return nil, err
	}
	if cfg.MetadataTTL, err = seconds("STAMPMSG_METADATA_TTL_SECS", f.MetadataTTLSecs); err != nil {
		return nil, err
	}

	rps := getenv("STAMPMSG_RELAY_RPS", strconv.FormatFloat(f.RelayRPS, 'f', -1, 64))
	cfg.RelayRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.RelayRPS < 0 {
		return nil, fmt.Errorf("STAMPMSG_RELAY_RPS must be a non-negative number, got %q", rps)
	}
	return cfg, nil
}

func parseURL(name, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s is required (e.g. https://relay.example.com)", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s must be http(s), got %q", name, u.Scheme)
	}
	return u, nil
}

func seconds(name string, def int) (time.Duration, error) {
	raw := getenv(name, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return time.Duration(n) * time.Second, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
