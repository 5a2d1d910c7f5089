package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config aggregates service configuration, loaded from MUNIM_* environment
// variables with code defaults for everything.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// StorageConfig selects the storage gateway. An empty Path means the
// in-memory gateway; a file path enables the SQLite gateway.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("MUNIM_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MUNIM_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.addr") {
		k.Set("server.addr", ":8080")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	addr, err := normalizeAddr(cfg.Server.Addr)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	return &cfg, nil
}

// normalizeAddr accepts a bare port ("8080") or a full address (":8080",
// "127.0.0.1:8080").
func normalizeAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ":8080", nil
	}
	if strings.Contains(addr, " ") {
		return "", fmt.Errorf("invalid server addr: %q", addr)
	}
	if strings.Contains(addr, ":") {
		return addr, nil
	}
	return ":" + addr, nil
}
