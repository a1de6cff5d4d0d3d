package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bizcontrol/internal/retail"
)

// Config is the YAML application configuration: where to listen, where the
// snapshot lives, and the access-policy switches.
type Config struct {
	Server  ServerConfig       `yaml:"server"`
	Storage StorageConfig      `yaml:"storage"`
	Policy  retail.PolicyFlags `yaml:"policy"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

type StorageConfig struct {
	// Backend selects the snapshot store: "file", "redis" or "memory".
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8081"},
		Storage: StorageConfig{Backend: "file", Path: "data/snapshot.json", Redis: RedisConfig{Addr: "localhost:6379"}},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	switch cfg.Storage.Backend {
	case "file", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}
