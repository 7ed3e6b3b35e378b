package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App  AppConfig  `toml:"app"`
	Auth AuthConfig `toml:"auth"`
	Sync SyncConfig `toml:"sync"`
}

type AppConfig struct {
	Addr    string `toml:"addr"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	JWTIssuer   string `toml:"jwt_issuer"`
	JWTTTLHours int    `toml:"jwt_ttl_hours"`
}

type SyncConfig struct {
	TCPAddr string `toml:"tcp_addr"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	if a.JWTTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.JWTTTLHours) * time.Hour
}

// Load reads the optional TOML config file, then applies env overrides.
// Called once at startup; the result is passed down explicitly and never
// mutated afterwards.
func Load() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("MANGASHELF_CONFIG", "configs/config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.App.Addr = getEnv("MANGASHELF_HTTP_ADDR", cfg.App.Addr)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.Auth.JWTSecret = getEnv("MANGASHELF_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTIssuer = getEnv("MANGASHELF_JWT_ISSUER", cfg.Auth.JWTIssuer)
	cfg.Auth.JWTTTLHours = getEnvAsInt("MANGASHELF_JWT_TTL_HOURS", cfg.Auth.JWTTTLHours)
	cfg.Sync.TCPAddr = getEnv("MANGASHELF_SYNC_ADDR", cfg.Sync.TCPAddr)

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Addr: ":8080",
		},
		Auth: AuthConfig{
			// dev default (change for demo / production)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "mangashelf",
			JWTTTLHours: 24,
		},
		Sync: SyncConfig{
			TCPAddr: ":7070",
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
