package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/medichain/medichain/core"
)

// Logical contract names resolvable through Config.Contract.
const (
	ContractDIDRegistry  = "DID_REGISTRY"
	ContractDIDAuth      = "DID_AUTH"
	ContractDIDVerifier  = "DID_VERIFIER"
	ContractDataRegistry = "DATA_REGISTRY"
	ContractConsent      = "CONSENT"
	ContractCompensation = "COMPENSATION"
	ContractToken        = "TOKEN"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	ChainRPCURL string `mapstructure:"CHAIN_RPC_URL"`

	// Hex-encoded secp256k1 key used to sign registry transactions.
	ChainPrivateKey string `mapstructure:"CHAIN_PRIVATE_KEY"`

	JWTAccessSecret  string `mapstructure:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`

	ChallengeTTL time.Duration `mapstructure:"CHALLENGE_TTL"`
	AccessTTL    time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL   time.Duration `mapstructure:"REFRESH_TTL"`

	contracts map[string]string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "9000")
	v.SetDefault("ENV", "development")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("CHALLENGE_TTL", 5*time.Minute)
	v.SetDefault("ACCESS_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TTL", 5*24*time.Hour)

	for _, key := range []string{
		"PORT", "ENV", "REDIS_URL", "CHAIN_RPC_URL", "CHAIN_PRIVATE_KEY",
		"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET",
		"CHALLENGE_TTL", "ACCESS_TTL", "REFRESH_TTL",
	} {
		v.BindEnv(key)
	}
	for _, name := range ContractNames() {
		v.BindEnv("CONTRACT_" + name)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if cfg.ChainRPCURL == "" {
		return nil, fmt.Errorf("CHAIN_RPC_URL is required")
	}

	cfg.contracts = make(map[string]string)
	for _, name := range ContractNames() {
		if addr := v.GetString("CONTRACT_" + name); addr != "" {
			cfg.contracts[name] = addr
		}
	}

	return cfg, nil
}

// ContractNames lists every logical contract name the platform knows.
func ContractNames() []string {
	return []string{
		ContractDIDRegistry,
		ContractDIDAuth,
		ContractDIDVerifier,
		ContractDataRegistry,
		ContractConsent,
		ContractCompensation,
		ContractToken,
	}
}

// Contract returns the configured address for a logical contract name.
// Unknown names are a configuration error, not an empty result.
func (c *Config) Contract(name string) (string, error) {
	known := false
	for _, n := range ContractNames() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownContract, name)
	}

	addr, ok := c.contracts[name]
	if !ok {
		return "", fmt.Errorf("no address configured for contract %q", name)
	}
	return addr, nil
}

// HasContract reports whether an address is configured for name. Optional
// contracts (DID_VERIFIER) are wired only when present.
func (c *Config) HasContract(name string) bool {
	_, ok := c.contracts[name]
	return ok
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
