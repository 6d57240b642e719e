// Package setup loads service configuration from setup.yaml plus environment
// overrides, and opens the database connection the rest of the service runs
// on.
package setup

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Economics EconomicsConfig `yaml:"economics"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Admin     AdminConfig     `yaml:"admin"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// EconomicsConfig carries every tunable the pricing and payout paths read.
// Amount fields are decimal strings at 1e18 scale.
type EconomicsConfig struct {
	// FeeRateBps is the platform fee in basis points taken from every
	// trade's cost.
	FeeRateBps int64 `yaml:"feeRateBps"`

	// MinLiquidity is the smallest accepted LMSR b parameter.
	MinLiquidity string `yaml:"minLiquidity"`

	// InitialTraderBalance funds newly registered traders.
	InitialTraderBalance string `yaml:"initialTraderBalance"`

	MinDescriptionLen int `yaml:"minDescriptionLen"`
	MaxDescriptionLen int `yaml:"maxDescriptionLen"`

	// Deadline window relative to creation time, exclusive on both ends.
	MinDeadlineLead   time.Duration `yaml:"minDeadlineLead"`
	MaxDeadlineWindow time.Duration `yaml:"maxDeadlineWindow"`
}

type OracleConfig struct {
	// Feeds maps feed IDs to HTTP endpoints returning a JSON reading.
	Feeds map[string]string `yaml:"feeds"`

	// Static pool reference for liquidity markets.
	PoolEndpoint string `yaml:"poolEndpoint"`
	PoolTokenA   string `yaml:"poolTokenA"`
	PoolTokenB   string `yaml:"poolTokenB"`
}

type AdminConfig struct {
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash string        `yaml:"passwordHash"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenTTL     time.Duration `yaml:"tokenTTL"`
}

// Default returns the configuration used when setup.yaml is absent.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{ListenAddr: ":8080"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "predictcore.db"},
		Economics: EconomicsConfig{
			FeeRateBps:           150,
			MinLiquidity:         "1000000000000000", // 0.001
			InitialTraderBalance: "1000000000000000000000", // 1000.0
			MinDescriptionLen:    10,
			MaxDescriptionLen:    200,
			MinDeadlineLead:      time.Hour,
			MaxDeadlineWindow:    30 * 24 * time.Hour,
		},
		Oracle: OracleConfig{
			Feeds:      map[string]string{},
			PoolTokenA: "WETH",
			PoolTokenB: "USDC",
		},
		Admin: AdminConfig{TokenTTL: time.Hour},
	}
}

// Load reads the YAML config at path (if it exists) over the defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("setup: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("setup: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if _, err := cfg.MinLiquidityBig(); err != nil {
		return nil, err
	}
	if _, err := cfg.InitialTraderBalanceBig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		c.Admin.PasswordHash = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Admin.JWTSecret = v
	}
}

// MinLiquidityBig parses the minimum liquidity parameter.
func (c *Config) MinLiquidityBig() (*big.Int, error) {
	return parseAmount("minLiquidity", c.Economics.MinLiquidity)
}

// InitialTraderBalanceBig parses the starting trader balance.
func (c *Config) InitialTraderBalanceBig() (*big.Int, error) {
	return parseAmount("initialTraderBalance", c.Economics.InitialTraderBalance)
}

func parseAmount(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("setup: economics.%s: invalid amount %q", name, s)
	}
	return v, nil
}

// OpenDatabase connects to the configured database.
func OpenDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case "sqlite", "":
		return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("setup: unknown database driver %q", cfg.Driver)
	}
}
