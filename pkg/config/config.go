package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Percent values are integers scaled so that 100% == 10^18.
const (
	PctBase       uint64 = 1e18
	MinSupportPct uint64 = 50 * 1e16
)

// Config holds all configuration settings for the engine daemon
type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Governance  GovernanceConfig `mapstructure:"governance"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Poker       PokerConfig      `mapstructure:"poker"`
	Genesis     GenesisConfig    `mapstructure:"genesis"`
}

// GovernanceConfig holds the immutable engine parameters fixed at init
type GovernanceConfig struct {
	SupportPct              uint64        `mapstructure:"support_pct"`
	QueuePeriod             time.Duration `mapstructure:"queue_period"`
	BoostPeriod             time.Duration `mapstructure:"boost_period"`
	BoostPeriodExtension    time.Duration `mapstructure:"boost_period_extension"`
	PendedBoostPeriod       time.Duration `mapstructure:"pended_boost_period"`
	CompensationFeePct      uint64        `mapstructure:"compensation_fee_pct"`
	ConfidenceThresholdBase uint64        `mapstructure:"confidence_threshold_base"`
	CustodyAccount          string        `mapstructure:"custody_account"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL      string        `mapstructure:"url"`
	MaxConns int           `mapstructure:"max_conns"`
	Timeout  time.Duration `mapstructure:"timeout"`
	SSLMode  string        `mapstructure:"ssl_mode"`
}

// PokerConfig holds lifecycle-poker settings
type PokerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ScanSchedule string `mapstructure:"scan_schedule"`
	FeeAccount   string `mapstructure:"fee_account"`
}

// GenesisConfig seeds the in-memory ledgers of the demo daemon
type GenesisConfig struct {
	VoteBalances  map[string]uint64 `mapstructure:"vote_balances"`
	StakeBalances map[string]uint64 `mapstructure:"stake_balances"`
}

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, will rely on defaults and env vars
	}

	v.SetEnvPrefix("HC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	// Governance defaults: 51% support, 24h queue track, 6h boosted track,
	// 1h minimum pended interval, confidence threshold 4x.
	v.SetDefault("governance.support_pct", uint64(51*1e16))
	v.SetDefault("governance.queue_period", "24h")
	v.SetDefault("governance.boost_period", "6h")
	v.SetDefault("governance.boost_period_extension", "0s")
	v.SetDefault("governance.pended_boost_period", "1h")
	v.SetDefault("governance.compensation_fee_pct", 10)
	v.SetDefault("governance.confidence_threshold_base", 4)
	v.SetDefault("governance.custody_account", "engine:custody")

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.timeout", "30s")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("poker.enabled", true)
	v.SetDefault("poker.scan_schedule", "*/30 * * * * *")
	v.SetDefault("poker.fee_account", "engine:operator")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateGovernance(); err != nil {
		return fmt.Errorf("governance config: %w", err)
	}

	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.validatePoker(); err != nil {
		return fmt.Errorf("poker config: %w", err)
	}

	return nil
}

func (c *Config) validateGovernance() error {
	g := &c.Governance

	if g.SupportPct < MinSupportPct {
		return fmt.Errorf("support_pct %d is below 50%% (%d)", g.SupportPct, MinSupportPct)
	}
	if g.SupportPct >= PctBase {
		return fmt.Errorf("support_pct %d is at or above 100%% (%d)", g.SupportPct, PctBase)
	}
	if g.QueuePeriod <= 0 {
		return fmt.Errorf("queue_period must be positive")
	}
	if g.BoostPeriod <= 0 {
		return fmt.Errorf("boost_period must be positive")
	}
	if g.BoostPeriodExtension < 0 {
		return fmt.Errorf("boost_period_extension cannot be negative")
	}
	if g.PendedBoostPeriod <= 0 {
		return fmt.Errorf("pended_boost_period must be positive")
	}
	if g.CompensationFeePct == 0 {
		return fmt.Errorf("compensation_fee_pct must be positive")
	}
	if g.ConfidenceThresholdBase == 0 {
		return fmt.Errorf("confidence_threshold_base must be positive")
	}
	if g.CustodyAccount == "" {
		return fmt.Errorf("custody_account cannot be empty")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	// An empty URL disables persistence entirely.
	if c.Database.URL == "" {
		return nil
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be positive")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) validatePoker() error {
	if !c.Poker.Enabled {
		return nil
	}
	if c.Poker.ScanSchedule == "" {
		return fmt.Errorf("scan_schedule cannot be empty")
	}
	if c.Poker.FeeAccount == "" {
		return fmt.Errorf("fee_account cannot be empty")
	}
	return nil
}

// GetLogLevel returns a zap log level based on the configured string
func (c *Config) GetLogLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "warn":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Environment) == "development"
}
