// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Camunda   CamundaConfig   `mapstructure:"camunda"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig drives the HTTP transport.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequestTimeout int      `mapstructure:"request_timeout"` // milliseconds
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
}

// Address returns the listen address for the configured port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Reference data sources.
const (
	SourceNone     = "none"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceFile     = "file"
)

// ReferenceConfig selects where the percentile tables come from.
type ReferenceConfig struct {
	Source      string `mapstructure:"source"`
	FilePath    string `mapstructure:"file_path"`
	CacheTTL    int    `mapstructure:"cache_ttl"` // milliseconds
	LoadRetries int    `mapstructure:"load_retries"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// GetDSN returns a modernc sqlite DSN opened read-only.
func (s SQLiteConfig) GetDSN() string {
	return fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", s.Path)
}

// RedisConfig is optional; an empty address disables the reference cache.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type CamundaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	RegistryPath  string `mapstructure:"registry_path"`
}

// ScoringConfig selects calculator variants. LegacyScaling is the single
// switch for the historical x100 percentile scale.
type ScoringConfig struct {
	LegacyScaling   bool   `mapstructure:"legacy_scaling"`
	IncomeMode      string `mapstructure:"income_mode"`
	NetWorthMode    string `mapstructure:"net_worth_mode"`
	BudgetMode      string `mapstructure:"budget_mode"`
	RetirementCurve string `mapstructure:"retirement_curve"`
	RetirementAge   int    `mapstructure:"retirement_age"`
	HorizonAge      int    `mapstructure:"horizon_age"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
