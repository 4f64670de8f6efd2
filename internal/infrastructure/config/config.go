package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Sync        SyncConfig
	Marketplace MarketplaceConfig
	ERP         ERPConfig
	Workflow    WorkflowConfig
	Mail        MailConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SyncConfig holds status fan-out and reconciliation tuning
type SyncConfig struct {
	CallTimeout       time.Duration // per external adapter call
	ReconcileEnabled  bool
	ReconcileInterval time.Duration
	ReconcileWorkers  int
	// ResolutionPolicy is one of marketplace_wins, internal_wins, manual
	ResolutionPolicy string
}

// MarketplaceConfig holds marketplace adapter settings
type MarketplaceConfig struct {
	ZidEnabled     bool
	ZidBaseURL     string
	ZidToken       string
	ZidStoreID     string
	SallaEnabled   bool
	SallaBaseURL   string
	SallaToken     string
	RequestTimeout time.Duration
}

// ERPConfig holds ERP (Odoo JSON-RPC) connection settings
type ERPConfig struct {
	Enabled  bool
	BaseURL  string
	Database string
	Username string
	APIKey   string
}

// WorkflowConfig holds workflow engine webhook settings
type WorkflowConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
}

// MailConfig holds the mail service settings
type MailConfig struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	FromName string
	FromAddr string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ORDERHUB_ prefix (e.g., ORDERHUB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Sync: SyncConfig{
			CallTimeout:       v.GetDuration("sync.call_timeout"),
			ReconcileEnabled:  v.GetBool("sync.reconcile_enabled"),
			ReconcileInterval: v.GetDuration("sync.reconcile_interval"),
			ReconcileWorkers:  v.GetInt("sync.reconcile_workers"),
			ResolutionPolicy:  v.GetString("sync.resolution_policy"),
		},
		Marketplace: MarketplaceConfig{
			ZidEnabled:     v.GetBool("marketplace.zid_enabled"),
			ZidBaseURL:     v.GetString("marketplace.zid_base_url"),
			ZidToken:       v.GetString("marketplace.zid_token"),
			ZidStoreID:     v.GetString("marketplace.zid_store_id"),
			SallaEnabled:   v.GetBool("marketplace.salla_enabled"),
			SallaBaseURL:   v.GetString("marketplace.salla_base_url"),
			SallaToken:     v.GetString("marketplace.salla_token"),
			RequestTimeout: v.GetDuration("marketplace.request_timeout"),
		},
		ERP: ERPConfig{
			Enabled:  v.GetBool("erp.enabled"),
			BaseURL:  v.GetString("erp.base_url"),
			Database: v.GetString("erp.database"),
			Username: v.GetString("erp.username"),
			APIKey:   v.GetString("erp.api_key"),
		},
		Workflow: WorkflowConfig{
			Enabled: v.GetBool("workflow.enabled"),
			BaseURL: v.GetString("workflow.base_url"),
			APIKey:  v.GetString("workflow.api_key"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("mail.enabled"),
			BaseURL:  v.GetString("mail.base_url"),
			APIKey:   v.GetString("mail.api_key"),
			FromName: v.GetString("mail.from_name"),
			FromAddr: v.GetString("mail.from_addr"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "orderhub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "orderhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}
	}
	if cfg.Sync.CallTimeout == 0 {
		cfg.Sync.CallTimeout = 30 * time.Second
	}
	if cfg.Sync.ReconcileInterval == 0 {
		cfg.Sync.ReconcileInterval = 15 * time.Minute
	}
	if cfg.Sync.ReconcileWorkers == 0 {
		cfg.Sync.ReconcileWorkers = 4
	}
	if cfg.Sync.ResolutionPolicy == "" {
		cfg.Sync.ResolutionPolicy = "marketplace_wins"
	}
	if cfg.Marketplace.RequestTimeout == 0 {
		cfg.Marketplace.RequestTimeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Sync.ResolutionPolicy {
	case "marketplace_wins", "internal_wins", "manual":
	default:
		return fmt.Errorf("sync.resolution_policy must be marketplace_wins, internal_wins or manual, got %q", c.Sync.ResolutionPolicy)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Marketplace.ZidEnabled && c.Marketplace.ZidToken == "" {
			return fmt.Errorf("marketplace.zid_token is required when the Zid adapter is enabled in production")
		}
		if c.ERP.Enabled && c.ERP.APIKey == "" {
			return fmt.Errorf("erp.api_key is required when the ERP adapter is enabled in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
