package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Focus    FocusConfig    `mapstructure:"focus"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	Host                string        `mapstructure:"host"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	IdleTimeout         time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout     time.Duration `mapstructure:"shutdown_timeout"`
	NotificationHistory int           `mapstructure:"notification_history"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Backend   string      `mapstructure:"backend"`
	DataDir   string      `mapstructure:"data_dir"`
	BackupDir string      `mapstructure:"backup_dir"`
	Watch     bool        `mapstructure:"watch"`
	KeyPrefix string      `mapstructure:"key_prefix"`
	Redis     RedisConfig `mapstructure:"redis"`
	SQL       SQLConfig   `mapstructure:"sql"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SQLConfig holds the SQL key/value backend configuration
type SQLConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// FocusConfig holds focus timer configuration
type FocusConfig struct {
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	DefaultMinutes int           `mapstructure:"default_minutes"`
}

// TasksConfig holds task lifecycle configuration
type TasksConfig struct {
	ArchiveCompletedAfter time.Duration `mapstructure:"archive_completed_after"`
	RecentLimit           int           `mapstructure:"recent_limit"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Load loads configuration from defaults, an optional config file, the
// environment and the given command line flags, in increasing priority.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.BackupDir == "" {
		cfg.Storage.BackupDir = filepath.Join(cfg.Storage.DataDir, "backups")
	}

	// Validate configuration
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultDataDir is ~/FokusPlaner/data, relative to the working directory
// when no home directory is known.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("FokusPlaner", "data")
	}
	return filepath.Join(home, "FokusPlaner", "data")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "FokusPlaner")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.notification_history", 50)

	// Storage defaults
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.data_dir", DefaultDataDir())
	v.SetDefault("storage.backup_dir", "")
	v.SetDefault("storage.watch", false)
	v.SetDefault("storage.key_prefix", "fokusplaner_")

	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	v.SetDefault("storage.sql.driver", "sqlite3")
	v.SetDefault("storage.sql.dsn", "")
	v.SetDefault("storage.sql.host", "localhost")
	v.SetDefault("storage.sql.port", 5432)
	v.SetDefault("storage.sql.name", "fokusplaner")
	v.SetDefault("storage.sql.user", "postgres")
	v.SetDefault("storage.sql.password", "")
	v.SetDefault("storage.sql.ssl_mode", "disable")
	v.SetDefault("storage.sql.max_open_conns", 5)
	v.SetDefault("storage.sql.max_idle_conns", 2)
	v.SetDefault("storage.sql.conn_max_lifetime", "5m")
	v.SetDefault("storage.sql.conn_max_idle_time", "30s")

	// Focus defaults
	v.SetDefault("focus.tick_interval", "1s")
	v.SetDefault("focus.default_minutes", 20)

	// Task defaults
	v.SetDefault("tasks.archive_completed_after", "2s")
	v.SetDefault("tasks.recent_limit", 6)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "fokusplaner")
}

func bindEnvVars(v *viper.Viper) {
	bind := func(key string, names ...string) {
		envPrefixed := "PLANNER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, envPrefixed}, names...)...)
	}

	// App
	bind("app.environment", "APP_ENVIRONMENT")
	bind("app.debug", "APP_DEBUG")

	// Server
	bind("server.port", "SERVER_PORT")
	bind("server.host", "SERVER_HOST")

	// Storage
	bind("storage.backend", "STORAGE_BACKEND")
	bind("storage.data_dir", "DATA_DIR")
	bind("storage.backup_dir", "BACKUP_DIR")
	bind("storage.redis.host", "REDIS_HOST")
	bind("storage.redis.port", "REDIS_PORT")
	bind("storage.redis.password", "REDIS_PASSWORD")
	bind("storage.redis.db", "REDIS_DB")
	bind("storage.sql.driver", "DB_DRIVER")
	bind("storage.sql.dsn", "DB_DSN")
	bind("storage.sql.host", "DB_HOST")
	bind("storage.sql.port", "DB_PORT")
	bind("storage.sql.name", "DB_NAME")
	bind("storage.sql.user", "DB_USER")
	bind("storage.sql.password", "DB_PASSWORD")
	bind("storage.sql.ssl_mode", "DB_SSL_MODE")

	// Tasks
	bind("tasks.archive_completed_after", "ARCHIVE_COMPLETED_AFTER")

	// Logger
	bind("logger.level", "LOG_LEVEL")
	bind("logger.format", "LOG_FORMAT")
	bind("logger.output", "LOG_OUTPUT")
	bind("logger.filename", "LOG_FILENAME")

	// Security
	bind("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	bind("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	bind("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	bind("metrics.enabled", "ENABLE_METRICS")
}

var flagKeys = map[string]string{
	"data-dir":  "storage.data_dir",
	"backend":   "storage.backend",
	"log-level": "logger.level",
	"port":      "server.port",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendFile:
		if cfg.Storage.DataDir == "" {
			return errors.New("storage data_dir is required for the file backend")
		}
	case BackendMemory:
	case BackendRedis:
		if cfg.Storage.Redis.Host == "" {
			return errors.New("redis host is required for the redis backend")
		}
	case BackendSQL:
		if cfg.Storage.SQL.Driver != "sqlite3" && cfg.Storage.SQL.Driver != "postgres" {
			return fmt.Errorf("unsupported sql driver %q", cfg.Storage.SQL.Driver)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if cfg.Focus.TickInterval <= 0 {
		return errors.New("focus tick_interval must be positive")
	}

	if cfg.Focus.DefaultMinutes <= 0 {
		return errors.New("focus default_minutes must be positive")
	}

	if cfg.Tasks.ArchiveCompletedAfter < 0 {
		return errors.New("tasks archive_completed_after must not be negative")
	}

	return nil
}

// GetDSN returns the database connection string. An empty sqlite DSN
// places the database file inside dataDir.
func (cfg *SQLConfig) GetDSN(dataDir string) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(dataDir, cfg.Name+".db"))
}

// GetAddr returns the Redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Address returns the listen address of the HTTP server
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
