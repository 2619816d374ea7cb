package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabasesConfig     `mapstructure:"database"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Documents     DocumentsConfig     `mapstructure:"documents"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Documents DatabaseConfig `mapstructure:"documents"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds S3-compatible blob store configuration
type StorageConfig struct {
	Region       string `mapstructure:"region"`
	BaseEndpoint string `mapstructure:"base_endpoint"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
}

// NotificationsConfig holds Kafka event producer configuration
type NotificationsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Broker  string `mapstructure:"broker"`
	Topic   string `mapstructure:"topic"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DocumentsConfig holds document generation policy
type DocumentsConfig struct {
	// FlattenOnGenerate makes filled fields read-only in the generated PDF.
	// Policy decision, off by default.
	FlattenOnGenerate bool `mapstructure:"flatten_on_generate"`
	// MaxTemplateSizeBytes caps template uploads
	MaxTemplateSizeBytes int64 `mapstructure:"max_template_size_bytes"`
	// MaxSignedSizeBytes caps signed document uploads
	MaxSignedSizeBytes int64 `mapstructure:"max_signed_size_bytes"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")
	}

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("DOC_MGT")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyDefaults(&config)

	globalConfig = &config
	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Documents.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Documents.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	if config.Storage.Region == "" {
		return fmt.Errorf("storage region is required")
	}

	if config.Notifications.Enabled {
		if config.Notifications.Broker == "" {
			return fmt.Errorf("notifications broker is required when notifications are enabled")
		}
		if config.Notifications.Topic == "" {
			return fmt.Errorf("notifications topic is required when notifications are enabled")
		}
	}

	return nil
}

// applyDefaults fills optional settings with safe defaults
func applyDefaults(config *Config) {
	if config.Documents.MaxTemplateSizeBytes <= 0 {
		config.Documents.MaxTemplateSizeBytes = 10 << 20 // 10 MB
	}
	if config.Documents.MaxSignedSizeBytes <= 0 {
		config.Documents.MaxSignedSizeBytes = 20 << 20 // 20 MB
	}
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}
