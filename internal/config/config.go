package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Logging  LoggingConfig
	Matching MatchingConfig
	Mail     MailConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	CandidateTTL time.Duration
}

type JWTConfig struct {
	AccessSecret string
}

type StorageConfig struct {
	Type      string
	ImagePath string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// MatchingConfig tunes the candidate matcher and the match request lifecycle.
type MatchingConfig struct {
	DailyCap       int
	ProximityLevel int
	// MaxCandidates caps FindCandidates output; zero means no cap.
	MaxCandidates int
}

type MailConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	SendTimeout time.Duration
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15*time.Second)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)

	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_CANDIDATE_TTL", 5*time.Minute)

	viper.SetDefault("STORAGE_TYPE", StoragePostgres)
	viper.SetDefault("STORAGE_IMAGE_PATH", "./uploads")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.SetDefault("MATCH_DAILY_CAP", 3)
	viper.SetDefault("MATCH_PROXIMITY_LEVEL", 3)
	viper.SetDefault("MATCH_MAX_CANDIDATES", 0)

	viper.SetDefault("MAIL_ENABLED", false)
	viper.SetDefault("MAIL_PORT", 587)
	viper.SetDefault("MAIL_SEND_TIMEOUT", 10*time.Second)
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:            viper.GetString("SERVER_HOST"),
			Port:            viper.GetInt("SERVER_PORT"),
			Env:             viper.GetString("ENV"),
			ReadTimeout:     viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    viper.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: viper.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Enabled:      viper.GetBool("REDIS_ENABLED"),
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			CandidateTTL: viper.GetDuration("REDIS_CANDIDATE_TTL"),
		},
		JWT: JWTConfig{
			AccessSecret: viper.GetString("JWT_ACCESS_SECRET"),
		},
		Storage: StorageConfig{
			Type:      strings.ToLower(viper.GetString("STORAGE_TYPE")),
			ImagePath: viper.GetString("STORAGE_IMAGE_PATH"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Matching: MatchingConfig{
			DailyCap:       viper.GetInt("MATCH_DAILY_CAP"),
			ProximityLevel: viper.GetInt("MATCH_PROXIMITY_LEVEL"),
			MaxCandidates:  viper.GetInt("MATCH_MAX_CANDIDATES"),
		},
		Mail: MailConfig{
			Enabled:     viper.GetBool("MAIL_ENABLED"),
			Host:        viper.GetString("MAIL_HOST"),
			Port:        viper.GetInt("MAIL_PORT"),
			Username:    viper.GetString("MAIL_USERNAME"),
			Password:    viper.GetString("MAIL_PASSWORD"),
			From:        viper.GetString("MAIL_FROM"),
			SendTimeout: viper.GetDuration("MAIL_SEND_TIMEOUT"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Matching.DailyCap < 1 {
		return fmt.Errorf("daily match request cap must be at least 1")
	}
	if c.Matching.ProximityLevel < 1 {
		return fmt.Errorf("proximity level must be at least 1")
	}
	if c.Matching.MaxCandidates < 0 {
		return fmt.Errorf("max candidates must not be negative")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail host and sender are required when mail is enabled")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns the SMTP server address
func (c *MailConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns the HTTP listen address
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
