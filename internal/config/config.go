package config

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port string

	StoreDriver    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxIdleConns int
	DBMaxOpenConns int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	VoteImagePath string

	KafkaBrokers     []string
	KafkaMemberTopic string

	LogLevel  string
	LogFormat string
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("ACCESS_TOKEN_TTL", "1h")
	v.SetDefault("REFRESH_TOKEN_TTL", "336h")
	v.SetDefault("S3_BUCKET", "salmal")
	v.SetDefault("IMAGE_PATH_VOTE", "vote")
	v.SetDefault("KAFKA_MEMBER_TOPIC", "member-events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads configuration from the environment (and a .env file, if
// present), applying defaults and validation.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := Config{
		Port:             v.GetString("PORT"),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		DBMaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		DBMaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AccessTokenTTL:   v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:  v.GetDuration("REFRESH_TOKEN_TTL"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		S3Endpoint:       v.GetString("S3_ENDPOINT"),
		S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:      v.GetString("S3_SECRET_KEY"),
		S3Bucket:         v.GetString("S3_BUCKET"),
		S3UseSSL:         v.GetBool("S3_USE_SSL"),
		VoteImagePath:    v.GetString("IMAGE_PATH_VOTE"),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaMemberTopic: v.GetString("KAFKA_MEMBER_TOPIC"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL cannot be shorter than ACCESS_TOKEN_TTL")
	}
	if c.S3Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required")
	}
	if c.S3AccessKey == "" || c.S3SecretKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaMemberTopic == "" {
		return fmt.Errorf("KAFKA_MEMBER_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
