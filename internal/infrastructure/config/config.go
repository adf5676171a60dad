package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/keyward-io/keyward/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Crypto       sharedConfig.CryptoConfig       `mapstructure:"crypto"`
	AdminAuth    sharedConfig.AdminAuthConfig    `mapstructure:"admin_auth"`
	Storage      sharedConfig.StorageConfig      `mapstructure:"storage"`
	GeoIP        sharedConfig.GeoIPConfig        `mapstructure:"geoip"`
	Events       sharedConfig.EventsConfig       `mapstructure:"events"`
	Verification sharedConfig.VerificationConfig `mapstructure:"verification"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("KEYWARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "keyward_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Crypto defaults
	viper.SetDefault("crypto.lookup_secret", "change-me-in-production")

	// Admin auth defaults
	viper.SetDefault("admin_auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("admin_auth.access_exp_minutes", 60)
	viper.SetDefault("admin_auth.username", "admin")
	viper.SetDefault("admin_auth.password_hash", "")

	// Storage defaults (MinIO-compatible endpoint)
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.access_key", "")
	viper.SetDefault("storage.secret_key", "")
	viper.SetDefault("storage.use_ssl", false)
	viper.SetDefault("storage.bucket", "keyward-releases")

	// GeoIP defaults (empty path disables country resolution)
	viper.SetDefault("geoip.database_path", "")

	// Events defaults
	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.brokers", []string{"localhost:9092"})
	viper.SetDefault("events.topic", "keyward.verifications")

	// Verification defaults
	viper.SetDefault("verification.ip_rate_limit", 30)
	viper.SetDefault("verification.ip_rate_window_seconds", 60)
	viper.SetDefault("verification.key_rate_limit", 20)
	viper.SetDefault("verification.key_rate_window_seconds", 10)
	viper.SetDefault("verification.session_key_reuse_window_seconds", 900)
}
