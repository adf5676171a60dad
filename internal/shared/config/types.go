package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CryptoConfig holds the server-side secrets used by the verification core.
// LookupSecret keys the HMAC used for license key lookup hashes and
// rate-limit key derivation. It must stay stable across deployments or every
// stored lookup hash becomes unreachable.
type CryptoConfig struct {
	LookupSecret string `mapstructure:"lookup_secret"`
}

type AdminAuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	Username         string `mapstructure:"username"`
	PasswordHash     string `mapstructure:"password_hash"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

type GeoIPConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// VerificationConfig tunes the client-facing rate limits. Zero values fall
// back to the defaults set by the config loader.
type VerificationConfig struct {
	IPRateLimit                  int `mapstructure:"ip_rate_limit"`
	IPRateWindowSeconds          int `mapstructure:"ip_rate_window_seconds"`
	KeyRateLimit                 int `mapstructure:"key_rate_limit"`
	KeyRateWindowSeconds         int `mapstructure:"key_rate_window_seconds"`
	SessionKeyReuseWindowSeconds int `mapstructure:"session_key_reuse_window_seconds"`
}
