package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Env          string        `mapstructure:"env"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTCfg struct {
	Secret          string `mapstructure:"secret"`
	SessionTTLHours int    `mapstructure:"session_ttl_hours"`
}

type SecurityCfg struct {
	CodeTTLMinutes         int `mapstructure:"code_ttl_minutes"`
	PendingTokenTTLMinutes int `mapstructure:"pending_token_ttl_minutes"`
	LoginRatePerMinute     int `mapstructure:"login_rate_per_minute"`
	LoginBurst             int `mapstructure:"login_burst"`
}

type BrevoCfg struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type KafkaCfg struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type S3Cfg struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"bucket"`
	Region  string `mapstructure:"region"`
}

type RiskCfg struct {
	ModelURL string `mapstructure:"model_url"`
}

type Config struct {
	App      AppCfg      `mapstructure:"app"`
	Mongo    MongoCfg    `mapstructure:"mongo"`
	Redis    RedisCfg    `mapstructure:"redis"`
	JWT      JWTCfg      `mapstructure:"jwt"`
	Security SecurityCfg `mapstructure:"security"`
	Brevo    BrevoCfg    `mapstructure:"brevo"`
	Kafka    KafkaCfg    `mapstructure:"kafka"`
	S3       S3Cfg       `mapstructure:"s3"`
	Risk     RiskCfg     `mapstructure:"risk"`
}

// Load reads the yaml config file and lets APP_* environment variables
// override individual keys (APP_JWT_SECRET, APP_MONGO_URI, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 10*time.Second)
	v.SetDefault("app.write_timeout", 10*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("jwt.session_ttl_hours", 24)
	v.SetDefault("security.code_ttl_minutes", 5)
	v.SetDefault("security.pending_token_ttl_minutes", 5)
	v.SetDefault("security.login_rate_per_minute", 5)
	v.SetDefault("security.login_burst", 10)
	v.SetDefault("kafka.topic", "appointment-events")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}
	if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
		return nil, errors.New("mongo.uri and mongo.database are required")
	}
	return &cfg, nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.SessionTTLHours) * time.Hour
}

func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.Security.CodeTTLMinutes) * time.Minute
}

func (c *Config) PendingTokenTTL() time.Duration {
	return time.Duration(c.Security.PendingTokenTTLMinutes) * time.Minute
}
