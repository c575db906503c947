package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AIURL           string        `mapstructure:"AI_URL"`
	AIKey           string        `mapstructure:"AI_KEY"`
	AIModel         string        `mapstructure:"AI_MODEL"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	AllowedDomain   string        `mapstructure:"ALLOWED_EMAIL_DOMAIN"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("AI_MODEL", "google/gemini-3-flash-preview")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("ALLOWED_EMAIL_DOMAIN", "@shatel.ir")
	v.SetDefault("REFRESH_INTERVAL", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
