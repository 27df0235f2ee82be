package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"
)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		GRPCPort   string `mapstructure:"GRPC_PORT"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

		// JWTSecret signs every bearer token. There is no default: the
		// process refuses to start without one.
		JWTSecret       string `mapstructure:"JWT_SECRET"`
		TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES"`
		BcryptCost      int    `mapstructure:"BCRYPT_COST"`
	}
)

func NewConfig() (*Config, error) {
	viper.SetEnvPrefix("LINKSTASH")

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "1323")
	viper.SetDefault("GRPC_PORT", "9000")
	viper.SetDefault("DB_HOST", "0.0.0.0")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "db")
	viper.SetDefault("DB_SSL_MODE", sslModeDisable)
	viper.SetDefault("TOKEN_TTL_MINUTES", 15)
	viper.SetDefault("BCRYPT_COST", 14)

	envs := []string{
		"HOST", "PORT", "GRPC_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"JWT_SECRET", "TOKEN_TTL_MINUTES", "BCRYPT_COST",
	}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	validSSLValues := []string{sslModeDisable, sslModeRequire}
	validSSL := false
	for _, validValue := range validSSLValues {
		if cfg.DBSSLMode == validValue {
			validSSL = true
			break
		}
	}
	if !validSSL {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}

	if cfg.JWTSecret == "" {
		return errors.New("JWT secret is not set")
	}
	if cfg.TokenTTLMinutes <= 0 {
		return errors.New(fmt.Sprintf("token TTL is invalid: %d", cfg.TokenTTLMinutes))
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return errors.New(fmt.Sprintf("bcrypt cost is invalid: %d", cfg.BcryptCost))
	}

	return nil
}
