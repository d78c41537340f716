// internal/config/config.go
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	NodeURL        string
	Macaroon       string
	Port           string
	AllowedOrigins string
	PaymentTimeout int
	FeeLimitSat    int64
	TrackAttempts  uint
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "3001")
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("PAYMENT_TIMEOUT_SECONDS", 60)
	viper.SetDefault("PAYMENT_FEE_LIMIT_SAT", 10)
	viper.SetDefault("TRACK_ATTEMPTS", 5)

	config := &Config{
		NodeURL:        viper.GetString("LND_REST_URL"),
		Macaroon:       viper.GetString("LND_MACAROON"),
		Port:           viper.GetString("PORT"),
		AllowedOrigins: viper.GetString("ALLOWED_ORIGINS"),
		PaymentTimeout: viper.GetInt("PAYMENT_TIMEOUT_SECONDS"),
		FeeLimitSat:    viper.GetInt64("PAYMENT_FEE_LIMIT_SAT"),
		TrackAttempts:  viper.GetUint("TRACK_ATTEMPTS"),
	}

	if config.NodeURL == "" {
		return nil, fmt.Errorf("LND_REST_URL is not set")
	}
	if config.Macaroon == "" {
		return nil, fmt.Errorf("LND_MACAROON is not set")
	}

	return config, nil
}
