package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort           string  `mapstructure:"SERVER_PORT"`
	BackendAPIURL        string  `mapstructure:"BACKEND_API_URL"`
	BackendTimeoutSec    int     `mapstructure:"BACKEND_TIMEOUT"`
	RedisAddr            string  `mapstructure:"REDIS_ADDR"`
	RedisPassword        string  `mapstructure:"REDIS_PASSWORD"`
	JWTSecret            string  `mapstructure:"JWT_SECRET"`
	NearbyRadiusM        float64 `mapstructure:"NEARBY_RADIUS_M"`
	NearbyMinMoveM       float64 `mapstructure:"NEARBY_MIN_MOVE_M"`
	NearbyMinIntervalSec int     `mapstructure:"NEARBY_MIN_INTERVAL_SEC"`
	InitialFixTimeoutSec int     `mapstructure:"INITIAL_FIX_TIMEOUT_SEC"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("BACKEND_API_URL", "http://localhost:8000")
	viper.SetDefault("BACKEND_TIMEOUT", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("NEARBY_RADIUS_M", 1500)
	viper.SetDefault("NEARBY_MIN_MOVE_M", 150)
	viper.SetDefault("NEARBY_MIN_INTERVAL_SEC", 60)
	viper.SetDefault("INITIAL_FIX_TIMEOUT_SEC", 5)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
