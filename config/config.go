package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend selectors for the repositories and the session store.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LoginPath string `mapstructure:"LOGIN_PATH"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"` // memory | mongo
	SessionBackend string `mapstructure:"SESSION_BACKEND"` // memory | redis

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SessionTTLMin int `mapstructure:"SESSION_TTL_MIN"`
	BcryptCost    int `mapstructure:"BCRYPT_COST"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/idgate/")
	v.AddConfigPath("$HOME/.idgate")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("SESSION_BACKEND", SessionsMemory)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/idgate_dev")
	v.SetDefault("MONGO_DB_NAME", "idgate_dev")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("SESSION_TTL_MIN", 60*24)
	v.SetDefault("BCRYPT_COST", 0) // 0 lets the hasher pick bcrypt.DefaultCost
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
