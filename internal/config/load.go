package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variables read by Load.
const EnvPrefix = "TASKER"

// envAliases binds each config key to its environment variables in priority
// order. The unprefixed names are the ones the deployment scripts already use.
var envAliases = []struct {
	key     string
	envVars []string
}{
	{"server.port", []string{"TASKER_SERVER_PORT", "PORT"}},
	{"server.log_level", []string{"TASKER_SERVER_LOG_LEVEL", "LOG_LEVEL"}},
	{"server.shutdown_timeout", []string{"TASKER_SERVER_SHUTDOWN_TIMEOUT"}},
	{"server.cors_origins", []string{"TASKER_SERVER_CORS_ORIGINS"}},
	{"database.driver", []string{"TASKER_DATABASE_DRIVER"}},
	{"database.uri", []string{"TASKER_DATABASE_URI", "MONGO_URI", "DATABASE_URL"}},
	{"database.name", []string{"TASKER_DATABASE_NAME"}},
	{"database.collection", []string{"TASKER_DATABASE_COLLECTION"}},
	{"database.connect_timeout", []string{"TASKER_DATABASE_CONNECT_TIMEOUT"}},
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// for config.yaml in the working directory and ./config.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, env := range envAliases {
		args := append([]string{env.key}, env.envVars...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("error binding environment variables for %s: %w", env.key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Server.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Server.LogLevel))

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.name", "tasker")
	v.SetDefault("database.collection", "tasks")
	v.SetDefault("database.connect_timeout", 10*time.Second)
}
