package config

import "time"

// Supported values for DatabaseConfig.Driver.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverAzTables = "aztables"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig selects and configures the task store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=mongo postgres redis aztables memory"`
	// URI is the backend connection string (Mongo URI, Postgres URL, Redis URL
	// or Azure Storage connection string). Not needed for the memory driver.
	URI            string        `mapstructure:"uri"             validate:"required_unless=Driver memory"`
	Name           string        `mapstructure:"name"            validate:"required"`
	Collection     string        `mapstructure:"collection"      validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
}
