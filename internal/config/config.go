package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StoreConfig selects the account store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory postgres redis"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver "pgx" uses jackc/pgx; "postgres" uses lib/pq.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"omitempty,url"`
	Driver                 string `mapstructure:"driver" validate:"required,oneof=pgx postgres"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// RedisConfig contains settings for the Redis account store and event stream.
type RedisConfig struct {
	Addr              string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db" validate:"gte=0,lte=15"`
	KeyPrefix         string `mapstructure:"key_prefix" validate:"required"`
	LockExpirySeconds int    `mapstructure:"lock_expiry_seconds" validate:"gte=1"`
}

// AuthConfig contains session token settings. The secret is only required by
// the HTTP server, which refuses to start without it.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lt=1441"`
}

// EventsConfig controls where ledger events are published.
// An empty RedisStream disables stream publishing.
type EventsConfig struct {
	RedisStream string `mapstructure:"redis_stream"`
}
