package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	LogLevel string `env:"LOG_LEVEL"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Board    BoardConfig
	Theme    ThemeConfig
}

type HTTPConfig struct {
	Host               string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port               string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" env-default:"10"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"swifttrack"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

type BoardConfig struct {
	// ActivationDistance is the pointer travel, in logical pixels,
	// that turns a press into a drag.
	ActivationDistance float64       `env:"BOARD_ACTIVATION_DISTANCE" env-default:"8"`
	RemoteTimeout      time.Duration `env:"BOARD_REMOTE_TIMEOUT" env-default:"10s"`
}

type ThemeConfig struct {
	Default string `env:"THEME_DEFAULT" env-default:"dark"`
}
