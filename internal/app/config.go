package app

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	defaultJWTSecret = "your_secret_key_here"
)

type Config struct {
	RunAddress     string
	StoreBackend   string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseURI    string
	MigrationsPath string
	DBMaxConns     int
	LogLevel       string
	LogFormat      string
	JWTSecretKey   string
	BcryptCost     int
	NATSURL        string
	SingleUse      bool
	QRSize         int
}

// NewConfigFromFlags parses os.Args and the environment. Environment values
// win over flags. It panics on an invalid configuration.
func NewConfigFromFlags() *Config {
	cfg, err := ParseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func ParseConfig(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("wallet", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:3000", "Server address (env: RUN_ADDRESS)")
	fs.StringVar(&cfg.StoreBackend, "store", StoreRedis, "Store backend redis|postgres|memory (env: STORE_BACKEND)")
	fs.StringVar(&cfg.RedisAddr, "redis", "localhost:6379", "Redis address (env: REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number (env: REDIS_DB)")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI for the postgres backend (env: DATABASE_URI)")
	fs.StringVar(&cfg.MigrationsPath, "migrations", "./migrations", "Path to migrations folder (env: MIGRATIONS_PATH)")
	fs.IntVar(&cfg.DBMaxConns, "db-max-conns", 20, "Max open postgres connections (env: DB_MAX_CONNS)")
	fs.StringVar(&cfg.LogLevel, "l", "debug", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "console", "Log format console|json (env: LOG_FORMAT)")
	fs.StringVar(&cfg.JWTSecretKey, "jwt-secret", defaultJWTSecret, "JWT secret key (env: JWT_SECRET_KEY or SECRET_KEY)")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", 10, "bcrypt cost factor (env: BCRYPT_COST)")
	fs.StringVar(&cfg.NATSURL, "nats", "", "NATS url for wallet events, empty disables them (env: NATS_URL)")
	fs.BoolVar(&cfg.SingleUse, "single-use", true, "Allow each transaction to be paid only once (env: SINGLE_USE_TRANSACTIONS)")
	fs.IntVar(&cfg.QRSize, "qr-size", 256, "QR code image size in pixels (env: QR_SIZE)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvVars(getenv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvVars(getenv func(string) string) error {
	if envAddr := getenv("RUN_ADDRESS"); envAddr != "" {
		c.RunAddress = envAddr
	} else if port := getenv("PORT"); port != "" {
		c.RunAddress = ":" + port
	}
	if envStore := getenv("STORE_BACKEND"); envStore != "" {
		c.StoreBackend = envStore
	}
	if envRedis := getenv("REDIS_ADDR"); envRedis != "" {
		c.RedisAddr = envRedis
	}
	if envRedisPassword := getenv("REDIS_PASSWORD"); envRedisPassword != "" {
		c.RedisPassword = envRedisPassword
	}
	if envDB := getenv("DATABASE_URI"); envDB != "" {
		c.DatabaseURI = envDB
	}
	if envMigrations := getenv("MIGRATIONS_PATH"); envMigrations != "" {
		c.MigrationsPath = envMigrations
	}
	if envLogLevel := getenv("LOG_LEVEL"); envLogLevel != "" {
		c.LogLevel = envLogLevel
	}
	if envLogFormat := getenv("LOG_FORMAT"); envLogFormat != "" {
		c.LogFormat = envLogFormat
	}
	if envSecret := getenv("JWT_SECRET_KEY"); envSecret != "" {
		c.JWTSecretKey = envSecret
	} else if envSecret := getenv("SECRET_KEY"); envSecret != "" {
		c.JWTSecretKey = envSecret
	}
	if envNATS := getenv("NATS_URL"); envNATS != "" {
		c.NATSURL = envNATS
	}

	var err error
	if c.RedisDB, err = intEnv(getenv, "REDIS_DB", c.RedisDB); err != nil {
		return err
	}
	if c.DBMaxConns, err = intEnv(getenv, "DB_MAX_CONNS", c.DBMaxConns); err != nil {
		return err
	}
	if c.BcryptCost, err = intEnv(getenv, "BCRYPT_COST", c.BcryptCost); err != nil {
		return err
	}
	if c.QRSize, err = intEnv(getenv, "QR_SIZE", c.QRSize); err != nil {
		return err
	}
	if raw := getenv("SINGLE_USE_TRANSACTIONS"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid SINGLE_USE_TRANSACTIONS: %w", err)
		}
		c.SingleUse = v
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis address is required (use -redis flag or REDIS_ADDR env)")
		}
	case StorePostgres:
		if c.DatabaseURI == "" {
			return errors.New("database URI is required for the postgres store (use -d flag or DATABASE_URI env)")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if c.JWTSecretKey == "" {
		return errors.New("JWT secret key must not be empty")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.QRSize <= 0 {
		return errors.New("qr size must be positive")
	}
	return nil
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecretKey == defaultJWTSecret
}

func (c *Config) MaskDBPassword() string {
	u, err := url.Parse(c.DatabaseURI)
	if err != nil {
		return c.DatabaseURI
	}
	return u.Redacted()
}

func intEnv(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
