package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/logger"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/expiry"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/session"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	defaultAdminAddr     = "localhost:8081"
	defaultLoggingLevel  = logger.LevelInfo
	defaultAuthorityAddr = "http://localhost:8080"
	defaultEnvironment   = logger.EnvProduction
	defaultStoreBackend  = BackendMemory
)

type Config struct {
	// Default logging level
	LogLevel string `validate:"oneof=debug info warn error"`

	// Environment: 'prod' logs JSON, 'dev' logs text
	Environment string `validate:"oneof=dev prod"`

	// Base address of the authority that renews access tokens
	AuthorityAddr string `validate:"required,url"`

	// Where credentials are kept: memory, postgres or redis
	StoreBackend string `validate:"oneof=memory postgres redis"`

	// Database to connect to when backend is postgres
	DatabaseDSN string `validate:"required_if=StoreBackend postgres"`

	// Redis url when backend is redis
	RedisURL string `validate:"required_if=StoreBackend redis"`

	// Address of the local admin server
	AdminAddr string `validate:"required,hostname_port"`

	AccessBuffer   time.Duration `validate:"gte=0s"`
	WaitTimeout    time.Duration `validate:"gt=0s"`
	RefreshTimeout time.Duration `validate:"gt=0s"`

	// How often the keeper checks the session
	CheckInterval time.Duration `validate:"gt=0s"`

	// Initial credentials installed on start when set
	AccessToken  string
	RefreshToken string

	// Persist refresh token rotated by the authority
	AcceptRotatedRefresh bool
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		Environment:    defaultEnvironment,
		AuthorityAddr:  defaultAuthorityAddr,
		StoreBackend:   defaultStoreBackend,
		AdminAddr:      defaultAdminAddr,
		AccessBuffer:   expiry.AccessBuffer,
		WaitTimeout:    session.DefaultWaitTimeout,
		RefreshTimeout: session.DefaultRefreshTimeout,
		CheckInterval:  session.DefaultCheckInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"LOG_LEVEL":              setString(&c.LogLevel),
		"ENVIRONMENT":            setString(&c.Environment),
		"AUTHORITY_ADDRESS":      setString(&c.AuthorityAddr),
		"STORE_BACKEND":          setString(&c.StoreBackend),
		"DATABASE_URI":           setString(&c.DatabaseDSN),
		"REDIS_URL":              setString(&c.RedisURL),
		"ADMIN_ADDRESS":          setString(&c.AdminAddr),
		"ACCESS_BUFFER":          setDuration(&c.AccessBuffer),
		"WAIT_TIMEOUT":           setDuration(&c.WaitTimeout),
		"REFRESH_TIMEOUT":        setDuration(&c.RefreshTimeout),
		"CHECK_INTERVAL":         setDuration(&c.CheckInterval),
		"ACCESS_TOKEN":           setString(&c.AccessToken),
		"REFRESH_TOKEN":          setString(&c.RefreshToken),
		"ACCEPT_ROTATED_REFRESH": setBool(&c.AcceptRotatedRefresh),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid value of %s. Err: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("sessiond", pflag.ContinueOnError)

	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.AuthorityAddr, "authority", "r", c.AuthorityAddr, "Authority base address")
	fs.StringVarP(&c.StoreBackend, "store", "s", c.StoreBackend, "Credential store backend (memory, postgres, redis)")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis url")
	fs.StringVarP(&c.AdminAddr, "address", "a", c.AdminAddr, "Admin server listen address")
	fs.DurationVar(&c.AccessBuffer, "access-buffer", c.AccessBuffer, "Refresh access token that long before it expires")
	fs.DurationVar(&c.WaitTimeout, "wait-timeout", c.WaitTimeout, "How long callers wait for a running refresh")
	fs.DurationVar(&c.RefreshTimeout, "refresh-timeout", c.RefreshTimeout, "Upper bound for one refresh")
	fs.DurationVar(&c.CheckInterval, "check-interval", c.CheckInterval, "How often the session is checked in background")
	fs.StringVar(&c.AccessToken, "access-token", c.AccessToken, "Access token to start with")
	fs.StringVar(&c.RefreshToken, "refresh-token", c.RefreshToken, "Refresh token to start with")
	fs.BoolVar(&c.AcceptRotatedRefresh, "accept-rotated-refresh", c.AcceptRotatedRefresh, "Store refresh token rotated by the authority")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config. Err: %w", err)
	}
	return nil
}
