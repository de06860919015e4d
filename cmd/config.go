package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"dispatch/internal/adapters/out/postgres/dbcall"
	"dispatch/internal/adapters/out/redisgeo"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds every setting of the service. Values come from flags, then
// the environment (optionally seeded from .env), then the defaults below.
type Config struct {
	HTTPPort       int
	RequestTimeout time.Duration
	LogLevel       slog.Level

	StoreDriver    string
	DatabaseURL    string
	StoreTimeout   time.Duration
	MigrateOnStart bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	RadiusMeters   float64
	CandidateLimit int
	PollingLimit   int

	BacklogSchedule string
}

// config keys; each is also read from the upper-cased environment variable.
const (
	keyHTTPPort        = "http_port"
	keyRequestTimeout  = "request_timeout"
	keyLogLevel        = "log_level"
	keyStoreDriver     = "store_driver"
	keyDatabaseURL     = "database_url"
	keyStoreTimeout    = "store_timeout"
	keyMigrateOnStart  = "migrate_on_start"
	keyRedisAddr       = "redis_addr"
	keyRedisPassword   = "redis_password"
	keyRedisDB         = "redis_db"
	keyRedisKey        = "redis_key"
	keyRadiusMeters    = "dispatch_radius_meters"
	keyCandidateLimit  = "dispatch_candidate_limit"
	keyPollingLimit    = "dispatch_polling_limit"
	keyBacklogSchedule = "backlog_schedule"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyHTTPPort, 8080)
	v.SetDefault(keyRequestTimeout, 10*time.Second)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyStoreDriver, StoreDriverPostgres)
	v.SetDefault(keyDatabaseURL, "")
	v.SetDefault(keyStoreTimeout, dbcall.DefaultTimeout)
	v.SetDefault(keyMigrateOnStart, false)
	v.SetDefault(keyRedisAddr, "")
	v.SetDefault(keyRedisPassword, "")
	v.SetDefault(keyRedisDB, 0)
	v.SetDefault(keyRedisKey, redisgeo.DefaultKey)
	v.SetDefault(keyRadiusMeters, services.DefaultRadiusMeters)
	v.SetDefault(keyCandidateLimit, services.DefaultCandidateLimit)
	v.SetDefault(keyPollingLimit, services.DefaultPollingLimit)
	v.SetDefault(keyBacklogSchedule, jobs.DefaultBacklogSchedule)
}

// newViper returns a viper instance with defaults and environment lookup.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// serveFlags maps config keys to the flags that override them.
var serveFlags = map[string]string{
	keyHTTPPort:       "http-port",
	keyStoreDriver:    "store-driver",
	keyDatabaseURL:    "database-url",
	keyStoreTimeout:   "store-timeout",
	keyMigrateOnStart: "migrate-on-start",
	keyRedisAddr:      "redis-addr",
	keyLogLevel:       "log-level",
}

// defineServeFlags registers the flags that override the common settings.
func defineServeFlags(flags *pflag.FlagSet) {
	flags.Int("http-port", 8080, "port to listen on")
	flags.String("store-driver", StoreDriverPostgres, "store backend: postgres or memory")
	flags.String("database-url", "", "postgres connection URL")
	flags.Duration("store-timeout", dbcall.DefaultTimeout, "timeout of a single store call")
	flags.Bool("migrate-on-start", false, "apply database migrations before serving")
	flags.String("redis-addr", "", "redis address for the courier geo cache; empty disables it")
	flags.String("log-level", "info", "debug, info, warn or error")
}

// bindFlags binds the named flags of the running command to their keys. It
// runs when the command starts so that only the invoked command's flags are
// bound.
func bindFlags(flags *pflag.FlagSet, v *viper.Viper, bindings map[string]string) error {
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig reads and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:        v.GetInt(keyHTTPPort),
		RequestTimeout:  v.GetDuration(keyRequestTimeout),
		StoreDriver:     strings.ToLower(strings.TrimSpace(v.GetString(keyStoreDriver))),
		DatabaseURL:     v.GetString(keyDatabaseURL),
		StoreTimeout:    v.GetDuration(keyStoreTimeout),
		MigrateOnStart:  v.GetBool(keyMigrateOnStart),
		RedisAddr:       v.GetString(keyRedisAddr),
		RedisPassword:   v.GetString(keyRedisPassword),
		RedisDB:         v.GetInt(keyRedisDB),
		RedisKey:        v.GetString(keyRedisKey),
		RadiusMeters:    v.GetFloat64(keyRadiusMeters),
		CandidateLimit:  v.GetInt(keyCandidateLimit),
		PollingLimit:    v.GetInt(keyPollingLimit),
		BacklogSchedule: v.GetString(keyBacklogSchedule),
	}

	var errList []error
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		errList = append(errList, fmt.Errorf("%s: %w", keyLogLevel, err))
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		errList = append(errList, fmt.Errorf("%s: invalid port %d", keyHTTPPort, cfg.HTTPPort))
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			errList = append(errList, fmt.Errorf("%s is required when %s=%s",
				keyDatabaseURL, keyStoreDriver, StoreDriverPostgres))
		}
	case StoreDriverMemory:
	default:
		errList = append(errList, fmt.Errorf("%s: %q is not one of %s, %s",
			keyStoreDriver, cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory))
	}
	if cfg.StoreTimeout <= 0 {
		errList = append(errList, fmt.Errorf("%s must be positive", keyStoreTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errList = append(errList, fmt.Errorf("%s must be positive", keyRequestTimeout))
	}
	if !(cfg.RadiusMeters > 0) || math.IsInf(cfg.RadiusMeters, 0) {
		errList = append(errList, fmt.Errorf("%s must be a positive finite number", keyRadiusMeters))
	}
	if cfg.CandidateLimit <= 0 || cfg.PollingLimit <= 0 {
		errList = append(errList, fmt.Errorf("%s and %s must be positive", keyCandidateLimit, keyPollingLimit))
	}

	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MatcherSettings converts the dispatch settings for services.NewDispatchMatcher.
func (c Config) MatcherSettings() services.MatcherSettings {
	return services.MatcherSettings{
		RadiusMeters:   c.RadiusMeters,
		CandidateLimit: c.CandidateLimit,
		PollingLimit:   c.PollingLimit,
	}
}
