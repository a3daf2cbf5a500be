// Package config resolves the application configuration once at startup.
//
// Values come from the settings store first, then LEDGERBRIDGE_* environment
// variables, then built-in defaults. The result is a plain domain.Config.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/freeagent"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// EnvPrefix prefixes every environment variable read by Resolve.
const EnvPrefix = "LEDGERBRIDGE"

// Setting keys.
const (
	KeyEnvironment    = "environment"
	KeyClientID       = "oauth.client_id"
	KeyClientSecret   = "oauth.client_secret"
	KeyRedirectURI    = "oauth.redirect_uri"
	KeyOwnerMode      = "oauth.mode"
	KeyBaseURL        = "api.base_url"
	KeyTTLInvoices    = "cache.ttl.invoices"
	KeyTTLContacts    = "cache.ttl.contacts"
	KeyTTLProjects    = "cache.ttl.projects"
	KeyCacheDriver    = "cache.driver"
	KeyRedisAddr      = "cache.redis_addr"
	KeyRateLimit      = "ratelimit.per_minute"
	KeyPageSize       = "pagination.page_size"
	KeyMaxPages       = "pagination.max_pages"
	KeyRetryBackoff   = "http.retry_backoff"
	KeyMaxRetries     = "http.max_retries"
	KeyConnectTimeout = "http.connect_timeout"
	KeyRequestTimeout = "http.request_timeout"
	KeyDatabaseDriver = "database.driver"
	KeyDatabaseDSN    = "database.dsn"
	KeyServerAddr     = "server.addr"
	KeyJWTSecret      = "server.jwt_secret"
	KeySessionSecret  = "server.session_secret"
	KeyAllowedOrigins = "server.allowed_origins"
	KeyLogLevel       = "logs.level"
	KeyLogFormat      = "logs.format"
	KeyLogFile        = "logs.file"
)

const (
	defaultDatabaseFile  = "ledgerbridge.db"
	defaultRedirectURI   = "http://localhost:8080/callback"
	defaultServerAddress = ":8080"
)

// defaults holds every known key with its built-in value.
var defaults = map[string]any{
	KeyEnvironment:    string(domain.EnvironmentProduction),
	KeyClientID:       "",
	KeyClientSecret:   "",
	KeyRedirectURI:    defaultRedirectURI,
	KeyOwnerMode:      string(domain.OwnerModeSystem),
	KeyBaseURL:        "",
	KeyTTLInvoices:    domain.DefaultTTL(domain.ResourceInvoices),
	KeyTTLContacts:    domain.DefaultTTL(domain.ResourceContacts),
	KeyTTLProjects:    domain.DefaultTTL(domain.ResourceProjects),
	KeyCacheDriver:    "memory",
	KeyRedisAddr:      "localhost:6379",
	KeyRateLimit:      freeagent.DefaultRequestsPerMinute,
	KeyPageSize:       freeagent.DefaultPageSize,
	KeyMaxPages:       freeagent.DefaultMaxPages,
	KeyRetryBackoff:   freeagent.RetryDelay,
	KeyMaxRetries:     freeagent.MaxRetries,
	KeyConnectTimeout: freeagent.DefaultConnectTimeout,
	KeyRequestTimeout: freeagent.DefaultTimeout,
	KeyDatabaseDriver: "sqlite",
	KeyDatabaseDSN:    "",
	KeyServerAddr:     defaultServerAddress,
	KeyJWTSecret:      "",
	KeySessionSecret:  "",
	KeyAllowedOrigins: []string{},
	KeyLogLevel:       "warn",
	KeyLogFormat:      "text",
	KeyLogFile:        "",
}

// secretKeys are masked when displayed.
var secretKeys = map[string]bool{
	KeyClientSecret:  true,
	KeyJWTSecret:     true,
	KeySessionSecret: true,
}

// Keys returns every known setting key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a recognised setting.
func IsKnown(key string) bool {
	_, ok := defaults[key]
	return ok
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return secretKeys[key]
}

// EnvVar returns the environment variable that overrides key's default.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ParseValue converts raw text for key into the type its default has.
// Durations are validated but stored as text since TOML has no duration type.
func ParseValue(key, raw string) (any, error) {
	def, ok := defaults[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	raw = strings.TrimSpace(raw)
	switch def.(type) {
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return n, nil
	case time.Duration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s must be a duration such as 30m", domain.ErrInvalidInput, key)
		}
		return raw, nil
	case []string:
		return splitList([]string{raw}), nil
	default:
		return raw, nil
	}
}

// Resolver layers the settings store over environment and defaults.
type Resolver struct {
	v         *viper.Viper
	configDir string
}

// NewResolver builds a resolver. store may be nil.
// configDir locates the default sqlite database.
func NewResolver(store driven.ConfigStore, configDir string) *Resolver {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Set has the highest precedence in viper, above env and defaults.
	if store != nil {
		for _, key := range store.Keys() {
			if value, ok := store.Get(key); ok {
				v.Set(key, value)
			}
		}
	}

	return &Resolver{v: v, configDir: configDir}
}

// Value returns the effective raw value for key.
func (r *Resolver) Value(key string) any {
	return r.v.Get(key)
}

// Resolve produces the final configuration and validates it.
func (r *Resolver) Resolve() (domain.Config, error) {
	v := r.v

	env := domain.Environment(strings.ToLower(v.GetString(KeyEnvironment)))
	if !env.IsValid() {
		return domain.Config{}, fmt.Errorf("%w: %s must be production or sandbox, got %q",
			domain.ErrInvalidInput, KeyEnvironment, env)
	}
	mode := domain.OwnerMode(strings.ToLower(v.GetString(KeyOwnerMode)))
	if !mode.IsValid() {
		return domain.Config{}, fmt.Errorf("%w: %s must be system or per_user, got %q",
			domain.ErrInvalidInput, KeyOwnerMode, mode)
	}

	baseURL := v.GetString(KeyBaseURL)
	if baseURL == "" {
		baseURL = freeagent.BaseURL(env)
	}

	cfg := domain.Config{
		Environment: env,
		OAuth: domain.OAuthSettings{
			ClientID:     v.GetString(KeyClientID),
			ClientSecret: v.GetString(KeyClientSecret),
			RedirectURI:  v.GetString(KeyRedirectURI),
			AuthURL:      freeagent.AuthorizeURL(baseURL),
			TokenURL:     freeagent.TokenURL(baseURL),
			Mode:         mode,
		},
		API: domain.APISettings{
			BaseURL:        baseURL,
			RateLimit:      v.GetInt(KeyRateLimit),
			PageSize:       v.GetInt(KeyPageSize),
			MaxPages:       v.GetInt(KeyMaxPages),
			MaxRetries:     v.GetInt(KeyMaxRetries),
			RetryBackoff:   v.GetDuration(KeyRetryBackoff),
			ConnectTimeout: v.GetDuration(KeyConnectTimeout),
			RequestTimeout: v.GetDuration(KeyRequestTimeout),
		},
		Cache: domain.CacheSettings{
			Driver:    strings.ToLower(v.GetString(KeyCacheDriver)),
			RedisAddr: v.GetString(KeyRedisAddr),
			TTL: map[domain.ResourceKind]time.Duration{
				domain.ResourceInvoices: v.GetDuration(KeyTTLInvoices),
				domain.ResourceContacts: v.GetDuration(KeyTTLContacts),
				domain.ResourceProjects: v.GetDuration(KeyTTLProjects),
			},
		},
		Database: domain.DatabaseSettings{
			Driver: strings.ToLower(v.GetString(KeyDatabaseDriver)),
			DSN:    v.GetString(KeyDatabaseDSN),
		},
		Server: domain.ServerSettings{
			Addr:           v.GetString(KeyServerAddr),
			JWTSecret:      v.GetString(KeyJWTSecret),
			SessionSecret:  v.GetString(KeySessionSecret),
			AllowedOrigins: splitList(v.GetStringSlice(KeyAllowedOrigins)),
		},
		Logs: domain.LogSettings{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
	}

	switch cfg.Cache.Driver {
	case "memory", "redis":
	default:
		return domain.Config{}, fmt.Errorf("%w: %s must be memory or redis, got %q",
			domain.ErrInvalidInput, KeyCacheDriver, cfg.Cache.Driver)
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = filepath.Join(r.configDir, defaultDatabaseFile)
		}
	case "memory":
	case "postgres", "mysql":
		if cfg.Database.DSN == "" {
			return domain.Config{}, fmt.Errorf("%w: %s is required for %s",
				domain.ErrInvalidInput, KeyDatabaseDSN, cfg.Database.Driver)
		}
	default:
		return domain.Config{}, fmt.Errorf("%w: unknown %s %q",
			domain.ErrInvalidInput, KeyDatabaseDriver, cfg.Database.Driver)
	}

	return cfg, nil
}

// Resolve is a shorthand for NewResolver(store, configDir).Resolve().
func Resolve(store driven.ConfigStore, configDir string) (domain.Config, error) {
	return NewResolver(store, configDir).Resolve()
}

// splitList also accepts comma-separated entries, as env values usually are.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
