package domain

import "time"

// Environment selects which remote deployment the connection talks to.
type Environment string

// Available environments.
const (
	EnvironmentProduction Environment = "production"
	EnvironmentSandbox    Environment = "sandbox"
)

// IsValid returns true if the environment is recognised.
func (e Environment) IsValid() bool {
	return e == EnvironmentProduction || e == EnvironmentSandbox
}

// String returns the string representation.
func (e Environment) String() string {
	return string(e)
}

// OwnerMode selects how principals map to OAuth owners.
type OwnerMode string

// Available owner modes.
const (
	// OwnerModeSystem shares one connection across every principal.
	OwnerModeSystem OwnerMode = "system"
	// OwnerModePerUser gives each principal its own connection.
	OwnerModePerUser OwnerMode = "per_user"
)

// IsValid returns true if the owner mode is recognised.
func (m OwnerMode) IsValid() bool {
	return m == OwnerModeSystem || m == OwnerModePerUser
}

// OAuthSettings is the resolved OAuth client configuration.
type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Mode         OwnerMode
}

// IsConfigured returns true if client credentials are present.
func (s OAuthSettings) IsConfigured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// APISettings is the resolved gateway configuration.
type APISettings struct {
	BaseURL        string
	RateLimit      int
	PageSize       int
	MaxPages       int
	MaxRetries     int
	RetryBackoff   time.Duration
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// CacheSettings is the resolved cache configuration.
type CacheSettings struct {
	Driver    string
	RedisAddr string
	TTL       map[ResourceKind]time.Duration
}

// TTLFor returns the TTL for kind, falling back to DefaultTTL.
func (s CacheSettings) TTLFor(kind ResourceKind) time.Duration {
	if ttl, ok := s.TTL[kind]; ok && ttl > 0 {
		return ttl
	}
	return DefaultTTL(kind)
}

// DefaultTTL returns the built-in TTL for kind.
func DefaultTTL(kind ResourceKind) time.Duration {
	switch kind {
	case ResourceInvoices:
		return 30 * time.Minute
	default:
		return 60 * time.Minute
	}
}

// DatabaseSettings is the resolved storage configuration.
type DatabaseSettings struct {
	Driver string
	DSN    string
}

// ServerSettings is the resolved HTTP boundary configuration.
type ServerSettings struct {
	Addr           string
	JWTSecret      string
	SessionSecret  string
	AllowedOrigins []string
}

// LogSettings is the resolved logging configuration.
type LogSettings struct {
	Level  string
	Format string
	File   string
}

// Config holds every resolved value. It contains plain values only.
type Config struct {
	Environment Environment
	OAuth       OAuthSettings
	API         APISettings
	Cache       CacheSettings
	Database    DatabaseSettings
	Server      ServerSettings
	Logs        LogSettings
}
