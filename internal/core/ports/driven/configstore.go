package driven

// ConfigStore persists settings under dotted keys ("oauth.client_id").
// Stored values take precedence over LEDGERBRIDGE_* environment variables.
// Values keep the type they were set with; the config resolver coerces them.
type ConfigStore interface {
	Get(key string) (any, bool)

	// Set stores value and persists it immediately.
	Set(key string, value any) error

	// Unset removes key so the environment or default applies again.
	// Removing a missing key is not an error.
	Unset(key string) error

	// Keys returns every stored key, sorted.
	Keys() []string

	// Load re-reads the backing storage, discarding in-memory state.
	Load() error

	// Path describes where settings live, for display.
	Path() string
}
