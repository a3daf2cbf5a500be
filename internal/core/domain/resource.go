package domain

import (
	"net/url"
	"strings"
	"time"
)

// ResourceKind identifies a remote collection mirrored locally.
type ResourceKind string

// Mirrored resource kinds.
const (
	ResourceContacts ResourceKind = "contacts"
	ResourceProjects ResourceKind = "projects"
	ResourceInvoices ResourceKind = "invoices"
)

// AllResourceKinds lists kinds in dependency order.
var AllResourceKinds = []ResourceKind{ResourceContacts, ResourceProjects, ResourceInvoices}

// IsValid returns true if the kind is recognised.
func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceContacts, ResourceProjects, ResourceInvoices:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ResourceKind) String() string {
	return string(k)
}

// Singular returns the envelope key used by single-record responses.
func (k ResourceKind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// Filter narrows a remote listing. Empty fields are not sent.
type Filter struct {
	// View is the provider's named listing view, e.g. "all" or "recent_open_or_overdue".
	View string
	// ContactRef restricts to one contact (remote URL).
	ContactRef string
	// ProjectRef restricts to one project (remote URL).
	ProjectRef string
	// FromDate and ToDate bound invoice dates, formatted 2006-01-02.
	FromDate string
	ToDate   string
}

// FetchOptions controls how the gateway uses its cache.
type FetchOptions struct {
	// BypassCache skips the cache read but still repopulates the cache.
	BypassCache bool
}

// RemoteRecord is one undecoded record returned by the remote API.
type RemoteRecord struct {
	// URL is the record's stable remote identifier.
	URL string
	// Payload is the raw JSON object.
	Payload []byte
}

// ShortID extracts the trailing path segment from a remote URL.
// Values that are not URLs are returned unchanged.
func ShortID(remoteID string) string {
	trimmed := strings.TrimRight(remoteID, "/")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// SyncStats summarises one reconciliation batch.
type SyncStats struct {
	Kind     ResourceKind  `json:"kind"`
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// StalenessMarker records the last successful sync for an owner and kind.
type StalenessMarker struct {
	Owner    string       `json:"owner"`
	Kind     ResourceKind `json:"kind"`
	SyncedAt time.Time    `json:"synced_at"`
}

// IsStale returns true if the marker is older than ttl at now.
func (m *StalenessMarker) IsStale(now time.Time, ttl time.Duration) bool {
	if m == nil || m.SyncedAt.IsZero() {
		return true
	}
	return !now.Before(m.SyncedAt.Add(ttl))
}
