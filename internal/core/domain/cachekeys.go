package domain

// CacheNamespace prefixes every cache key this application writes.
const CacheNamespace = "ledgerbridge:"

// OwnerCachePrefix returns the prefix shared by all of an owner's cache keys.
// The trailing separator keeps "user:1" from matching "user:10".
func OwnerCachePrefix(owner string) string {
	return CacheNamespace + owner + ":"
}

// StaleKey returns the cache key of the staleness marker for owner and kind.
func StaleKey(owner string, kind ResourceKind) string {
	return OwnerCachePrefix(owner) + "stale:" + string(kind)
}

// APICachePrefix returns the prefix of the owner's cached API responses.
func APICachePrefix(owner string) string {
	return OwnerCachePrefix(owner) + "api:"
}

// APICacheKey returns the cache key for one API response.
func APICacheKey(owner string, kind ResourceKind, hash string) string {
	return APICachePrefix(owner) + string(kind) + ":" + hash
}
