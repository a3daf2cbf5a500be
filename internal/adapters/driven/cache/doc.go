// Package cache implements driven.Cache.
//
// Three implementations are provided:
//
//   - Memory: process-local map with lazy expiry (default, tests)
//   - Redis: shared cache over go-redis, prefix deletes via SCAN
//   - Fallback: Redis guarded by a circuit breaker, degrading to Memory
//     while Redis is unreachable
package cache
