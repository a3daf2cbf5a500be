package freeagent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// cacheKey hashes the request shape into the owner's API namespace.
func cacheKey(owner string, kind domain.ResourceKind, shape string) string {
	sum := sha256.Sum256([]byte(shape))
	return domain.APICacheKey(owner, kind, hex.EncodeToString(sum[:])[:16])
}

type cachedRecord struct {
	URL     string          `json:"url"`
	Payload json.RawMessage `json:"payload"`
}

// cachedRecords returns records stored under key. Cache failures are
// treated as misses.
func (g *Gateway) cachedRecords(ctx context.Context, key string) ([]domain.RemoteRecord, bool) {
	if g.cache == nil {
		return nil, false
	}
	data, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed for %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var cached []cachedRecord
	if err := json.Unmarshal(data, &cached); err != nil {
		logger.Debug("Discarding unreadable cache entry %s: %v", key, err)
		return nil, false
	}
	records := make([]domain.RemoteRecord, len(cached))
	for i, c := range cached {
		records[i] = domain.RemoteRecord{URL: c.URL, Payload: []byte(c.Payload)}
	}
	logger.Debug("Cache hit %s (%d records)", key, len(records))
	return records, true
}

// storeRecords writes records under key with the kind's TTL.
func (g *Gateway) storeRecords(ctx context.Context, key string, kind domain.ResourceKind, records []domain.RemoteRecord) {
	if g.cache == nil {
		return
	}
	cached := make([]cachedRecord, len(records))
	for i, r := range records {
		cached[i] = cachedRecord{URL: r.URL, Payload: json.RawMessage(r.Payload)}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		logger.Warn("Cache encode failed for %s: %v", key, err)
		return
	}
	if err := g.cache.Set(ctx, key, data, g.ttl.TTLFor(kind)); err != nil {
		logger.Warn("Cache write failed for %s: %v", key, err)
	}
}
