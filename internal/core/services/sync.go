package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncEngine = (*SyncEngine)(nil)

// SyncEngine reconciles remote records into the local mirror.
// It is the only writer of the mirror stores.
//
// Syncs for one owner are not serialised. Two stale reads may both hit the
// network; upserts keyed on remote id keep the result consistent.
type SyncEngine struct {
	api      driven.AccountingAPI
	contacts driven.ContactStore
	projects driven.ProjectStore
	invoices driven.InvoiceStore
	cache    driven.Cache
	ttl      domain.CacheSettings
	now      func() time.Time
}

// NewSyncEngine creates a new sync engine.
func NewSyncEngine(
	api driven.AccountingAPI,
	contacts driven.ContactStore,
	projects driven.ProjectStore,
	invoices driven.InvoiceStore,
	cache driven.Cache,
	ttl domain.CacheSettings,
) *SyncEngine {
	return &SyncEngine{
		api:      api,
		contacts: contacts,
		projects: projects,
		invoices: invoices,
		cache:    cache,
		ttl:      ttl,
		now:      time.Now,
	}
}

var bypassCache = domain.FetchOptions{BypassCache: true}

// IsStale reports whether kind has no marker for owner or the marker has
// outlived the kind's TTL.
func (e *SyncEngine) IsStale(ctx context.Context, owner string, kind domain.ResourceKind) (bool, error) {
	marker, err := e.marker(ctx, owner, kind)
	if err != nil {
		return true, err
	}
	return marker.IsStale(e.now(), e.ttl.TTLFor(kind)), nil
}

func (e *SyncEngine) marker(ctx context.Context, owner string, kind domain.ResourceKind) (*domain.StalenessMarker, error) {
	data, ok, err := e.cache.Get(ctx, domain.StaleKey(owner, kind))
	if err != nil {
		return nil, fmt.Errorf("read staleness marker: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var marker domain.StalenessMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		logger.Debug("Ignoring unreadable staleness marker for %s/%s: %v", owner, kind, err)
		return nil, nil
	}
	return &marker, nil
}

func (e *SyncEngine) stamp(ctx context.Context, owner string, kind domain.ResourceKind) error {
	marker := domain.StalenessMarker{Owner: owner, Kind: kind, SyncedAt: e.now()}
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("encode staleness marker: %w", err)
	}
	if err := e.cache.Set(ctx, domain.StaleKey(owner, kind), data, e.ttl.TTLFor(kind)); err != nil {
		return fmt.Errorf("write staleness marker: %w", err)
	}
	return nil
}

// SyncContacts pulls every contact, bypassing the response cache.
func (e *SyncEngine) SyncContacts(ctx context.Context, owner string) (domain.SyncStats, error) {
	start := e.now()
	stats := domain.SyncStats{Kind: domain.ResourceContacts}

	records, err := e.api.FetchAll(ctx, owner, domain.ResourceContacts, domain.Filter{}, bypassCache)
	if err != nil {
		return stats, fmt.Errorf("fetch contacts: %w", err)
	}

	err = e.reconcile(ctx, records, &stats, func(rec domain.RemoteRecord) (bool, error) {
		contact, err := contactFromRecord(rec, e.now())
		if err != nil {
			return false, err
		}
		return e.contacts.Upsert(ctx, contact)
	})
	if err != nil {
		return stats, err
	}

	return e.finish(ctx, owner, start, stats)
}

// SyncProjects pulls projects after making sure contacts are fresh.
func (e *SyncEngine) SyncProjects(ctx context.Context, owner string, filter domain.Filter) (domain.SyncStats, error) {
	start := e.now()
	stats := domain.SyncStats{Kind: domain.ResourceProjects}

	if err := e.ensureContactsFresh(ctx, owner); err != nil {
		return stats, err
	}

	records, err := e.api.FetchAll(ctx, owner, domain.ResourceProjects, filter, bypassCache)
	if err != nil {
		return stats, fmt.Errorf("fetch projects: %w", err)
	}

	err = e.reconcile(ctx, records, &stats, func(rec domain.RemoteRecord) (bool, error) {
		project, err := projectFromRecord(ctx, rec, e.now(), e.contactExists)
		if err != nil {
			return false, err
		}
		return e.projects.Upsert(ctx, project)
	})
	if err != nil {
		return stats, err
	}

	return e.finish(ctx, owner, start, stats)
}

// SyncInvoices pulls invoices. Contacts are synced when stale; projects are
// re-synced on every call so new projects appear with their invoices.
func (e *SyncEngine) SyncInvoices(ctx context.Context, owner string, filter domain.Filter) (domain.SyncStats, error) {
	start := e.now()
	stats := domain.SyncStats{Kind: domain.ResourceInvoices}

	if err := e.ensureContactsFresh(ctx, owner); err != nil {
		return stats, err
	}
	if _, err := e.SyncProjects(ctx, owner, domain.Filter{ContactRef: filter.ContactRef}); err != nil {
		return stats, err
	}

	records, err := e.api.FetchAll(ctx, owner, domain.ResourceInvoices, filter, bypassCache)
	if err != nil {
		return stats, fmt.Errorf("fetch invoices: %w", err)
	}

	err = e.reconcile(ctx, records, &stats, func(rec domain.RemoteRecord) (bool, error) {
		invoice, err := invoiceFromRecord(ctx, rec, e.now(), e.contactExists, e.projectExists)
		if err != nil {
			return false, err
		}
		return e.invoices.Upsert(ctx, invoice)
	})
	if err != nil {
		return stats, err
	}

	return e.finish(ctx, owner, start, stats)
}

// SyncOneInvoice re-fetches one invoice and, when needed, its contact.
func (e *SyncEngine) SyncOneInvoice(ctx context.Context, owner, remoteID string) (*domain.Invoice, error) {
	rec, err := e.api.FetchOne(ctx, owner, domain.ResourceInvoices, remoteID, bypassCache)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice: %w", err)
	}

	if contactURL := invoiceContactURL(*rec); contactURL != "" {
		if err := e.ensureContact(ctx, owner, contactURL); err != nil {
			return nil, err
		}
	}

	invoice, err := invoiceFromRecord(ctx, *rec, e.now(), e.contactExists, e.projectExists)
	if err != nil {
		return nil, fmt.Errorf("reconcile invoice %s: %w", remoteID, err)
	}
	created, err := e.invoices.Upsert(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("upsert invoice %s: %w", invoice.RemoteID, err)
	}

	logger.Info("Refreshed invoice %s for owner %s (created=%t)", invoice.RemoteID, owner, created)
	return &invoice, nil
}

func (e *SyncEngine) ensureContact(ctx context.Context, owner, contactURL string) error {
	err := e.contactExists(ctx, contactURL)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get contact: %w", err)
	}

	rec, err := e.api.FetchOne(ctx, owner, domain.ResourceContacts, contactURL, bypassCache)
	if err != nil {
		return fmt.Errorf("fetch contact: %w", err)
	}
	contact, err := contactFromRecord(*rec, e.now())
	if err != nil {
		return fmt.Errorf("reconcile contact %s: %w", contactURL, err)
	}
	if _, err := e.contacts.Upsert(ctx, contact); err != nil {
		return fmt.Errorf("upsert contact %s: %w", contact.RemoteID, err)
	}
	return nil
}

// ClearCache drops the owner's staleness markers and cached API responses.
func (e *SyncEngine) ClearCache(ctx context.Context, owner string) error {
	keys := make([]string, 0, len(domain.AllResourceKinds))
	for _, kind := range domain.AllResourceKinds {
		keys = append(keys, domain.StaleKey(owner, kind))
	}
	if err := e.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete staleness markers: %w", err)
	}
	if err := e.cache.DeletePrefix(ctx, domain.APICachePrefix(owner)); err != nil {
		return fmt.Errorf("delete cached responses: %w", err)
	}
	logger.Info("Cleared cache for owner %s", owner)
	return nil
}

// ClearAll drops the whole application cache namespace.
func (e *SyncEngine) ClearAll(ctx context.Context) error {
	if err := e.cache.DeletePrefix(ctx, domain.CacheNamespace); err != nil {
		return fmt.Errorf("clear cache namespace: %w", err)
	}
	logger.Info("Cleared cache for all owners")
	return nil
}

func (e *SyncEngine) ensureContactsFresh(ctx context.Context, owner string) error {
	stale, err := e.IsStale(ctx, owner, domain.ResourceContacts)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	logger.Debug("Contacts stale for owner %s, syncing", owner)
	_, err = e.SyncContacts(ctx, owner)
	return err
}

// reconcile applies upsert to every record. Per-record failures are logged
// and counted; only context cancellation stops the batch.
func (e *SyncEngine) reconcile(
	ctx context.Context,
	records []domain.RemoteRecord,
	stats *domain.SyncStats,
	upsert func(domain.RemoteRecord) (bool, error),
) error {
	stats.Total = len(records)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := upsert(rec)
		if err != nil {
			stats.Errors++
			logger.WithFields(logger.Fields{
				"kind":      stats.Kind,
				"remote_id": rec.URL,
			}).Warnf("Failed to reconcile record: %v", err)
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}
	return nil
}

func (e *SyncEngine) finish(ctx context.Context, owner string, start time.Time, stats domain.SyncStats) (domain.SyncStats, error) {
	if err := e.stamp(ctx, owner, stats.Kind); err != nil {
		return stats, err
	}
	stats.Duration = e.now().Sub(start)
	logger.Info("Synced %s for owner %s: total=%d created=%d updated=%d errors=%d",
		stats.Kind, owner, stats.Total, stats.Created, stats.Updated, stats.Errors)
	return stats, nil
}

func (e *SyncEngine) contactExists(ctx context.Context, remoteID string) error {
	_, err := e.contacts.Get(ctx, remoteID)
	return err
}

func (e *SyncEngine) projectExists(ctx context.Context, remoteID string) error {
	_, err := e.projects.Get(ctx, remoteID)
	return err
}
