package freeagent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// queryParams builds the resource-specific query for kind.
// Only parameters the remote understands for that kind are sent.
func queryParams(kind domain.ResourceKind, filter domain.Filter) url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}

	set("view", filter.View)
	switch kind {
	case domain.ResourceProjects:
		set("contact", filter.ContactRef)
	case domain.ResourceInvoices:
		set("contact", filter.ContactRef)
		set("project", filter.ProjectRef)
		set("from_date", filter.FromDate)
		set("to_date", filter.ToDate)
	}
	return params
}

// FetchAll returns every record of kind, reading through the cache.
func (g *Gateway) FetchAll(ctx context.Context, owner string, kind domain.ResourceKind,
	filter domain.Filter, opts domain.FetchOptions) ([]domain.RemoteRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown resource kind %q", domain.ErrInvalidInput, kind)
	}
	params := queryParams(kind, filter)
	key := cacheKey(owner, kind, "list?"+params.Encode())

	if !opts.BypassCache {
		if records, ok := g.cachedRecords(ctx, key); ok {
			return records, nil
		}
	}

	items, err := g.fetchAllPages(ctx, owner, kind, params)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RemoteRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}

	g.storeRecords(ctx, key, kind, records)
	return records, nil
}

// FetchOne returns one record of kind by remote id or short id.
func (g *Gateway) FetchOne(ctx context.Context, owner string, kind domain.ResourceKind,
	id string, opts domain.FetchOptions) (*domain.RemoteRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown resource kind %q", domain.ErrInvalidInput, kind)
	}
	shortID := domain.ShortID(id)
	if shortID == "" {
		return nil, fmt.Errorf("%w: empty %s id", domain.ErrInvalidInput, kind.Singular())
	}
	key := cacheKey(owner, kind, "one:"+shortID)

	if !opts.BypassCache {
		if records, ok := g.cachedRecords(ctx, key); ok && len(records) == 1 {
			return &records[0], nil
		}
	}

	path := "/" + kind.String() + "/" + url.PathEscape(shortID)
	body, err := g.Request(ctx, http.MethodGet, path, owner, nil)
	if err != nil {
		return nil, err
	}
	raw, ok := body[kind.Singular()]
	if !ok {
		return nil, &domain.APIError{Kind: domain.ErrDecoding, Path: path,
			Err: fmt.Errorf("missing %q in response", kind.Singular())}
	}

	record := toRecord(raw)
	g.storeRecords(ctx, key, kind, []domain.RemoteRecord{record})
	return &record, nil
}

// toRecord pairs a raw object with its url field.
func toRecord(raw json.RawMessage) domain.RemoteRecord {
	var head struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(raw, &head)
	return domain.RemoteRecord{URL: head.URL, Payload: []byte(raw)}
}
