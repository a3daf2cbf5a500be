package freeagent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// fetchAllPages walks page/per_page from page 1, merging the array found
// under the kind's envelope key. It stops on a short or empty page and at
// maxPages, whichever comes first.
func (g *Gateway) fetchAllPages(ctx context.Context, owner string, kind domain.ResourceKind,
	params url.Values) ([]json.RawMessage, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("per_page", strconv.Itoa(g.pageSize))

	var all []json.RawMessage
	for page := 1; page <= g.maxPages; page++ {
		query.Set("page", strconv.Itoa(page))

		body, err := g.Request(ctx, http.MethodGet, "/"+kind.String(), owner, query)
		if err != nil {
			return nil, err
		}

		items, err := envelopeArray(body, kind.String())
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(items) < g.pageSize {
			return all, nil
		}
	}

	logger.Warn("Pagination cap of %d pages reached for %s (owner %s), results truncated",
		g.maxPages, kind, owner)
	return all, nil
}

// envelopeArray decodes the array under key. A missing key is an empty page.
func envelopeArray(body map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	raw, ok := body[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &domain.APIError{Kind: domain.ErrDecoding, Path: "/" + key, Err: err}
	}
	return items, nil
}
