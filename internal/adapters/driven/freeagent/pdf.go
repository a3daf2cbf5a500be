package freeagent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// pdfSignature is the magic prefix of every PDF document.
var pdfSignature = []byte("%PDF")

// FetchInvoicePDF downloads an invoice PDF. The remote wraps the document
// as base64 in {"pdf":{"content":"..."}}.
func (g *Gateway) FetchInvoicePDF(ctx context.Context, owner, id string) ([]byte, error) {
	shortID := domain.ShortID(id)
	if shortID == "" {
		return nil, fmt.Errorf("%w: empty invoice id", domain.ErrInvalidInput)
	}
	path := "/invoices/" + url.PathEscape(shortID) + "/pdf"

	body, err := g.Request(ctx, http.MethodGet, path, owner, nil)
	if err != nil {
		return nil, err
	}
	return decodePDF(body, path)
}

func decodePDF(body map[string]json.RawMessage, path string) ([]byte, error) {
	decodingErr := func(err error) error {
		return &domain.APIError{Kind: domain.ErrDecoding, Path: path, Err: err}
	}

	raw, ok := body["pdf"]
	if !ok {
		return nil, decodingErr(errors.New("missing pdf field"))
	}
	var envelope struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, decodingErr(err)
	}
	if envelope.Content == nil || *envelope.Content == "" {
		return nil, decodingErr(errors.New("missing pdf.content"))
	}

	data, err := base64.StdEncoding.DecodeString(*envelope.Content)
	if err != nil {
		return nil, decodingErr(fmt.Errorf("base64: %w", err))
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return nil, decodingErr(errors.New("payload is not a PDF document"))
	}
	return data, nil
}
