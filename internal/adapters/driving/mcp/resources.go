package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ledgerbridge resources.
	uriScheme = "ledgerbridge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "contacts",
		Name:        "contacts",
		Description: "Mirrored contacts visible to the acting principal",
		MIMEType:    "application/json",
	}, s.handleContactsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "invoices/{invoiceId}",
		Name:        "invoice-payload",
		Description: "Raw remote payload of a mirrored invoice",
		MIMEType:    "application/json",
	}, s.handleInvoiceResource)
}

func (s *Server) handleContactsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	contacts, err := s.ports.Mirror.ListContacts(ctx, s.ports.Principal)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	type contactInfo struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email,omitempty"`
		URL   string `json:"url"`
	}

	infos := make([]contactInfo, len(contacts))
	for i := range contacts {
		infos[i] = contactInfo{
			ID:    domain.ShortID(contacts[i].RemoteID),
			Name:  contacts[i].DisplayName(),
			Email: contacts[i].Email,
			URL:   contacts[i].RemoteID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling contacts: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleInvoiceResource returns the stored remote payload of one invoice.
func (s *Server) handleInvoiceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractInvoiceID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	inv, err := s.ports.Mirror.GetInvoice(ctx, s.ports.Principal, id)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	text := string(inv.RawPayload)
	if text == "" {
		data, err := json.MarshalIndent(toInvoiceOutput(inv, time.Now()), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling invoice: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

// extractInvoiceID extracts the id from a URI like ledgerbridge://invoices/{invoiceId}.
func extractInvoiceID(uri string) string {
	const prefix = uriScheme + "invoices/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
