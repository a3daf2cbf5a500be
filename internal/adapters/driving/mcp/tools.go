package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

const defaultInvoiceLimit = 50

// ListInvoicesInput is the input schema for the list_invoices tool.
type ListInvoicesInput struct {
	Status  string `json:"status,omitempty" jsonschema:"only return invoices with this normalised status, e.g. sent or paid"`
	Contact string `json:"contact,omitempty" jsonschema:"only return invoices for this contact id or url"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of invoices to return (default 50)"`
}

// ListInvoicesOutput is the output schema for the list_invoices tool.
type ListInvoicesOutput struct {
	Invoices []InvoiceOutput `json:"invoices"`
	Count    int             `json:"count"`
	Total    int             `json:"total"`
}

// GetInvoiceInput is the input schema for the get_invoice tool.
type GetInvoiceInput struct {
	ID string `json:"id" jsonschema:"the invoice id or url"`
}

// GetInvoiceOutput is the output schema for the get_invoice tool.
type GetInvoiceOutput struct {
	Invoice InvoiceOutput `json:"invoice"`
}

// SyncInvoicesInput is the input schema for the sync_invoices tool.
type SyncInvoicesInput struct{}

// SyncInvoicesOutput is the output schema for the sync_invoices tool.
type SyncInvoicesOutput struct {
	Total      int   `json:"total"`
	Created    int   `json:"created"`
	Updated    int   `json:"updated"`
	Errors     int   `json:"errors"`
	DurationMS int64 `json:"duration_ms"`
}

// InvoiceOutput is one invoice as presented to the assistant.
type InvoiceOutput struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	Overdue    bool   `json:"overdue"`
	DatedOn    string `json:"dated_on"`
	DueOn      string `json:"due_on,omitempty"`
	TotalValue string `json:"total_value"`
	Currency   string `json:"currency"`
	Contact    string `json:"contact,omitempty"`
}

func toInvoiceOutput(inv *domain.Invoice, now time.Time) InvoiceOutput {
	out := InvoiceOutput{
		ID:         domain.ShortID(inv.RemoteID),
		URL:        inv.RemoteID,
		Reference:  inv.Reference,
		Status:     inv.StatusLabel(now),
		Overdue:    inv.IsOverdue(now),
		DatedOn:    inv.DatedOn.Format("2006-01-02"),
		TotalValue: inv.TotalValue,
		Currency:   inv.Currency,
	}
	if inv.DueOn != nil {
		out.DueOn = inv.DueOn.Format("2006-01-02")
	}
	if inv.ContactRef != nil {
		out.Contact = *inv.ContactRef
	}
	return out
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_invoices",
		Description: "List mirrored invoices, syncing from the accounting system when stale",
	}, s.handleListInvoices)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_invoice",
		Description: "Get one mirrored invoice by id or url",
	}, s.handleGetInvoice)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_invoices",
		Description: "Force a sync of invoices from the accounting system",
	}, s.handleSyncInvoices)
}

func (s *Server) handleListInvoices(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInvoicesInput,
) (*mcp.CallToolResult, ListInvoicesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultInvoiceLimit
	}

	invoices, err := s.ports.Mirror.ListInvoices(ctx, s.ports.Principal)
	if err != nil {
		return nil, ListInvoicesOutput{}, err
	}

	status := domain.NormaliseStatus(input.Status)
	now := time.Now()
	output := ListInvoicesOutput{Invoices: []InvoiceOutput{}}
	for i := range invoices {
		inv := &invoices[i]
		if status != "" && inv.Status != status {
			continue
		}
		if input.Contact != "" && !matchesContact(inv, input.Contact) {
			continue
		}
		output.Total++
		if len(output.Invoices) < limit {
			output.Invoices = append(output.Invoices, toInvoiceOutput(inv, now))
		}
	}
	output.Count = len(output.Invoices)

	return nil, output, nil
}

func matchesContact(inv *domain.Invoice, contact string) bool {
	if inv.ContactRef == nil {
		return false
	}
	return *inv.ContactRef == contact || domain.ShortID(*inv.ContactRef) == contact
}

func (s *Server) handleGetInvoice(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInvoiceInput,
) (*mcp.CallToolResult, GetInvoiceOutput, error) {
	inv, err := s.ports.Mirror.GetInvoice(ctx, s.ports.Principal, input.ID)
	if err != nil {
		return nil, GetInvoiceOutput{}, err
	}
	return nil, GetInvoiceOutput{Invoice: toInvoiceOutput(inv, time.Now())}, nil
}

func (s *Server) handleSyncInvoices(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncInvoicesInput,
) (*mcp.CallToolResult, SyncInvoicesOutput, error) {
	stats, err := s.ports.Mirror.SyncNow(ctx, s.ports.Principal)
	if err != nil {
		return nil, SyncInvoicesOutput{}, err
	}
	return nil, SyncInvoicesOutput{
		Total:      stats.Total,
		Created:    stats.Created,
		Updated:    stats.Updated,
		Errors:     stats.Errors,
		DurationMS: stats.Duration.Milliseconds(),
	}, nil
}
