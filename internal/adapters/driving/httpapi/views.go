package httpapi

import (
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

const dateLayout = "2006-01-02"

type invoiceView struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Reference   string  `json:"reference"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	StatusColor string  `json:"status_color"`
	Overdue     bool    `json:"overdue"`
	DatedOn     string  `json:"dated_on"`
	DueOn       *string `json:"due_on,omitempty"`
	NetValue    string  `json:"net_value"`
	TaxValue    string  `json:"tax_value"`
	TotalValue  string  `json:"total_value"`
	Currency    string  `json:"currency"`
	Contact     *string `json:"contact,omitempty"`
	Project     *string `json:"project,omitempty"`
	SyncedAt    string  `json:"synced_at"`
}

func toInvoiceView(inv *domain.Invoice, now time.Time) invoiceView {
	v := invoiceView{
		ID:          domain.ShortID(inv.RemoteID),
		URL:         inv.RemoteID,
		Reference:   inv.Reference,
		Status:      inv.Status,
		StatusLabel: inv.StatusLabel(now),
		StatusColor: inv.StatusColor(now),
		Overdue:     inv.IsOverdue(now),
		DatedOn:     inv.DatedOn.Format(dateLayout),
		NetValue:    inv.NetValue,
		TaxValue:    inv.TaxValue,
		TotalValue:  inv.TotalValue,
		Currency:    inv.Currency,
		Contact:     inv.ContactRef,
		Project:     inv.ProjectRef,
		SyncedAt:    inv.SyncedAt.UTC().Format(time.RFC3339),
	}
	if inv.DueOn != nil {
		due := inv.DueOn.Format(dateLayout)
		v.DueOn = &due
	}
	return v
}

type contactView struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

func toContactView(c *domain.Contact) contactView {
	return contactView{
		ID:       domain.ShortID(c.RemoteID),
		URL:      c.RemoteID,
		Name:     c.DisplayName(),
		Email:    c.Email,
		Phone:    c.Phone,
		Type:     string(c.Type),
		IsActive: c.IsActive,
	}
}

type projectView struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Contact  *string `json:"contact,omitempty"`
	Budget   *string `json:"budget,omitempty"`
	Currency string  `json:"currency"`
}

func toProjectView(p *domain.Project) projectView {
	return projectView{
		ID:       domain.ShortID(p.RemoteID),
		URL:      p.RemoteID,
		Name:     p.Name,
		Status:   p.Status,
		Contact:  p.ContactRef,
		Budget:   p.Budget,
		Currency: p.Currency,
	}
}

type connectionView struct {
	Connected bool       `json:"connected"`
	Owner     string     `json:"owner"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func toConnectionView(owner string, token *domain.OAuthToken, now time.Time) connectionView {
	v := connectionView{Owner: owner}
	if token != nil {
		v.Connected = true
		expires := token.ExpiresAt
		v.ExpiresAt = &expires
		v.Expired = token.IsExpired(now)
	}
	return v
}
