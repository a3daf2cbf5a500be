package domain

import (
	"strings"
	"time"
)

// Normalised invoice statuses.
const (
	InvoiceDraft      = "draft"
	InvoiceOpen       = "open"
	InvoiceSent       = "sent"
	InvoiceScheduled  = "scheduled_to_email"
	InvoiceOverdue    = "overdue"
	InvoicePaid       = "paid"
	InvoiceCancelled  = "cancelled"
	InvoiceWrittenOff = "written_off"
)

// Status colours used by presentation layers.
const (
	ColorSuccess = "success"
	ColorDanger  = "danger"
	ColorWarning = "warning"
	ColorInfo    = "info"
	ColorGray    = "gray"
)

// Invoice is the local mirror of a remote invoice.
type Invoice struct {
	// RemoteID is unique within the mirror and is the upsert key.
	RemoteID   string
	ContactRef *string
	ProjectRef *string
	Reference  string
	// Status is normalised with NormaliseStatus.
	Status  string
	DatedOn time.Time
	DueOn   *time.Time
	// Money values are decimal strings exactly as the remote sent them.
	NetValue   string
	TaxValue   string
	TotalValue string
	Currency   string
	RawPayload []byte
	SyncedAt   time.Time
}

// NormaliseStatus lower-cases a remote status and joins words with underscores.
// "Written-off" becomes "written_off".
func NormaliseStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

// IsOverdue returns true if the invoice is past due at now and still collectable.
// Due dates are calendar dates, so both sides are compared as UTC days and an
// invoice due today is not overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.DueOn == nil {
		return false
	}
	switch i.Status {
	case InvoicePaid, InvoiceCancelled, InvoiceWrittenOff, InvoiceDraft:
		return false
	}
	today := truncateDay(now.UTC())
	return truncateDay(i.DueOn.UTC()).Before(today)
}

// StatusLabel returns a human-readable status.
func (i *Invoice) StatusLabel(now time.Time) string {
	if i.IsOverdue(now) {
		return "Overdue"
	}
	if i.Status == "" {
		return "Unknown"
	}
	words := strings.Split(i.Status, "_")
	for n, w := range words {
		if w != "" {
			words[n] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// StatusColor returns the presentation colour for the invoice status.
func (i *Invoice) StatusColor(now time.Time) string {
	if i.IsOverdue(now) || i.Status == InvoiceOverdue {
		return ColorDanger
	}
	switch i.Status {
	case InvoicePaid:
		return ColorSuccess
	case InvoiceDraft, InvoiceCancelled, InvoiceWrittenOff:
		return ColorGray
	case InvoiceOpen, InvoiceSent, InvoiceScheduled:
		return ColorInfo
	default:
		return ColorWarning
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
