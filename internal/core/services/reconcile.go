package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// remoteDateLayout is the date format the remote uses for *_on fields.
const remoteDateLayout = "2006-01-02"

// errMalformedRecord marks a remote record that cannot be mirrored.
var errMalformedRecord = errors.New("malformed record")

type remoteContact struct {
	URL              string `json:"url"`
	OrganisationName string `json:"organisation_name"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	Status           string `json:"status"`
}

type remoteProject struct {
	URL      string          `json:"url"`
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	Contact  string          `json:"contact"`
	StartsOn string          `json:"starts_on"`
	EndsOn   string          `json:"ends_on"`
	Budget   json.RawMessage `json:"budget"`
	Currency string          `json:"currency"`
}

type remoteInvoice struct {
	URL           string          `json:"url"`
	Contact       string          `json:"contact"`
	Project       string          `json:"project"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	DatedOn       string          `json:"dated_on"`
	DueOn         string          `json:"due_on"`
	NetValue      json.RawMessage `json:"net_value"`
	SalesTaxValue json.RawMessage `json:"sales_tax_value"`
	TotalValue    json.RawMessage `json:"total_value"`
	Currency      string          `json:"currency"`
}

// lookupFunc reports whether a referenced record exists locally.
type lookupFunc func(ctx context.Context, remoteID string) error

func decodeRecord(rec domain.RemoteRecord, v any) error {
	if err := json.Unmarshal(rec.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedRecord, err)
	}
	return nil
}

func recordURL(payloadURL string, rec domain.RemoteRecord) (string, error) {
	if payloadURL != "" {
		return payloadURL, nil
	}
	if rec.URL != "" {
		return rec.URL, nil
	}
	return "", fmt.Errorf("%w: missing url", errMalformedRecord)
}

func contactFromRecord(rec domain.RemoteRecord, now time.Time) (domain.Contact, error) {
	var rc remoteContact
	if err := decodeRecord(rec, &rc); err != nil {
		return domain.Contact{}, err
	}
	id, err := recordURL(rc.URL, rec)
	if err != nil {
		return domain.Contact{}, err
	}

	contactType := domain.ContactPerson
	if strings.TrimSpace(rc.OrganisationName) != "" {
		contactType = domain.ContactOrganisation
	}

	return domain.Contact{
		RemoteID:         id,
		OrganisationName: rc.OrganisationName,
		FirstName:        rc.FirstName,
		LastName:         rc.LastName,
		Email:            rc.Email,
		Phone:            rc.PhoneNumber,
		Type:             contactType,
		IsActive:         rc.Status == "" || strings.EqualFold(rc.Status, "active"),
		RawPayload:       rec.Payload,
		SyncedAt:         now,
	}, nil
}

func projectFromRecord(ctx context.Context, rec domain.RemoteRecord, now time.Time,
	contactExists lookupFunc) (domain.Project, error) {
	var rp remoteProject
	if err := decodeRecord(rec, &rp); err != nil {
		return domain.Project{}, err
	}
	id, err := recordURL(rp.URL, rec)
	if err != nil {
		return domain.Project{}, err
	}

	startsOn, err := parseOptionalDate("starts_on", rp.StartsOn)
	if err != nil {
		return domain.Project{}, err
	}
	endsOn, err := parseOptionalDate("ends_on", rp.EndsOn)
	if err != nil {
		return domain.Project{}, err
	}
	contactRef, err := resolveRef(ctx, rp.Contact, contactExists)
	if err != nil {
		return domain.Project{}, err
	}

	return domain.Project{
		RemoteID:   id,
		ContactRef: contactRef,
		Name:       rp.Name,
		Status:     rp.Status,
		StartsOn:   startsOn,
		EndsOn:     endsOn,
		Budget:     decimalPtr(rp.Budget),
		Currency:   rp.Currency,
		RawPayload: rec.Payload,
		SyncedAt:   now,
	}, nil
}

func invoiceFromRecord(ctx context.Context, rec domain.RemoteRecord, now time.Time,
	contactExists, projectExists lookupFunc) (domain.Invoice, error) {
	var ri remoteInvoice
	if err := decodeRecord(rec, &ri); err != nil {
		return domain.Invoice{}, err
	}
	id, err := recordURL(ri.URL, rec)
	if err != nil {
		return domain.Invoice{}, err
	}

	datedOn, err := time.Parse(remoteDateLayout, ri.DatedOn)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: dated_on %q", errMalformedRecord, ri.DatedOn)
	}
	dueOn, err := parseOptionalDate("due_on", ri.DueOn)
	if err != nil {
		return domain.Invoice{}, err
	}
	contactRef, err := resolveRef(ctx, ri.Contact, contactExists)
	if err != nil {
		return domain.Invoice{}, err
	}
	projectRef, err := resolveRef(ctx, ri.Project, projectExists)
	if err != nil {
		return domain.Invoice{}, err
	}

	return domain.Invoice{
		RemoteID:   id,
		ContactRef: contactRef,
		ProjectRef: projectRef,
		Reference:  ri.Reference,
		Status:     domain.NormaliseStatus(ri.Status),
		DatedOn:    datedOn,
		DueOn:      dueOn,
		NetValue:   decimalString(ri.NetValue),
		TaxValue:   decimalString(ri.SalesTaxValue),
		TotalValue: decimalString(ri.TotalValue),
		Currency:   ri.Currency,
		RawPayload: rec.Payload,
		SyncedAt:   now,
	}, nil
}

// resolveRef returns ref if the referenced record is mirrored, else nil.
func resolveRef(ctx context.Context, ref string, exists lookupFunc) (*string, error) {
	if ref == "" || exists == nil {
		return nil, nil
	}
	err := exists(ctx, ref)
	switch {
	case err == nil:
		return &ref, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(remoteDateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", errMalformedRecord, field, value)
	}
	return &t, nil
}

// decimalString keeps a money value exactly as sent, whether the remote
// encoded it as a JSON string or a JSON number.
func decimalString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func decimalPtr(raw json.RawMessage) *string {
	s := decimalString(raw)
	if s == "" {
		return nil
	}
	return &s
}

// invoiceContactURL extracts the contact reference without a full decode.
func invoiceContactURL(rec domain.RemoteRecord) string {
	var ri struct {
		Contact string `json:"contact"`
	}
	if err := json.Unmarshal(rec.Payload, &ri); err != nil {
		return ""
	}
	return ri.Contact
}
