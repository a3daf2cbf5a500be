package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// ==================== Contact Store ====================

// contactStore implements driven.ContactStore.
type contactStore struct {
	store *Store
}

var _ driven.ContactStore = (*contactStore)(nil)

const contactColumns = `remote_id, organisation_name, first_name, last_name, email, phone,
	contact_type, is_active, raw_payload, synced_at`

// Upsert inserts or overwrites a contact.
func (s *contactStore) Upsert(ctx context.Context, c domain.Contact) (bool, error) {
	return s.store.upsert(ctx, "contacts", c.RemoteID, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			organisation_name = excluded.organisation_name,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			contact_type = excluded.contact_type,
			is_active = excluded.is_active,
			raw_payload = excluded.raw_payload,
			synced_at = excluded.synced_at
	`, c.RemoteID, c.OrganisationName, c.FirstName, c.LastName, c.Email, c.Phone,
		string(c.Type), c.IsActive, string(c.RawPayload), c.SyncedAt.UTC())
}

// Get retrieves a contact by remote id or short id.
func (s *contactStore) Get(ctx context.Context, id string) (*domain.Contact, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts
		WHERE `+shortIDClause+` ORDER BY remote_id = ? DESC LIMIT 1`, id, id, id, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// List returns every contact ordered by display name.
func (s *contactStore) List(ctx context.Context) ([]domain.Contact, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}

	// Display name is derived, so ordering happens here rather than in SQL.
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].DisplayName() < contacts[j].DisplayName()
	})
	return contacts, nil
}

// Count returns the number of contacts.
func (s *contactStore) Count(ctx context.Context) (int, error) {
	return s.store.count(ctx, "contacts")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*domain.Contact, error) {
	var c domain.Contact
	var contactType, payload string
	if err := row.Scan(&c.RemoteID, &c.OrganisationName, &c.FirstName, &c.LastName, &c.Email,
		&c.Phone, &contactType, &c.IsActive, &payload, &c.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning contact: %w", err)
	}
	c.Type = domain.ContactType(contactType)
	c.RawPayload = []byte(payload)
	return &c, nil
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

const projectColumns = `remote_id, contact_ref, name, status, starts_on, ends_on, budget,
	currency, raw_payload, synced_at`

// Upsert inserts or overwrites a project.
func (s *projectStore) Upsert(ctx context.Context, p domain.Project) (bool, error) {
	return s.store.upsert(ctx, "projects", p.RemoteID, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			contact_ref = excluded.contact_ref,
			name = excluded.name,
			status = excluded.status,
			starts_on = excluded.starts_on,
			ends_on = excluded.ends_on,
			budget = excluded.budget,
			currency = excluded.currency,
			raw_payload = excluded.raw_payload,
			synced_at = excluded.synced_at
	`, p.RemoteID, nullString(p.ContactRef), p.Name, p.Status, nullTime(p.StartsOn), nullTime(p.EndsOn),
		nullString(p.Budget), p.Currency, string(p.RawPayload), p.SyncedAt.UTC())
}

// Get retrieves a project by remote id.
func (s *projectStore) Get(ctx context.Context, remoteID string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE remote_id = ?`, remoteID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// List returns projects ordered by name, optionally restricted to one contact.
func (s *projectStore) List(ctx context.Context, contactRef string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if contactRef != "" {
		query += ` WHERE contact_ref = ?`
		args = append(args, contactRef)
	}
	query += ` ORDER BY name, remote_id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Count returns the number of projects.
func (s *projectStore) Count(ctx context.Context) (int, error) {
	return s.store.count(ctx, "projects")
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var contactRef, budget sql.NullString
	var startsOn, endsOn sql.NullTime
	var payload string
	if err := row.Scan(&p.RemoteID, &contactRef, &p.Name, &p.Status, &startsOn, &endsOn,
		&budget, &p.Currency, &payload, &p.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.ContactRef = stringPtr(contactRef)
	p.Budget = stringPtr(budget)
	p.StartsOn = timePtr(startsOn)
	p.EndsOn = timePtr(endsOn)
	p.RawPayload = []byte(payload)
	return &p, nil
}

// ==================== Invoice Store ====================

// invoiceStore implements driven.InvoiceStore.
type invoiceStore struct {
	store *Store
}

var _ driven.InvoiceStore = (*invoiceStore)(nil)

const invoiceColumns = `remote_id, contact_ref, project_ref, reference, status, dated_on, due_on,
	net_value, tax_value, total_value, currency, raw_payload, synced_at`

// Upsert inserts or overwrites an invoice.
func (s *invoiceStore) Upsert(ctx context.Context, inv domain.Invoice) (bool, error) {
	return s.store.upsert(ctx, "invoices", inv.RemoteID, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			contact_ref = excluded.contact_ref,
			project_ref = excluded.project_ref,
			reference = excluded.reference,
			status = excluded.status,
			dated_on = excluded.dated_on,
			due_on = excluded.due_on,
			net_value = excluded.net_value,
			tax_value = excluded.tax_value,
			total_value = excluded.total_value,
			currency = excluded.currency,
			raw_payload = excluded.raw_payload,
			synced_at = excluded.synced_at
	`, inv.RemoteID, nullString(inv.ContactRef), nullString(inv.ProjectRef), inv.Reference, inv.Status,
		inv.DatedOn.UTC(), nullTime(inv.DueOn), inv.NetValue, inv.TaxValue, inv.TotalValue,
		inv.Currency, string(inv.RawPayload), inv.SyncedAt.UTC())
}

// Get retrieves an invoice by remote id or short id.
func (s *invoiceStore) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE `+shortIDClause+` ORDER BY remote_id = ? DESC LIMIT 1`, id, id, id, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return inv, err
}

// List returns invoices inside scope, newest first.
func (s *invoiceStore) List(ctx context.Context, scope domain.InvoiceScope) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	switch scope.Kind {
	case domain.ScopeAll:
	case domain.ScopeContact:
		query += ` WHERE contact_ref = ?`
		args = append(args, scope.ContactRef)
	default:
		return []domain.Invoice{}, nil
	}
	query += ` ORDER BY dated_on DESC, remote_id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}
	return invoices, nil
}

// Count returns the number of invoices.
func (s *invoiceStore) Count(ctx context.Context) (int, error) {
	return s.store.count(ctx, "invoices")
}

func scanInvoice(row scanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var contactRef, projectRef sql.NullString
	var dueOn sql.NullTime
	var payload string
	if err := row.Scan(&inv.RemoteID, &contactRef, &projectRef, &inv.Reference, &inv.Status,
		&inv.DatedOn, &dueOn, &inv.NetValue, &inv.TaxValue, &inv.TotalValue, &inv.Currency,
		&payload, &inv.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	inv.ContactRef = stringPtr(contactRef)
	inv.ProjectRef = stringPtr(projectRef)
	inv.DueOn = timePtr(dueOn)
	inv.RawPayload = []byte(payload)
	return &inv, nil
}
