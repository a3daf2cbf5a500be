package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// Ensure the mirror stores implement the interfaces.
var (
	_ driven.ContactStore = (*ContactStore)(nil)
	_ driven.ProjectStore = (*ProjectStore)(nil)
	_ driven.InvoiceStore = (*InvoiceStore)(nil)
)

// matchesID reports whether id is remoteID or its trailing path segment.
func matchesID(remoteID, id string) bool {
	return remoteID == id || strings.HasSuffix(remoteID, "/"+id)
}

// ContactStore is an in-memory implementation of driven.ContactStore.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact
}

// NewContactStore creates a new in-memory contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{
		contacts: make(map[string]domain.Contact),
	}
}

// Upsert inserts or overwrites a contact.
func (s *ContactStore) Upsert(_ context.Context, contact domain.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.contacts[contact.RemoteID]
	s.contacts[contact.RemoteID] = contact
	return !exists, nil
}

// Get retrieves a contact by remote id or short id.
func (s *ContactStore) Get(_ context.Context, id string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contacts[id]; ok {
		return &c, nil
	}
	for remoteID, c := range s.contacts {
		if matchesID(remoteID, id) {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns every contact ordered by display name.
func (s *ContactStore) List(_ context.Context) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayName() < result[j].DisplayName()
	})
	return result, nil
}

// Count returns the number of contacts.
func (s *ContactStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

// ProjectStore is an in-memory implementation of driven.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]domain.Project),
	}
}

// Upsert inserts or overwrites a project.
func (s *ProjectStore) Upsert(_ context.Context, project domain.Project) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.projects[project.RemoteID]
	s.projects[project.RemoteID] = project
	return !exists, nil
}

// Get retrieves a project by remote id.
func (s *ProjectStore) Get(_ context.Context, remoteID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[remoteID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// List returns projects, optionally restricted to one contact.
func (s *ProjectStore) List(_ context.Context, contactRef string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if contactRef != "" && (p.ContactRef == nil || *p.ContactRef != contactRef) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Count returns the number of projects.
func (s *ProjectStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects), nil
}

// InvoiceStore is an in-memory implementation of driven.InvoiceStore.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]domain.Invoice
}

// NewInvoiceStore creates a new in-memory invoice store.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		invoices: make(map[string]domain.Invoice),
	}
}

// Upsert inserts or overwrites an invoice.
func (s *InvoiceStore) Upsert(_ context.Context, invoice domain.Invoice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.invoices[invoice.RemoteID]
	s.invoices[invoice.RemoteID] = invoice
	return !exists, nil
}

// Get retrieves an invoice by remote id or short id.
func (s *InvoiceStore) Get(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inv, ok := s.invoices[id]; ok {
		return &inv, nil
	}
	for remoteID, inv := range s.invoices {
		if matchesID(remoteID, id) {
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns invoices inside scope, newest first.
func (s *InvoiceStore) List(_ context.Context, scope domain.InvoiceScope) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Invoice, 0)
	for _, inv := range s.invoices {
		inv := inv
		if scope.Matches(&inv) {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DatedOn.Equal(result[j].DatedOn) {
			return result[i].DatedOn.After(result[j].DatedOn)
		}
		return result[i].RemoteID < result[j].RemoteID
	})
	return result, nil
}

// Count returns the number of invoices.
func (s *InvoiceStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices), nil
}
