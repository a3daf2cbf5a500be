package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// Ensure LinkStore implements the interface.
var _ driven.LinkStore = (*LinkStore)(nil)

// LinkStore is an in-memory implementation of driven.LinkStore.
type LinkStore struct {
	mu    sync.RWMutex
	links map[string]string
}

// NewLinkStore creates a new in-memory link store.
func NewLinkStore() *LinkStore {
	return &LinkStore{
		links: make(map[string]string),
	}
}

// Link ties a principal to a contact.
func (s *LinkStore) Link(_ context.Context, link domain.PrincipalLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.PrincipalID] = link.ContactRemoteID
	return nil
}

// Unlink removes a principal's link.
func (s *LinkStore) Unlink(_ context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, principalID)
	return nil
}

// Get returns a principal's link, or nil.
func (s *LinkStore) Get(_ context.Context, principalID string) (*domain.PrincipalLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, ok := s.links[principalID]
	if !ok {
		return nil, nil
	}
	return &domain.PrincipalLink{PrincipalID: principalID, ContactRemoteID: contact}, nil
}

// List returns every link ordered by principal id.
func (s *LinkStore) List(_ context.Context) ([]domain.PrincipalLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.PrincipalLink, 0, len(s.links))
	for principal, contact := range s.links {
		result = append(result, domain.PrincipalLink{PrincipalID: principal, ContactRemoteID: contact})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PrincipalID < result[j].PrincipalID
	})
	return result, nil
}
