package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.OAuthToken
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]domain.OAuthToken),
	}
}

// Save stores a token, replacing any token held by the same owner.
func (s *TokenStore) Save(_ context.Context, token domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.OwnerID] = token
	return nil
}

// GetByOwner retrieves the owner's token, or nil.
func (s *TokenStore) GetByOwner(_ context.Context, ownerID string) (*domain.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[ownerID]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// Update rewrites the owner's token fields.
func (s *TokenStore) Update(_ context.Context, token domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tokens[token.OwnerID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.AccessToken = token.AccessToken
	existing.RefreshToken = token.RefreshToken
	existing.TokenType = token.TokenType
	existing.ExpiresAt = token.ExpiresAt
	existing.UpdatedAt = token.UpdatedAt
	s.tokens[token.OwnerID] = existing
	return nil
}

// Delete removes the owner's token.
func (s *TokenStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, ownerID)
	return nil
}

// Owners lists owners holding a token, sorted.
func (s *TokenStore) Owners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owners := make([]string, 0, len(s.tokens))
	for owner := range s.tokens {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}
