package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Save stores a token, replacing any token held by the same owner.
func (s *tokenStore) Save(ctx context.Context, token domain.OAuthToken) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO oauth_tokens (id, owner_id, access_token, refresh_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			id = excluded.id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, token.ID, token.OwnerID, token.AccessToken, token.RefreshToken, token.TokenType,
		token.ExpiresAt.UTC(), token.CreatedAt.UTC(), token.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// GetByOwner retrieves the owner's token, or nil.
func (s *tokenStore) GetByOwner(ctx context.Context, ownerID string) (*domain.OAuthToken, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, owner_id, access_token, refresh_token, token_type, expires_at, created_at, updated_at
		FROM oauth_tokens WHERE owner_id = ?
	`, ownerID)

	var token domain.OAuthToken
	if err := row.Scan(&token.ID, &token.OwnerID, &token.AccessToken, &token.RefreshToken,
		&token.TokenType, &token.ExpiresAt, &token.CreatedAt, &token.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}
	return &token, nil
}

// Update rewrites the owner's token fields in place.
func (s *tokenStore) Update(ctx context.Context, token domain.OAuthToken) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE oauth_tokens
		SET access_token = ?, refresh_token = ?, token_type = ?, expires_at = ?, updated_at = ?
		WHERE owner_id = ?
	`, token.AccessToken, token.RefreshToken, token.TokenType,
		token.ExpiresAt.UTC(), token.UpdatedAt.UTC(), token.OwnerID)
	if err != nil {
		return fmt.Errorf("updating token: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating token: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the owner's token.
func (s *tokenStore) Delete(ctx context.Context, ownerID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM oauth_tokens WHERE owner_id = ?", ownerID); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// Owners lists owners holding a token, sorted.
func (s *tokenStore) Owners(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT owner_id FROM oauth_tokens ORDER BY owner_id")
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	owners := []string{}
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owners: %w", err)
	}
	return owners, nil
}
