package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// linkStore implements driven.LinkStore.
type linkStore struct {
	store *Store
}

var _ driven.LinkStore = (*linkStore)(nil)

// Link ties a principal to a contact, replacing any previous link.
func (s *linkStore) Link(ctx context.Context, link domain.PrincipalLink) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO principal_contacts (principal_id, contact_remote_id, linked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(principal_id) DO UPDATE SET
			contact_remote_id = excluded.contact_remote_id,
			linked_at = excluded.linked_at
	`, link.PrincipalID, link.ContactRemoteID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving link: %w", err)
	}
	return nil
}

// Unlink removes a principal's link.
func (s *linkStore) Unlink(ctx context.Context, principalID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM principal_contacts WHERE principal_id = ?", principalID); err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	return nil
}

// Get returns a principal's link, or nil.
func (s *linkStore) Get(ctx context.Context, principalID string) (*domain.PrincipalLink, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT principal_id, contact_remote_id FROM principal_contacts WHERE principal_id = ?", principalID)

	var link domain.PrincipalLink
	if err := row.Scan(&link.PrincipalID, &link.ContactRemoteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning link: %w", err)
	}
	return &link, nil
}

// List returns every link ordered by principal id.
func (s *linkStore) List(ctx context.Context) ([]domain.PrincipalLink, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT principal_id, contact_remote_id FROM principal_contacts ORDER BY principal_id")
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	links := []domain.PrincipalLink{}
	for rows.Next() {
		var link domain.PrincipalLink
		if err := rows.Scan(&link.PrincipalID, &link.ContactRemoteID); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}
