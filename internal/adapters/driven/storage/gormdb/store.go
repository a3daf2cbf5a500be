package gormdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.TokenStore   = (*TokenStore)(nil)
	_ driven.ContactStore = (*ContactStore)(nil)
	_ driven.ProjectStore = (*ProjectStore)(nil)
	_ driven.InvoiceStore = (*InvoiceStore)(nil)
	_ driven.LinkStore    = (*LinkStore)(nil)
)

// Store owns the GORM handle shared by every store.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the schema and returns the store.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TokenStore returns the token store.
func (s *Store) TokenStore() *TokenStore { return &TokenStore{db: s.db} }

// ContactStore returns the contact store.
func (s *Store) ContactStore() *ContactStore { return &ContactStore{db: s.db} }

// ProjectStore returns the project store.
func (s *Store) ProjectStore() *ProjectStore { return &ProjectStore{db: s.db} }

// InvoiceStore returns the invoice store.
func (s *Store) InvoiceStore() *InvoiceStore { return &InvoiceStore{db: s.db} }

// LinkStore returns the link store.
func (s *Store) LinkStore() *LinkStore { return &LinkStore{db: s.db} }

// upsert writes row keyed on remote_id and reports whether it was new.
func upsert(ctx context.Context, db *gorm.DB, model any, remoteID string, row any) (bool, error) {
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(model).Where("remote_id = ?", remoteID).Count(&n).Error; err != nil {
			return err
		}
		created = n == 0
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "remote_id"}},
			UpdateAll: true,
		}).Create(row).Error
	})
	return created, err
}

// byShortID matches remote_id exactly or by trailing path segment.
func byShortID(db *gorm.DB, id string) *gorm.DB {
	return db.Where("remote_id = ? OR remote_id LIKE ?", id, "%/"+escapeLike(id))
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// TokenStore implements driven.TokenStore.
type TokenStore struct{ db *gorm.DB }

// Save stores a token, replacing any token held by the same owner.
func (s *TokenStore) Save(ctx context.Context, token domain.OAuthToken) error {
	m := toTokenModel(token)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		UpdateAll: true,
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// GetByOwner retrieves the owner's token, or nil.
func (s *TokenStore) GetByOwner(ctx context.Context, ownerID string) (*domain.OAuthToken, error) {
	var m tokenModel
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	token := m.toDomain()
	return &token, nil
}

// Update rewrites the owner's token fields in place.
func (s *TokenStore) Update(ctx context.Context, token domain.OAuthToken) error {
	result := s.db.WithContext(ctx).Model(&tokenModel{}).Where("owner_id = ?", token.OwnerID).
		Updates(map[string]any{
			"access_token":  token.AccessToken,
			"refresh_token": token.RefreshToken,
			"token_type":    token.TokenType,
			"expires_at":    token.ExpiresAt.UTC(),
			"updated_at":    token.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("updating token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the owner's token.
func (s *TokenStore) Delete(ctx context.Context, ownerID string) error {
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&tokenModel{}).Error; err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// Owners lists owners holding a token, sorted.
func (s *TokenStore) Owners(ctx context.Context) ([]string, error) {
	var owners []string
	if err := s.db.WithContext(ctx).Model(&tokenModel{}).Order("owner_id").Pluck("owner_id", &owners).Error; err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	return owners, nil
}

// ContactStore implements driven.ContactStore.
type ContactStore struct{ db *gorm.DB }

// Upsert inserts or overwrites a contact.
func (s *ContactStore) Upsert(ctx context.Context, c domain.Contact) (bool, error) {
	m := toContactModel(c)
	created, err := upsert(ctx, s.db, &contactModel{}, c.RemoteID, &m)
	if err != nil {
		return false, fmt.Errorf("saving contact: %w", err)
	}
	return created, nil
}

// Get retrieves a contact by remote id or short id.
func (s *ContactStore) Get(ctx context.Context, id string) (*domain.Contact, error) {
	var m contactModel
	if err := byShortID(s.db.WithContext(ctx), id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	c := m.toDomain()
	return &c, nil
}

// List returns every contact ordered by display name.
func (s *ContactStore) List(ctx context.Context) ([]domain.Contact, error) {
	var models []contactModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	contacts := make([]domain.Contact, len(models))
	for i, m := range models {
		contacts[i] = m.toDomain()
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].DisplayName() < contacts[j].DisplayName()
	})
	return contacts, nil
}

// Count returns the number of contacts.
func (s *ContactStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&contactModel{}).Count(&n).Error
	return int(n), err
}

// ProjectStore implements driven.ProjectStore.
type ProjectStore struct{ db *gorm.DB }

// Upsert inserts or overwrites a project.
func (s *ProjectStore) Upsert(ctx context.Context, p domain.Project) (bool, error) {
	m := toProjectModel(p)
	created, err := upsert(ctx, s.db, &projectModel{}, p.RemoteID, &m)
	if err != nil {
		return false, fmt.Errorf("saving project: %w", err)
	}
	return created, nil
}

// Get retrieves a project by remote id.
func (s *ProjectStore) Get(ctx context.Context, remoteID string) (*domain.Project, error) {
	var m projectModel
	if err := s.db.WithContext(ctx).Where("remote_id = ?", remoteID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	p := m.toDomain()
	return &p, nil
}

// List returns projects ordered by name, optionally restricted to one contact.
func (s *ProjectStore) List(ctx context.Context, contactRef string) ([]domain.Project, error) {
	q := s.db.WithContext(ctx).Order("name").Order("remote_id")
	if contactRef != "" {
		q = q.Where("contact_ref = ?", contactRef)
	}
	var models []projectModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects := make([]domain.Project, len(models))
	for i, m := range models {
		projects[i] = m.toDomain()
	}
	return projects, nil
}

// Count returns the number of projects.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&projectModel{}).Count(&n).Error
	return int(n), err
}

// InvoiceStore implements driven.InvoiceStore.
type InvoiceStore struct{ db *gorm.DB }

// Upsert inserts or overwrites an invoice.
func (s *InvoiceStore) Upsert(ctx context.Context, inv domain.Invoice) (bool, error) {
	m := toInvoiceModel(inv)
	created, err := upsert(ctx, s.db, &invoiceModel{}, inv.RemoteID, &m)
	if err != nil {
		return false, fmt.Errorf("saving invoice: %w", err)
	}
	return created, nil
}

// Get retrieves an invoice by remote id or short id.
func (s *InvoiceStore) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	var m invoiceModel
	if err := byShortID(s.db.WithContext(ctx), id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	inv := m.toDomain()
	return &inv, nil
}

// List returns invoices inside scope, newest first.
func (s *InvoiceStore) List(ctx context.Context, scope domain.InvoiceScope) ([]domain.Invoice, error) {
	q := s.db.WithContext(ctx).Order("dated_on DESC").Order("remote_id")
	switch scope.Kind {
	case domain.ScopeAll:
	case domain.ScopeContact:
		q = q.Where("contact_ref = ?", scope.ContactRef)
	default:
		return []domain.Invoice{}, nil
	}

	var models []invoiceModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	invoices := make([]domain.Invoice, len(models))
	for i, m := range models {
		invoices[i] = m.toDomain()
	}
	return invoices, nil
}

// Count returns the number of invoices.
func (s *InvoiceStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&invoiceModel{}).Count(&n).Error
	return int(n), err
}

// LinkStore implements driven.LinkStore.
type LinkStore struct{ db *gorm.DB }

// Link ties a principal to a contact, replacing any previous link.
func (s *LinkStore) Link(ctx context.Context, link domain.PrincipalLink) error {
	m := linkModel{PrincipalID: link.PrincipalID, ContactRemoteID: link.ContactRemoteID, LinkedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"contact_remote_id", "linked_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("saving link: %w", err)
	}
	return nil
}

// Unlink removes a principal's link.
func (s *LinkStore) Unlink(ctx context.Context, principalID string) error {
	if err := s.db.WithContext(ctx).Where("principal_id = ?", principalID).Delete(&linkModel{}).Error; err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	return nil
}

// Get returns a principal's link, or nil.
func (s *LinkStore) Get(ctx context.Context, principalID string) (*domain.PrincipalLink, error) {
	var m linkModel
	err := s.db.WithContext(ctx).Where("principal_id = ?", principalID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting link: %w", err)
	}
	return &domain.PrincipalLink{PrincipalID: m.PrincipalID, ContactRemoteID: m.ContactRemoteID}, nil
}

// List returns every link ordered by principal id.
func (s *LinkStore) List(ctx context.Context) ([]domain.PrincipalLink, error) {
	var models []linkModel
	if err := s.db.WithContext(ctx).Order("principal_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	links := make([]domain.PrincipalLink, len(models))
	for i, m := range models {
		links[i] = domain.PrincipalLink{PrincipalID: m.PrincipalID, ContactRemoteID: m.ContactRemoteID}
	}
	return links, nil
}
